package tracer

import (
	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

// The trace kernel is dispatched over square work-groups of this size.
const WorkGroupSize = 8

// Number of float32 values per render target pixel (RGBA).
const TargetChannels = 4

// A device-resident resource. Release must be idempotent.
type Resource interface {
	Release()
}

// A device buffer holding packed sphere records.
type SphereBuffer interface {
	Resource

	// Number of spheres stored in the buffer.
	Len() int
}

// A device-resident float32 RGBA image with random write access.
type Target interface {
	Resource

	Width() uint32
	Height() uint32
}

// A device-resident equirectangular environment map.
type Skybox interface {
	Resource
}

// The per-frame uniform values consumed by the trace kernel.
type FrameParams struct {
	CameraToWorld           types.Mat4
	CameraInverseProjection types.Mat4

	// Sub-pixel offset for the primary rays; each component is in [0, 1).
	PixelOffset types.Vec2

	// Number of specular bounces; in [MinBounces, MaxBounces].
	RayBounces uint32

	// Light travel direction in xyz and intensity in w.
	DirectionalLight types.Vec4

	AlbedoMultiplier   types.Vec3
	SpecularMultiplier types.Vec3

	Spheres    SphereBuffer
	NumSpheres uint32

	Skybox Skybox
}

// The Backend interface is implemented by compute devices that can run the
// trace and blend kernels. Backends are not safe for concurrent use.
type Backend interface {
	// Get a descriptive name for the backend.
	Name() string

	// Upload sphere data to a new device buffer.
	UploadSpheres(spheres []scene.Sphere) (SphereBuffer, error)

	// Upload an environment map.
	UploadSkybox(tex *texture.Texture) (Skybox, error)

	// Allocate a float32 RGBA render target. Its contents are undefined until
	// written by Dispatch or Blend.
	NewTarget(name string, width, height uint32) (Target, error)

	// Push frame parameters to the trace kernel.
	Bind(params *FrameParams) error

	// Run the trace kernel over a grid of WorkGroupSize x WorkGroupSize
	// groups writing radiance values to out. Dispatch blocks until the
	// kernel completes.
	Dispatch(out Target, groupsX, groupsY uint32) error

	// Blend src into dst: dst = dst * (1 - weight) + src * weight. A
	// weight of 1 overwrites dst.
	Blend(src, dst Target, weight float32) error

	// Copy target contents to a host buffer with at least
	// width * height * TargetChannels elements.
	ReadTarget(t Target, dst []float32) error

	// Release all device resources.
	Close()
}

// Get the number of work-groups required to cover a frame.
func WorkGroups(frameW, frameH uint32) (groupsX, groupsY uint32) {
	return (frameW + WorkGroupSize - 1) / WorkGroupSize, (frameH + WorkGroupSize - 1) / WorkGroupSize
}
