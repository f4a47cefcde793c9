package cpu

import (
	"math"

	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

// Ground plane material.
const (
	groundAlbedo   float32 = 0.8
	groundSpecular float32 = 0.03
)

const (
	// Offset applied to secondary ray origins to avoid self-intersection.
	hitEpsilon float32 = 1e-3

	noHit float32 = math.MaxFloat32
)

type ray struct {
	origin types.Vec3
	dir    types.Vec3
	energy types.Vec3
}

type rayHit struct {
	dist     float32
	pos      types.Vec3
	normal   types.Vec3
	albedo   types.Vec3
	specular types.Vec3
}

// kernel holds a snapshot of the bound frame parameters for a single
// dispatch. It is read-only while the work-groups run.
type kernel struct {
	params  tracer.FrameParams
	spheres []scene.Sphere
	sky     *texture.Texture

	origin        types.Vec3
	light         types.Vec3
	width, height uint32
}

func newKernel(params *tracer.FrameParams, spheres []scene.Sphere, sky *texture.Texture, width, height uint32) *kernel {
	return &kernel{
		params:  *params,
		spheres: spheres,
		sky:     sky,
		origin:  params.CameraToWorld.TransformPoint(types.Vec3{}),
		light:   params.DirectionalLight.Vec3(),
		width:   width,
		height:  height,
	}
}

// Process one WorkGroupSize x WorkGroupSize tile of the output image. Pixels
// outside the image are ignored.
func (k *kernel) runGroup(out []float32, groupX, groupY uint32) {
	for ly := uint32(0); ly < tracer.WorkGroupSize; ly++ {
		y := groupY*tracer.WorkGroupSize + ly
		if y >= k.height {
			return
		}
		for lx := uint32(0); lx < tracer.WorkGroupSize; lx++ {
			x := groupX*tracer.WorkGroupSize + lx
			if x >= k.width {
				break
			}

			c := k.tracePixel(x, y)
			offset := (y*k.width + x) * tracer.TargetChannels
			out[offset], out[offset+1], out[offset+2], out[offset+3] = c[0], c[1], c[2], 1
		}
	}
}

// Trace a pixel. Row 0 is the bottom row of the image.
func (k *kernel) tracePixel(x, y uint32) types.Vec3 {
	r := k.cameraRay(x, y)

	var result types.Vec3
	for bounce := uint32(0); bounce < k.params.RayBounces; bounce++ {
		hit := k.trace(&r)
		energy := r.energy
		result = result.Add(energy.MulVec(k.shade(&r, &hit)))

		if r.energy == (types.Vec3{}) {
			break
		}
	}
	return result
}

func (k *kernel) cameraRay(x, y uint32) ray {
	u := (float32(x)+k.params.PixelOffset[0])/float32(k.width)*2 - 1
	v := (float32(y)+k.params.PixelOffset[1])/float32(k.height)*2 - 1

	viewDir := k.params.CameraInverseProjection.TransformPoint(types.XYZ(u, v, 0))
	return ray{
		origin: k.origin,
		dir:    k.params.CameraToWorld.TransformDir(viewDir).Normalize(),
		energy: types.Splat3(1),
	}
}

// Find the closest intersection of r with the ground plane and the spheres.
func (k *kernel) trace(r *ray) rayHit {
	hit := rayHit{dist: noHit}

	if r.dir[1] != 0 {
		t := -r.origin[1] / r.dir[1]
		if t > 0 && t < hit.dist {
			hit.dist = t
			hit.pos = r.origin.Add(r.dir.Mul(t))
			hit.normal = types.XYZ(0, 1, 0)
			hit.albedo = types.Splat3(groundAlbedo)
			hit.specular = types.Splat3(groundSpecular)
		}
	}

	for i := range k.spheres {
		k.intersectSphere(r, &k.spheres[i], &hit)
	}
	return hit
}

func (k *kernel) intersectSphere(r *ray, s *scene.Sphere, hit *rayHit) {
	d := r.origin.Sub(s.Position)
	p1 := -r.dir.Dot(d)
	p2sq := p1*p1 - d.Dot(d) + s.Radius*s.Radius
	if p2sq < 0 {
		return
	}

	p2 := math32.Sqrt(p2sq)
	t := p1 - p2
	if t <= 0 {
		t = p1 + p2
	}
	if t <= 0 || t >= hit.dist {
		return
	}

	hit.dist = t
	hit.pos = r.origin.Add(r.dir.Mul(t))
	hit.normal = hit.pos.Sub(s.Position).Normalize()
	hit.albedo = s.Albedo.MulVec(k.params.AlbedoMultiplier)
	hit.specular = s.Specular.MulVec(k.params.SpecularMultiplier)
}

// Shade a hit and set up r for the next bounce. Misses sample the skybox and
// terminate the path.
func (k *kernel) shade(r *ray, hit *rayHit) types.Vec3 {
	if hit.dist == noHit {
		r.energy = types.Vec3{}
		return k.sky.Sample(r.dir)
	}

	r.origin = hit.pos.Add(hit.normal.Mul(hitEpsilon))
	r.dir = r.dir.Reflect(hit.normal)
	r.energy = r.energy.MulVec(hit.specular)

	shadowRay := ray{
		origin: r.origin,
		dir:    k.light.Mul(-1),
		energy: types.Splat3(1),
	}
	if shadowHit := k.trace(&shadowRay); shadowHit.dist != noHit {
		return types.Vec3{}
	}

	lambert := saturate(-hit.normal.Dot(k.light))
	return hit.albedo.Mul(lambert * k.params.DirectionalLight[3])
}

func saturate(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
