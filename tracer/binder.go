package tracer

import (
	"math/rand"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

// ParamBinder assembles the per-frame kernel parameters and pushes them to
// the backend.
type ParamBinder struct {
	rng *rand.Rand
}

// Create a binder that draws jitter offsets from rng.
func NewParamBinder(rng *rand.Rand) *ParamBinder {
	return &ParamBinder{rng: rng}
}

// Get the sub-pixel offset for the next frame. When anti-aliasing is
// disabled rays go through the pixel centers.
func (b *ParamBinder) Jitter(antialias bool) types.Vec2 {
	if !antialias {
		return types.XY(0.5, 0.5)
	}
	return types.XY(b.rng.Float32(), b.rng.Float32())
}

// Frame inputs collected by the session.
type frameInputs struct {
	backend Backend
	camera  *scene.Camera
	light   *scene.DirectionalLight
	spheres *SceneBuffer
	skybox  Skybox
}

// Ensure that all resources required for rendering a frame are present.
func (in *frameInputs) validate() error {
	switch {
	case in.backend == nil:
		return ErrMissingKernel
	case in.camera == nil:
		return ErrMissingCamera
	case in.light == nil:
		return ErrMissingLight
	case in.spheres == nil || in.spheres.Handle() == nil:
		return ErrMissingSceneBuffer
	case in.skybox == nil:
		return ErrMissingSkybox
	}
	return nil
}

// Assemble frame parameters and bind them to the trace kernel.
func (b *ParamBinder) Bind(in *frameInputs, opts *Options) (*FrameParams, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	params := &FrameParams{
		CameraToWorld:           in.camera.CameraToWorld(),
		CameraInverseProjection: in.camera.InverseProjection(),
		PixelOffset:             b.Jitter(opts.Antialias),
		RayBounces:              opts.Bounces,
		DirectionalLight:        in.light.Vector(),
		AlbedoMultiplier:        opts.AlbedoMultiplier,
		SpecularMultiplier:      opts.SpecularMultiplier,
		Spheres:                 in.spheres.Handle(),
		NumSpheres:              in.spheres.Count(),
		Skybox:                  in.skybox,
	}

	if err := in.backend.Bind(params); err != nil {
		return nil, err
	}
	return params, nil
}
