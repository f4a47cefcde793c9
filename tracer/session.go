package tracer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
)

// Target names.
const (
	outputTargetName  = "output"
	displayTargetName = "display"
)

// The jitter sequence uses a separate generator so that scene layout does
// not depend on the number of rendered frames.
const jitterSeedSalt = 0x5eed

// Session drives progressive rendering of a sphere scene. Each call to
// RenderFrame traces one sample per pixel and folds it into a running
// average kept in the display target. A Session is not safe for concurrent
// use; it should be driven by a single render loop.
type Session struct {
	logger  log.Logger
	backend Backend
	opts    Options

	camera *scene.Camera
	light  *scene.DirectionalLight
	skybox Skybox

	spheres    *SceneBuffer
	output     *TargetManager
	display    *TargetManager
	binder     *ParamBinder
	compositor *Compositor

	accumulator Accumulator
	tracker     poseTracker
	lastReset   ResetCause

	stats  FrameStats
	closed bool
}

// Create a new session and generate its initial scene.
func NewSession(backend Backend, opts Options) (*Session, error) {
	if backend == nil {
		return nil, ErrMissingKernel
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		logger:     log.New("session"),
		backend:    backend,
		opts:       opts,
		spheres:    NewSceneBuffer(backend),
		output:     NewTargetManager(outputTargetName, backend),
		display:    NewTargetManager(displayTargetName, backend),
		binder:     NewParamBinder(rand.New(rand.NewSource(opts.Seed ^ jitterSeedSalt))),
		compositor: NewCompositor(backend),
	}

	if err := s.spheres.Build(opts.Scene, rand.New(rand.NewSource(opts.Seed))); err != nil {
		return nil, err
	}

	s.logger.Noticef("using %s backend; scene contains %d spheres", backend.Name(), s.spheres.Count())
	return s, nil
}

// Set the camera used for rendering.
func (s *Session) SetCamera(camera *scene.Camera) {
	s.camera = camera
}

// Set the scene directional light.
func (s *Session) SetLight(light *scene.DirectionalLight) {
	s.light = light
}

// Upload tex as the environment map, replacing the previous one.
func (s *Session) SetSkybox(tex *texture.Texture) error {
	if s.closed {
		return ErrSessionClosed
	}

	skybox, err := s.backend.UploadSkybox(tex)
	if err != nil {
		return fmt.Errorf("session: could not upload skybox: %w", err)
	}

	if s.skybox != nil {
		s.skybox.Release()
	}
	s.skybox = skybox
	s.reset(ResetSkyboxChanged)
	return nil
}

// Discard all accumulated samples. The next frame overwrites the display
// target.
func (s *Session) RequestReset() {
	s.reset(ResetRequested)
}

// Replace the session options. The scene is regenerated if the generator
// options or the seed have changed. Accumulation is always reset.
func (s *Session) SetOptions(opts Options) error {
	if s.closed {
		return ErrSessionClosed
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	rebuild := opts.Scene != s.opts.Scene || opts.Seed != s.opts.Seed
	if rebuild {
		if err := s.spheres.Build(opts.Scene, rand.New(rand.NewSource(opts.Seed))); err != nil {
			return err
		}
	}

	s.opts = opts
	if rebuild {
		s.reset(ResetSceneChanged)
	} else {
		s.reset(ResetOptionsChanged)
	}
	return nil
}

// Regenerate the scene using a new seed.
func (s *Session) RebuildScene(seed int64) error {
	opts := s.opts
	opts.Seed = seed
	return s.SetOptions(opts)
}

// Get the session options.
func (s *Session) Options() Options {
	return s.opts
}

// Get the number of samples accumulated in the display target.
func (s *Session) Sample() uint32 {
	return s.accumulator.Value()
}

// Get the spheres of the current scene.
func (s *Session) Spheres() []scene.Sphere {
	return s.spheres.Spheres()
}

// Get statistics for the last rendered frame.
func (s *Session) Stats() FrameStats {
	return s.stats
}

// Copy the accumulated image to dst. The returned dimensions describe the
// layout of the copied data. ReadFrame fails with ErrNoFrame until a frame
// has been composited since the last reset.
func (s *Session) ReadFrame(dst []float32) (width, height uint32, err error) {
	if s.closed {
		return 0, 0, ErrSessionClosed
	}

	target := s.display.Target()
	if target == nil || s.accumulator.Value() == 0 {
		return 0, 0, ErrNoFrame
	}

	if err = s.backend.ReadTarget(target, dst); err != nil {
		return 0, 0, err
	}
	return target.Width(), target.Height(), nil
}

// Render a frame with the given dimensions. The frame is traced into the
// output target and then blended into the display target. If a resource
// required for rendering is missing the frame is skipped and an error is
// returned without affecting the accumulated samples.
func (s *Session) RenderFrame(frameW, frameH uint32) error {
	start := time.Now()

	if s.closed {
		return ErrSessionClosed
	}
	if frameW == 0 || frameH == 0 {
		return ErrEmptyViewport
	}

	in := &frameInputs{
		backend: s.backend,
		camera:  s.camera,
		light:   s.light,
		spheres: s.spheres,
		skybox:  s.skybox,
	}
	if err := in.validate(); err != nil {
		return err
	}

	// Detect camera, light and viewport changes since the previous frame.
	s.camera.SetAspect(float32(frameW) / float32(frameH))
	cause := s.tracker.Observe(pose{
		cameraToWorld:    s.camera.CameraToWorld(),
		cameraProjection: s.camera.InverseProjection(),
		lightTransform:   s.light.Transform(),
		lightIntensity:   s.light.Intensity,
		frameW:           frameW,
		frameH:           frameH,
	})
	if cause != NoReset {
		s.reset(cause)
	}

	if _, err := s.binder.Bind(in, &s.opts); err != nil {
		return err
	}

	output, outResized, err := s.output.Ensure(frameW, frameH)
	if err != nil {
		return err
	}
	display, dispResized, err := s.display.Ensure(frameW, frameH)
	if err != nil {
		return err
	}
	if outResized || dispResized {
		s.reset(ResetViewportResized)
	}

	groupsX, groupsY := WorkGroups(frameW, frameH)
	dispatchStart := time.Now()
	if err = s.backend.Dispatch(output, groupsX, groupsY); err != nil {
		return err
	}
	dispatchTime := time.Since(dispatchStart)

	compositeStart := time.Now()
	if err = s.compositor.Composite(output, display, s.accumulator.Value()); err != nil {
		return err
	}
	compositeTime := time.Since(compositeStart)

	s.accumulator.Advance()

	s.stats = FrameStats{
		Sample:        s.accumulator.Value(),
		FrameW:        frameW,
		FrameH:        frameH,
		NumSpheres:    s.spheres.Count(),
		Reset:         s.lastReset,
		DispatchTime:  dispatchTime,
		CompositeTime: compositeTime,
		RenderTime:    time.Since(start),
	}
	s.lastReset = NoReset
	return nil
}

// Release all resources held by the session. The backend is not closed.
// Calling Close more than once has no effect.
func (s *Session) Close() {
	if s.closed {
		return
	}

	s.output.Release()
	s.display.Release()
	s.spheres.Release()
	if s.skybox != nil {
		s.skybox.Release()
		s.skybox = nil
	}
	s.closed = true
}

func (s *Session) reset(cause ResetCause) {
	if s.accumulator.Value() != 0 {
		s.logger.Debugf("resetting accumulation after %d samples: %s", s.accumulator.Value(), cause)
	}
	s.accumulator.Reset()
	s.lastReset = cause
}
