package renderer

import (
	"time"

	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/types"
)

// Initial camera and light setup.
const (
	defaultFOV       float32 = 60
	defaultLightYaw  float32 = 0.6
	defaultLightTilt float32 = -0.8
	defaultIntensity float32 = 1
)

var (
	defaultCameraPos    = types.XYZ(0, 40, -120)
	defaultCameraTarget = types.XYZ(0, 0, 0)
)

// The state shared by all renderers: a render session together with the
// camera and light it renders.
type defaultRenderer struct {
	logger  log.Logger
	options Options

	session *tracer.Session
	camera  *scene.Camera
	light   *scene.DirectionalLight

	stats FrameStats

	// Number of frames that failed in a row.
	frameErrors uint32
}

func newDefaultRenderer(name string, backend tracer.Backend, opts Options) (*defaultRenderer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	session, err := tracer.NewSession(backend, opts.Tracer)
	if err != nil {
		return nil, err
	}

	r := &defaultRenderer{
		logger:  log.New(name),
		options: opts,
		session: session,
		camera:  scene.NewCamera(defaultFOV),
		light:   scene.NewDirectionalLight(defaultLightYaw, defaultLightTilt, defaultIntensity),
		stats: FrameStats{
			Backend: backend.Name(),
		},
	}

	r.camera.Position = defaultCameraPos
	r.camera.LookAt(defaultCameraTarget)
	session.SetCamera(r.camera)
	session.SetLight(r.light)

	sky := opts.Skybox
	if sky == nil {
		sky = texture.DefaultSky()
	}
	if err = session.SetSkybox(sky); err != nil {
		session.Close()
		return nil, err
	}

	return r, nil
}

// Render the next frame and update the render stats. A failed frame leaves
// the accumulated image untouched.
func (r *defaultRenderer) renderFrame(frameW, frameH uint32) error {
	tick := time.Now()
	err := r.session.RenderFrame(frameW, frameH)
	if err != nil {
		r.frameErrors++
		r.stats.Skipped++
		r.logger.Warningf("skipping frame: %v", err)
		return err
	}

	r.frameErrors = 0
	r.stats.Frames++
	r.stats.Last = r.session.Stats()
	r.stats.RenderTime += time.Since(tick)
	return nil
}

// Copy the accumulated frame with the given dimensions to host memory.
func (r *defaultRenderer) frame(frameW, frameH uint32) (*Frame, error) {
	target := make([]float32, frameW*frameH*tracer.TargetChannels)
	frameW, frameH, err := r.session.ReadFrame(target)
	if err != nil {
		return nil, err
	}

	return &Frame{
		Width:  frameW,
		Height: frameH,
		Data:   target[:frameW*frameH*tracer.TargetChannels],
	}, nil
}

func (r *defaultRenderer) Stats() FrameStats {
	return r.stats
}

func (r *defaultRenderer) Close() {
	if r.session != nil {
		r.session.Close()
	}
}
