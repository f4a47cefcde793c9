package renderer

import (
	"fmt"

	"github.com/achilleasa/lumen/tracer"
)

// Number of consecutive frame failures after which the headless renderer
// gives up. Missing resources abort immediately since nothing can supply
// them without a display loop.
const maxConsecutiveFrameErrors = 10

// A renderer that accumulates a fixed number of samples without a display
// and writes the result to a png file.
type headlessRenderer struct {
	*defaultRenderer

	imgFile string
}

// Create a headless renderer that writes its output to imgFile.
func NewHeadless(backend tracer.Backend, imgFile string, opts Options) (Renderer, error) {
	if opts.SamplesPerPixel == 0 {
		return nil, fmt.Errorf("%w: samples per pixel must be positive", ErrInvalidOption)
	}

	base, err := newDefaultRenderer("headless renderer", backend, opts)
	if err != nil {
		return nil, err
	}

	return &headlessRenderer{
		defaultRenderer: base,
		imgFile:         imgFile,
	}, nil
}

func (r *headlessRenderer) Render() error {
	for r.session.Sample() < r.options.SamplesPerPixel {
		err := r.renderFrame(r.options.FrameW, r.options.FrameH)
		switch {
		case err == nil:
		case tracer.IsMissingResource(err):
			return fmt.Errorf("headless renderer: cannot render frame: %w", err)
		case r.frameErrors >= maxConsecutiveFrameErrors:
			return fmt.Errorf("%w: %v", ErrTooManyFrameErrors, err)
		}
	}

	frame, err := r.frame(r.options.FrameW, r.options.FrameH)
	if err != nil {
		return err
	}

	r.logger.Noticef("accumulated %d samples; writing frame to %s", r.session.Sample(), r.imgFile)
	return frame.SavePNG(r.imgFile, r.options.Exposure)
}
