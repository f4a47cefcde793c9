package renderer

import (
	"fmt"

	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/tracer"
)

type Options struct {
	// Frame dims.
	FrameW uint32
	FrameH uint32

	// Number of samples to accumulate. The headless renderer requires a
	// positive value; the interactive renderer treats 0 as unlimited.
	SamplesPerPixel uint32

	// Exposure for tonemapping.
	Exposure float32

	// Tracer options passed to the render session.
	Tracer tracer.Options

	// Environment map. If nil, a procedural gradient sky is used.
	Skybox *texture.Texture
}

// Validate options.
func (o Options) Validate() error {
	if o.FrameW == 0 || o.FrameH == 0 {
		return fmt.Errorf("%w: frame dimensions must be positive; got %dx%d", ErrInvalidOption, o.FrameW, o.FrameH)
	}
	if o.Exposure <= 0 {
		return fmt.Errorf("%w: exposure must be positive; got %f", ErrInvalidOption, o.Exposure)
	}
	if err := o.Tracer.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	return nil
}
