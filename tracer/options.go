package tracer

import (
	"fmt"

	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/types"
)

// Supported bounce range.
const (
	MinBounces uint32 = 1
	MaxBounces uint32 = 8
)

type Options struct {
	// Random scene generation.
	Scene scene.GeneratorOptions

	// Seed for the scene generator. The jitter sequence is derived from it.
	Seed int64

	// Jitter primary rays inside each pixel so that accumulation also
	// anti-aliases the image.
	Antialias bool

	// Number of ray bounces.
	Bounces uint32

	// Multipliers applied to the albedo and specular color of all spheres.
	AlbedoMultiplier   types.Vec3
	SpecularMultiplier types.Vec3
}

// Get the default tracer options.
func DefaultOptions() Options {
	return Options{
		Scene:              scene.DefaultGeneratorOptions(),
		Seed:               1,
		Antialias:          true,
		Bounces:            MaxBounces,
		AlbedoMultiplier:   types.Splat3(1),
		SpecularMultiplier: types.Splat3(1),
	}
}

// Validate options.
func (o Options) Validate() error {
	if err := o.Scene.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}
	if o.Bounces < MinBounces || o.Bounces > MaxBounces {
		return fmt.Errorf("%w: bounces must be in [%d, %d]; got %d", ErrInvalidOption, MinBounces, MaxBounces, o.Bounces)
	}
	if !o.AlbedoMultiplier.InRange(0, 1) {
		return fmt.Errorf("%w: albedo multiplier components must be in [0, 1]; got %v", ErrInvalidOption, o.AlbedoMultiplier)
	}
	if !o.SpecularMultiplier.InRange(0, 1) {
		return fmt.Errorf("%w: specular multiplier components must be in [0, 1]; got %v", ErrInvalidOption, o.SpecularMultiplier)
	}
	return nil
}
