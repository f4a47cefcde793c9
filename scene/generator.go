package scene

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/achilleasa/lumen/types"
)

// Specular reflectance assigned to non-metallic spheres.
const dielectricSpecular float32 = 0.04

var ErrInvalidGeneratorOptions = errors.New("scene: invalid generator options")

// Options for the random sphere scene generator.
type GeneratorOptions struct {
	// Number of placement attempts. Overlapping candidates are dropped so
	// the generated scene may contain fewer spheres.
	MaxSpheres uint32

	// Sphere radius range.
	RadiusMin float32
	RadiusMax float32

	// Spheres are placed inside a disk with this radius centered at the origin.
	PlacementRadius float32
}

// Default generator options.
func DefaultGeneratorOptions() GeneratorOptions {
	return GeneratorOptions{
		MaxSpheres:      100,
		RadiusMin:       3,
		RadiusMax:       8,
		PlacementRadius: 100,
	}
}

// Validate generator options.
func (o GeneratorOptions) Validate() error {
	if o.RadiusMin <= 0 || o.RadiusMax < o.RadiusMin {
		return fmt.Errorf("%w: radius range [%f, %f] must satisfy 0 < min <= max", ErrInvalidGeneratorOptions, o.RadiusMin, o.RadiusMax)
	}
	if o.PlacementRadius <= 0 {
		return fmt.Errorf("%w: placement radius %f must be positive", ErrInvalidGeneratorOptions, o.PlacementRadius)
	}
	return nil
}

// Generate a scene of non-overlapping spheres resting on the y=0 ground plane.
//
// The generator makes MaxSpheres placement attempts. Each attempt samples a
// position inside the placement disk and a radius; if the candidate overlaps
// any previously accepted sphere it is discarded and the slot is skipped.
// Accepted spheres get a random HSV color and have an even chance of being
// metallic.
func Generate(opts GeneratorOptions, rng *rand.Rand) []Sphere {
	spheres := make([]Sphere, 0, opts.MaxSpheres)

	for attempt := uint32(0); attempt < opts.MaxSpheres; attempt++ {
		pos := insideUnitDisk(rng)
		radius := opts.RadiusMin + rng.Float32()*(opts.RadiusMax-opts.RadiusMin)

		candidate := Sphere{
			Position: types.XYZ(pos[0]*opts.PlacementRadius, radius, pos[1]*opts.PlacementRadius),
			Radius:   radius,
		}

		if overlapsAny(candidate, spheres) {
			continue
		}

		color := HSVToRGB(rng.Float32(), rng.Float32(), rng.Float32())
		if rng.Float32() < 0.5 {
			candidate.Specular = color
		} else {
			candidate.Albedo = color
			candidate.Specular = types.Splat3(dielectricSpecular)
		}

		spheres = append(spheres, candidate)
	}

	return spheres
}

func overlapsAny(candidate Sphere, spheres []Sphere) bool {
	for _, other := range spheres {
		if candidate.Overlaps(other) {
			return true
		}
	}
	return false
}

// Sample a point uniformly distributed inside the unit disk by rejecting
// samples from the enclosing square.
func insideUnitDisk(rng *rand.Rand) types.Vec2 {
	for {
		p := types.XY(rng.Float32()*2-1, rng.Float32()*2-1)
		if p.Dot(p) <= 1 {
			return p
		}
	}
}
