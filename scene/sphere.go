package scene

import (
	"fmt"

	"github.com/achilleasa/lumen/types"
)

// Size in bytes of a packed sphere record.
const SphereSize = 40

// Number of float32 values in a packed sphere record.
const sphereFloats = SphereSize / 4

// A sphere primitive. The field order and sizes match the packed layout
// expected by the trace kernel: position(3), radius(1), albedo(3), specular(3).
type Sphere struct {
	Position types.Vec3
	Radius   float32
	Albedo   types.Vec3
	Specular types.Vec3
}

// Returns true if this sphere is a metal (no diffuse reflectance).
func (s Sphere) IsMetal() bool {
	return s.Albedo == types.Vec3{}
}

// Returns true if the two spheres intersect. The test is performed on squared
// distances so no square root is required.
func (s Sphere) Overlaps(other Sphere) bool {
	minDist := s.Radius + other.Radius
	return s.Position.Sub(other.Position).LenSq() < minDist*minDist
}

func (s Sphere) String() string {
	return fmt.Sprintf(
		"pos (%3.2f, %3.2f, %3.2f) r %3.2f albedo (%1.2f, %1.2f, %1.2f) specular (%1.2f, %1.2f, %1.2f)",
		s.Position[0], s.Position[1], s.Position[2],
		s.Radius,
		s.Albedo[0], s.Albedo[1], s.Albedo[2],
		s.Specular[0], s.Specular[1], s.Specular[2],
	)
}

// Pack spheres into a contiguous float32 slice (10 floats per sphere).
func PackSpheres(spheres []Sphere) []float32 {
	out := make([]float32, 0, len(spheres)*sphereFloats)
	for _, s := range spheres {
		out = append(out,
			s.Position[0], s.Position[1], s.Position[2],
			s.Radius,
			s.Albedo[0], s.Albedo[1], s.Albedo[2],
			s.Specular[0], s.Specular[1], s.Specular[2],
		)
	}
	return out
}
