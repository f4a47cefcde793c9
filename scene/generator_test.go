package scene

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"unsafe"

	"github.com/achilleasa/lumen/types"
)

func TestGeneratedSpheresDoNotOverlap(t *testing.T) {
	opts := DefaultGeneratorOptions()
	for seed := int64(0); seed < 20; seed++ {
		spheres := Generate(opts, rand.New(rand.NewSource(seed)))

		for i := 0; i < len(spheres); i++ {
			for j := i + 1; j < len(spheres); j++ {
				minDist := spheres[i].Radius + spheres[j].Radius
				distSq := spheres[i].Position.Sub(spheres[j].Position).LenSq()
				if distSq < minDist*minDist {
					t.Fatalf("[seed %d] spheres %d and %d overlap: %v / %v", seed, i, j, spheres[i], spheres[j])
				}
			}
		}
	}
}

func TestGeneratedSphereBounds(t *testing.T) {
	type spec struct {
		opts GeneratorOptions
	}
	specs := []spec{
		{DefaultGeneratorOptions()},
		{GeneratorOptions{MaxSpheres: 500, RadiusMin: 1, RadiusMax: 2, PlacementRadius: 10}},
		{GeneratorOptions{MaxSpheres: 10, RadiusMin: 5, RadiusMax: 5, PlacementRadius: 50}},
		{GeneratorOptions{MaxSpheres: 0, RadiusMin: 3, RadiusMax: 8, PlacementRadius: 100}},
	}

	for index, s := range specs {
		spheres := Generate(s.opts, rand.New(rand.NewSource(int64(index))))

		if uint32(len(spheres)) > s.opts.MaxSpheres {
			t.Fatalf("[spec %d] expected at most %d spheres; got %d", index, s.opts.MaxSpheres, len(spheres))
		}

		for sIndex, sphere := range spheres {
			if sphere.Radius < s.opts.RadiusMin || sphere.Radius > s.opts.RadiusMax {
				t.Fatalf("[spec %d] sphere %d radius %f outside [%f, %f]", index, sIndex, sphere.Radius, s.opts.RadiusMin, s.opts.RadiusMax)
			}
			if sphere.Position[1] != sphere.Radius {
				t.Fatalf("[spec %d] expected sphere %d to rest on the ground plane; y=%f r=%f", index, sIndex, sphere.Position[1], sphere.Radius)
			}
			planar := types.XY(sphere.Position[0], sphere.Position[2])
			limit := s.opts.PlacementRadius * 1.0001
			if planar.Dot(planar) > limit*limit {
				t.Fatalf("[spec %d] sphere %d placed outside placement disk: %v", index, sIndex, sphere.Position)
			}
		}
	}
}

func TestGeneratedSphereMaterials(t *testing.T) {
	spheres := Generate(DefaultGeneratorOptions(), rand.New(rand.NewSource(42)))
	if len(spheres) == 0 {
		t.Fatal("expected generator to place at least one sphere")
	}

	for index, s := range spheres {
		if !s.Albedo.InRange(0, 1) || !s.Specular.InRange(0, 1) {
			t.Fatalf("sphere %d has colors outside [0, 1]: %v", index, s)
		}
		if s.IsMetal() {
			continue
		}
		if s.Specular != types.Splat3(dielectricSpecular) {
			t.Fatalf("expected non-metal sphere %d specular to be %f; got %v", index, dielectricSpecular, s.Specular)
		}
	}
}

func TestGeneratorIsDeterministicForSeed(t *testing.T) {
	opts := DefaultGeneratorOptions()
	a := Generate(opts, rand.New(rand.NewSource(7)))
	b := Generate(opts, rand.New(rand.NewSource(7)))
	if !reflect.DeepEqual(a, b) {
		t.Fatal("expected identical scenes for identical seeds")
	}
}

func TestRejectionExhaustionYieldsSmallerScene(t *testing.T) {
	// A placement disk that can fit a single sphere.
	opts := GeneratorOptions{MaxSpheres: 50, RadiusMin: 10, RadiusMax: 10, PlacementRadius: 1}
	spheres := Generate(opts, rand.New(rand.NewSource(1)))
	if len(spheres) != 1 {
		t.Fatalf("expected exactly 1 sphere to fit; got %d", len(spheres))
	}
}

func TestGeneratorOptionsValidate(t *testing.T) {
	type spec struct {
		opts   GeneratorOptions
		expErr bool
	}
	specs := []spec{
		{DefaultGeneratorOptions(), false},
		{GeneratorOptions{RadiusMin: 0, RadiusMax: 1, PlacementRadius: 1}, true},
		{GeneratorOptions{RadiusMin: 2, RadiusMax: 1, PlacementRadius: 1}, true},
		{GeneratorOptions{RadiusMin: 1, RadiusMax: 1, PlacementRadius: 0}, true},
	}

	for index, s := range specs {
		err := s.opts.Validate()
		if s.expErr != (err != nil) {
			t.Fatalf("[spec %d] expected error=%t; got %v", index, s.expErr, err)
		}
		if err != nil && !errors.Is(err, ErrInvalidGeneratorOptions) {
			t.Fatalf("[spec %d] expected error to wrap ErrInvalidGeneratorOptions; got %v", index, err)
		}
	}
}

func TestPackSpheres(t *testing.T) {
	if size := unsafe.Sizeof(Sphere{}); size != SphereSize {
		t.Fatalf("expected sphere size to be %d bytes; got %d", SphereSize, size)
	}

	spheres := []Sphere{
		{types.XYZ(1, 2, 3), 4, types.XYZ(5, 6, 7), types.XYZ(8, 9, 10)},
		{types.XYZ(11, 12, 13), 14, types.XYZ(15, 16, 17), types.XYZ(18, 19, 20)},
	}
	packed := PackSpheres(spheres)
	if len(packed) != 20 {
		t.Fatalf("expected 20 packed floats; got %d", len(packed))
	}
	for i, v := range packed {
		if v != float32(i+1) {
			t.Fatalf("expected packed[%d] to be %d; got %f", i, i+1, v)
		}
	}

	if packed := PackSpheres(nil); len(packed) != 0 {
		t.Fatalf("expected empty pack for empty scene; got %d floats", len(packed))
	}
}

func TestHSVToRGB(t *testing.T) {
	type spec struct {
		h, s, v float32
		exp     types.Vec3
	}
	specs := []spec{
		{0, 1, 1, types.XYZ(1, 0, 0)},
		{1.0 / 3.0, 1, 1, types.XYZ(0, 1, 0)},
		{2.0 / 3.0, 1, 1, types.XYZ(0, 0, 1)},
		{0.5, 0, 0.25, types.Splat3(0.25)},
		{1, 1, 1, types.XYZ(1, 0, 0)},
	}

	for index, s := range specs {
		got := HSVToRGB(s.h, s.s, s.v)
		if got.Sub(s.exp).Len() > 1e-5 {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}
