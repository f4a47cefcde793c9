package cpu

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

func TestBlend(t *testing.T) {
	b := New(2)
	defer b.Close()

	src := mustTarget(t, b, 3, 2)
	dst := mustTarget(t, b, 3, 2)
	fill(src, 4)
	fill(dst, 2)

	if err := b.Blend(src, dst, 0.5); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst.Data {
		if v != 3 {
			t.Fatalf("expected blended value %d to be 3; got %f", i, v)
		}
	}

	// A weight of 1 overwrites dst even if it contains garbage
	for i := range dst.Data {
		dst.Data[i] = math32.NaN()
	}
	if err := b.Blend(src, dst, 1); err != nil {
		t.Fatal(err)
	}
	for i, v := range dst.Data {
		if v != 4 {
			t.Fatalf("expected overwritten value %d to be 4; got %f", i, v)
		}
	}

	other := mustTarget(t, b, 2, 3)
	if err := b.Blend(src, other, 0.5); err != tracer.ErrTargetMismatch {
		t.Fatalf("expected ErrTargetMismatch; got %v", err)
	}
}

func TestBlendConstantFrames(t *testing.T) {
	b := New(2)
	defer b.Close()

	src := mustTarget(t, b, 4, 3)
	dst := mustTarget(t, b, 4, 3)
	fill(src, 0.7)

	const numFrames = 200
	for n := 0; n < numFrames; n++ {
		if err := b.Blend(src, dst, 1/float32(n+1)); err != nil {
			t.Fatal(err)
		}
	}
	for i, v := range dst.Data {
		if math32.Abs(v-0.7) > 1e-4 {
			t.Fatalf("expected value %d to stay at 0.7 after %d frames; got %f", i, numFrames, v)
		}
	}
}

func TestForeignResources(t *testing.T) {
	b1, b2 := New(1), New(1)
	defer b1.Close()
	defer b2.Close()

	t1 := mustTarget(t, b1, 4, 4)
	t2 := mustTarget(t, b2, 4, 4)

	if err := b1.Blend(t1, t2, 0.5); err != tracer.ErrForeignResource {
		t.Fatalf("expected ErrForeignResource; got %v", err)
	}

	spheres, _ := b2.UploadSpheres(nil)
	sky, _ := b1.UploadSkybox(texture.DefaultSky())
	err := b1.Bind(&tracer.FrameParams{Spheres: spheres, Skybox: sky})
	if err != tracer.ErrForeignResource {
		t.Fatalf("expected ErrForeignResource; got %v", err)
	}
}

func TestDispatchErrors(t *testing.T) {
	b := New(1)
	out := mustTarget(t, b, 8, 8)

	if err := b.Dispatch(out, 1, 1); err != ErrParamsNotBound {
		t.Fatalf("expected ErrParamsNotBound; got %v", err)
	}

	b.Close()
	if err := b.Dispatch(out, 1, 1); err != tracer.ErrMissingKernel {
		t.Fatalf("expected ErrMissingKernel after close; got %v", err)
	}
	if _, err := b.NewTarget("late", 1, 1); err != tracer.ErrMissingKernel {
		t.Fatalf("expected ErrMissingKernel after close; got %v", err)
	}
}

func TestUploadSkyboxValidation(t *testing.T) {
	b := New(1)
	defer b.Close()

	if _, err := b.UploadSkybox(nil); !errors.Is(err, texture.ErrInvalidTextureData) {
		t.Fatalf("expected ErrInvalidTextureData; got %v", err)
	}
	if _, err := b.UploadSkybox(&texture.Texture{Width: 2, Height: 2}); !errors.Is(err, texture.ErrInvalidTextureData) {
		t.Fatalf("expected ErrInvalidTextureData; got %v", err)
	}
}

func TestSkyOnlyFrame(t *testing.T) {
	b := New(4)
	defer b.Close()

	skyColor := types.XYZ(0.2, 0.4, 0.6)
	sky, err := b.UploadSkybox(texture.Gradient(8, 4, skyColor, skyColor, skyColor))
	if err != nil {
		t.Fatal(err)
	}
	spheres, err := b.UploadSpheres(nil)
	if err != nil {
		t.Fatal(err)
	}

	// Camera above the ground looking straight up never hits the plane
	camera := scene.NewCamera(45)
	camera.Position = types.XYZ(0, 1, 0)
	camera.Rotate(0, 2)

	err = b.Bind(&tracer.FrameParams{
		CameraToWorld:           camera.CameraToWorld(),
		CameraInverseProjection: camera.InverseProjection(),
		PixelOffset:             types.XY(0.5, 0.5),
		RayBounces:              tracer.MaxBounces,
		DirectionalLight:        types.XYZW(0, -1, 0, 1),
		AlbedoMultiplier:        types.Splat3(1),
		SpecularMultiplier:      types.Splat3(1),
		Spheres:                 spheres,
		Skybox:                  sky,
	})
	if err != nil {
		t.Fatal(err)
	}

	// Odd dimensions exercise partially covered work-groups
	out := mustTarget(t, b, 13, 11)
	gx, gy := tracer.WorkGroups(13, 11)
	if err = b.Dispatch(out, gx, gy); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < len(out.Data); i += tracer.TargetChannels {
		px := types.XYZ(out.Data[i], out.Data[i+1], out.Data[i+2])
		if px.Sub(skyColor).Len() > 1e-4 || out.Data[i+3] != 1 {
			t.Fatalf("expected pixel %d to be the sky color %v; got %v (alpha %f)", i/tracer.TargetChannels, skyColor, px, out.Data[i+3])
		}
	}
}

func TestShadowedGround(t *testing.T) {
	sphere := scene.Sphere{
		Position: types.XYZ(0, 1, 0),
		Radius:   1,
		Albedo:   types.Splat3(0.5),
		Specular: types.Splat3(0.04),
	}
	params := &tracer.FrameParams{
		CameraToWorld:      types.Ident4(),
		RayBounces:         1,
		DirectionalLight:   types.XYZW(0, -1, 0, 2),
		AlbedoMultiplier:   types.Splat3(1),
		SpecularMultiplier: types.Splat3(1),
	}
	k := newKernel(params, []scene.Sphere{sphere}, texture.DefaultSky(), 1, 1)

	type spec struct {
		origin types.Vec3
		target types.Vec3
		exp    float32
	}
	specs := []spec{
		// below the sphere; approached at a grazing angle that misses it
		{types.XYZ(0.6, 5, -10), types.XYZ(0.6, 0, 0), 0},
		// in the open; lambert(1) * intensity(2) * ground albedo
		{types.XYZ(10, 5, 0.5), types.XYZ(10, 0, 0.5), 2 * groundAlbedo},
	}

	for index, s := range specs {
		r := ray{
			origin: s.origin,
			dir:    s.target.Sub(s.origin).Normalize(),
			energy: types.Splat3(1),
		}

		hit := k.trace(&r)
		if hit.dist == noHit || hit.normal != types.XYZ(0, 1, 0) {
			t.Fatalf("[spec %d] expected ray to hit the ground plane; got %+v", index, hit)
		}

		c := k.shade(&r, &hit)
		if math32.Abs(c[0]-s.exp) > 1e-5 {
			t.Fatalf("[spec %d] expected shaded value %f; got %f", index, s.exp, c[0])
		}
		if r.energy != types.Splat3(groundSpecular) {
			t.Fatalf("[spec %d] expected energy to be scaled by ground specular; got %v", index, r.energy)
		}
	}
}

func TestSphereIntersection(t *testing.T) {
	sphere := scene.Sphere{
		Position: types.XYZ(0, 1, 0),
		Radius:   1,
		Albedo:   types.XYZ(1, 0.5, 0.25),
		Specular: types.Splat3(0.04),
	}
	params := &tracer.FrameParams{
		CameraToWorld:      types.Ident4(),
		RayBounces:         1,
		DirectionalLight:   types.XYZW(0, -1, 0, 1),
		AlbedoMultiplier:   types.XYZ(0.5, 0.5, 0.5),
		SpecularMultiplier: types.Splat3(1),
	}
	k := newKernel(params, []scene.Sphere{sphere}, texture.DefaultSky(), 1, 1)

	r := ray{origin: types.XYZ(0, 1, -10), dir: types.XYZ(0, 0, 1), energy: types.Splat3(1)}
	hit := k.trace(&r)

	if math32.Abs(hit.dist-9) > 1e-4 {
		t.Fatalf("expected hit distance 9; got %f", hit.dist)
	}
	if hit.normal.Sub(types.XYZ(0, 0, -1)).Len() > 1e-4 {
		t.Fatalf("expected normal (0, 0, -1); got %v", hit.normal)
	}
	if exp := types.XYZ(0.5, 0.25, 0.125); hit.albedo != exp {
		t.Fatalf("expected albedo multiplier to be applied; got %v", hit.albedo)
	}

	// Rays starting inside the sphere hit the far side
	r = ray{origin: types.XYZ(0, 1, 0), dir: types.XYZ(1, 0, 0), energy: types.Splat3(1)}
	hit = k.trace(&r)
	if math32.Abs(hit.dist-1) > 1e-4 {
		t.Fatalf("expected hit distance 1 from inside the sphere; got %f", hit.dist)
	}
}

func TestMissSamplesSky(t *testing.T) {
	sky := texture.DefaultSky()
	params := &tracer.FrameParams{CameraToWorld: types.Ident4(), RayBounces: 1}
	k := newKernel(params, nil, sky, 1, 1)

	dir := types.XYZ(0, 1, 0)
	r := ray{origin: types.XYZ(0, 1, 0), dir: dir, energy: types.Splat3(1)}
	hit := k.trace(&r)

	c := k.shade(&r, &hit)
	if c != sky.Sample(dir) {
		t.Fatalf("expected miss to return the sky sample %v; got %v", sky.Sample(dir), c)
	}
	if r.energy != (types.Vec3{}) {
		t.Fatalf("expected miss to terminate the path; got energy %v", r.energy)
	}
}

func TestProgressiveSession(t *testing.T) {
	b := New(0)
	defer b.Close()

	opts := tracer.DefaultOptions()
	opts.Scene.MaxSpheres = 15
	opts.Scene.PlacementRadius = 20
	s, err := tracer.NewSession(b, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	camera := scene.NewCamera(60)
	camera.Position = types.XYZ(0, 15, 40)
	camera.LookAt(types.XYZ(0, 0, 0))
	s.SetCamera(camera)
	s.SetLight(scene.NewDirectionalLight(0.5, -0.9, 1.2))
	if err = s.SetSkybox(texture.DefaultSky()); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err = s.RenderFrame(24, 16); err != nil {
			t.Fatal(err)
		}
	}
	if s.Sample() != 3 {
		t.Fatalf("expected 3 accumulated samples; got %d", s.Sample())
	}

	buf := make([]float32, 24*16*tracer.TargetChannels)
	if _, _, err = s.ReadFrame(buf); err != nil {
		t.Fatal(err)
	}

	var nonZero int
	for i := 0; i < len(buf); i += tracer.TargetChannels {
		for c := 0; c < 3; c++ {
			if math32.IsNaN(buf[i+c]) || math32.IsInf(buf[i+c], 0) || buf[i+c] < 0 {
				t.Fatalf("expected finite non-negative radiance at pixel %d; got %v", i/tracer.TargetChannels, buf[i:i+4])
			}
		}
		if buf[i] > 0 || buf[i+1] > 0 || buf[i+2] > 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Fatalf("expected a lit frame")
	}

	// A new scene after a rebuild starts accumulating from scratch
	if err = s.RebuildScene(rand.Int63()); err != nil {
		t.Fatal(err)
	}
	if err = s.RenderFrame(24, 16); err != nil {
		t.Fatal(err)
	}
	if s.Sample() != 1 {
		t.Fatalf("expected 1 accumulated sample after rebuild; got %d", s.Sample())
	}
}

func TestProgressiveSessionEmptyScene(t *testing.T) {
	b := New(0)
	defer b.Close()

	opts := tracer.DefaultOptions()
	opts.Scene.MaxSpheres = 0
	s, err := tracer.NewSession(b, opts)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	camera := scene.NewCamera(60)
	camera.Position = types.XYZ(0, 15, 40)
	camera.LookAt(types.XYZ(0, 0, 0))
	s.SetCamera(camera)
	s.SetLight(scene.NewDirectionalLight(0.5, -0.9, 1.2))
	if err = s.SetSkybox(texture.DefaultSky()); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err = s.RenderFrame(24, 16); err != nil {
			t.Fatal(err)
		}
	}
	if s.Sample() != 2 {
		t.Fatalf("expected 2 accumulated samples; got %d", s.Sample())
	}
	if stats := s.Stats(); stats.NumSpheres != 0 {
		t.Fatalf("expected an empty scene; got %d spheres", stats.NumSpheres)
	}

	buf := make([]float32, 24*16*tracer.TargetChannels)
	if _, _, err = s.ReadFrame(buf); err != nil {
		t.Fatal(err)
	}

	// Only the ground plane and the sky are visible
	var nonZero int
	for i := 0; i < len(buf); i += tracer.TargetChannels {
		for c := 0; c < 3; c++ {
			if math32.IsNaN(buf[i+c]) || math32.IsInf(buf[i+c], 0) || buf[i+c] < 0 {
				t.Fatalf("expected finite non-negative radiance at pixel %d; got %v", i/tracer.TargetChannels, buf[i:i+4])
			}
		}
		if buf[i] > 0 || buf[i+1] > 0 || buf[i+2] > 0 {
			nonZero++
		}
	}
	if nonZero == 0 {
		t.Fatalf("expected a lit frame")
	}
}

func mustTarget(t *testing.T, b *Backend, w, h uint32) *Image {
	target, err := b.NewTarget("test", w, h)
	if err != nil {
		t.Fatal(err)
	}
	return target.(*Image)
}

func fill(img *Image, v float32) {
	for i := range img.Data {
		img.Data[i] = v
	}
}
