package opencl

import (
	"errors"
	"testing"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/tracer/cpu"
	"github.com/achilleasa/lumen/tracer/opencl/device"
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

func TestBlendFrame(t *testing.T) {
	b := createTestBackend(t)
	defer b.Close()

	src := mustTarget(t, b, 5, 3)
	dst := mustTarget(t, b, 5, 3)
	writeTarget(t, src, 4)
	writeTarget(t, dst, 2)

	type spec struct {
		weight float32
		exp    float32
	}
	specs := []spec{
		{0.5, 3},
		{1, 4},
		{0.25, 3.75},
	}

	for index, s := range specs {
		if err := b.Blend(src, dst, s.weight); err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}
		for i, v := range readTarget(t, b, dst) {
			if math32.Abs(v-s.exp) > 1e-5 {
				t.Fatalf("[spec %d] expected value %d to be %f; got %f", index, i, s.exp, v)
			}
		}
	}

	other := mustTarget(t, b, 3, 5)
	if err := b.Blend(src, other, 0.5); err != tracer.ErrTargetMismatch {
		t.Fatalf("expected ErrTargetMismatch; got %v", err)
	}
}

func TestReadTargetBufferTooSmall(t *testing.T) {
	b := createTestBackend(t)
	defer b.Close()

	target := mustTarget(t, b, 4, 4)
	err := b.ReadTarget(target, make([]float32, 4))
	if !errors.Is(err, ErrBufferTooSmall) {
		t.Fatalf("expected ErrBufferTooSmall; got %v", err)
	}
}

func TestDispatchWithoutBind(t *testing.T) {
	b := createTestBackend(t)
	defer b.Close()

	out := mustTarget(t, b, 8, 8)
	if err := b.Dispatch(out, 1, 1); err != tracer.ErrMissingKernel {
		t.Fatalf("expected ErrMissingKernel; got %v", err)
	}

	spheres, err := b.UploadSpheres(nil)
	if err != nil {
		t.Fatal(err)
	}
	defer spheres.Release()

	if err = b.Bind(&tracer.FrameParams{Spheres: spheres}); err != tracer.ErrForeignResource {
		t.Fatalf("expected ErrForeignResource for missing skybox; got %v", err)
	}

	spheres.Release()
	if err = b.Bind(&tracer.FrameParams{Spheres: spheres}); err != tracer.ErrMissingSceneBuffer {
		t.Fatalf("expected ErrMissingSceneBuffer for released sphere buffer; got %v", err)
	}
}

func TestSkyOnlyFrame(t *testing.T) {
	b := createTestBackend(t)
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

	out := mustTarget(t, b, 13, 11)
	gx, gy := tracer.WorkGroups(13, 11)
	if err = b.Dispatch(out, gx, gy); err != nil {
		t.Fatal(err)
	}

	data := readTarget(t, b, out)
	for i := 0; i < len(data); i += tracer.TargetChannels {
		px := types.XYZ(data[i], data[i+1], data[i+2])
		if px.Sub(skyColor).Len() > 1e-4 || data[i+3] != 1 {
			t.Fatalf("expected pixel %d to be the sky color %v; got %v (alpha %f)", i/tracer.TargetChannels, skyColor, px, data[i+3])
		}
	}
}

func TestMatchesCpuBackend(t *testing.T) {
	clBackend := createTestBackend(t)
	defer clBackend.Close()
	cpuBackend := cpu.New(2)
	defer cpuBackend.Close()

	const frameW, frameH = 32, 24
	render := func(backend tracer.Backend, maxSpheres uint32) []float32 {
		opts := tracer.DefaultOptions()
		opts.Seed = 7
		opts.Antialias = false
		opts.Scene.MaxSpheres = maxSpheres

		session, err := tracer.NewSession(backend, opts)
		if err != nil {
			t.Fatal(err)
		}
		defer session.Close()

		camera := scene.NewCamera(60)
		camera.Position = types.XYZ(0, 8, -25)
		camera.LookAt(types.XYZ(0, 0, 0))
		session.SetCamera(camera)
		session.SetLight(scene.NewDirectionalLight(0.6, -0.8, 1))
		if err = session.SetSkybox(texture.DefaultSky()); err != nil {
			t.Fatal(err)
		}

		if err = session.RenderFrame(frameW, frameH); err != nil {
			t.Fatal(err)
		}

		frame := make([]float32, frameW*frameH*tracer.TargetChannels)
		if _, _, err = session.ReadFrame(frame); err != nil {
			t.Fatal(err)
		}
		return frame
	}

	// An empty scene binds a placeholder sphere record that must never be
	// read by the kernel.
	for index, maxSpheres := range []uint32{16, 0} {
		clFrame := render(clBackend, maxSpheres)
		cpuFrame := render(cpuBackend, maxSpheres)

		// Allow small per-pixel differences from fused multiply-adds and
		// texel lookups that land on a boundary.
		var diff float32
		for i := range clFrame {
			diff += math32.Abs(clFrame[i] - cpuFrame[i])
		}
		if mean := diff / float32(len(clFrame)); mean > 1e-2 {
			t.Fatalf("[spec %d] expected opencl output to match the cpu backend; mean abs difference %f", index, mean)
		}
	}
}

func createTestBackend(t *testing.T) *Backend {
	devList, err := device.SelectDevices(device.CpuDevice, "")
	if err != nil || len(devList) == 0 {
		t.Skip("no opencl CPU device available")
	}

	b, err := New(devList[0])
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func mustTarget(t *testing.T, b *Backend, w, h uint32) *targetBuffer {
	target, err := b.NewTarget("test", w, h)
	if err != nil {
		t.Fatal(err)
	}
	return target.(*targetBuffer)
}

func writeTarget(t *testing.T, target *targetBuffer, v float32) {
	data := make([]float32, target.numPixels()*tracer.TargetChannels)
	for i := range data {
		data[i] = v
	}
	if err := target.buf.AllocateAndWriteData(data, cl.MEM_READ_WRITE); err != nil {
		t.Fatal(err)
	}
}

func readTarget(t *testing.T, b *Backend, target *targetBuffer) []float32 {
	data := make([]float32, target.numPixels()*tracer.TargetChannels)
	if err := b.ReadTarget(target, data); err != nil {
		t.Fatal(err)
	}
	return data
}
