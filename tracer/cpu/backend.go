package cpu

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"golang.org/x/sync/errgroup"
)

var ErrParamsNotBound = errors.New("cpu: frame parameters have not been bound")

// Backend implements tracer.Backend by running the trace kernel on a pool of
// goroutines. Each work-group is processed by a single goroutine.
type Backend struct {
	logger  log.Logger
	workers int

	params *tracer.FrameParams
	closed bool
}

// Create a new cpu backend that uses up to workers goroutines per dispatch.
// If workers is not positive, the number of available CPUs is used.
func New(workers int) *Backend {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	b := &Backend{
		logger:  log.New("cpu backend"),
		workers: workers,
	}
	b.logger.Noticef("using %d worker(s)", workers)
	return b
}

func (b *Backend) Name() string {
	return fmt.Sprintf("cpu (%d workers)", b.workers)
}

func (b *Backend) UploadSpheres(spheres []scene.Sphere) (tracer.SphereBuffer, error) {
	if b.closed {
		return nil, tracer.ErrMissingKernel
	}

	data := make([]scene.Sphere, len(spheres))
	copy(data, spheres)
	b.logger.Debugf("allocated sphere buffer (%d spheres, %d bytes)", len(data), len(data)*scene.SphereSize)
	return &sphereBuffer{backend: b, spheres: data}, nil
}

func (b *Backend) UploadSkybox(tex *texture.Texture) (tracer.Skybox, error) {
	if b.closed {
		return nil, tracer.ErrMissingKernel
	}
	if tex == nil || tex.Width == 0 || tex.Height == 0 || len(tex.Data) < int(tex.Width*tex.Height*4) {
		return nil, texture.ErrInvalidTextureData
	}

	b.logger.Debugf("allocated skybox (%dx%d)", tex.Width, tex.Height)
	return &skybox{backend: b, tex: tex}, nil
}

func (b *Backend) NewTarget(name string, width, height uint32) (tracer.Target, error) {
	if b.closed {
		return nil, tracer.ErrMissingKernel
	}
	if width == 0 || height == 0 {
		return nil, tracer.ErrEmptyViewport
	}

	b.logger.Debugf("allocated target %q (%dx%d)", name, width, height)
	return &Image{
		backend: b,
		name:    name,
		width:   width,
		height:  height,
		Data:    make([]float32, width*height*tracer.TargetChannels),
	}, nil
}

func (b *Backend) Bind(params *tracer.FrameParams) error {
	if b.closed {
		return tracer.ErrMissingKernel
	}
	if _, err := b.sphereBuffer(params.Spheres); err != nil {
		return err
	}
	if _, err := b.skybox(params.Skybox); err != nil {
		return err
	}

	p := *params
	b.params = &p
	return nil
}

func (b *Backend) Dispatch(out tracer.Target, groupsX, groupsY uint32) error {
	if b.closed {
		return tracer.ErrMissingKernel
	}
	if b.params == nil {
		return ErrParamsNotBound
	}

	img, err := b.image(out)
	if err != nil {
		return err
	}
	spheres, err := b.sphereBuffer(b.params.Spheres)
	if err != nil {
		return err
	}
	sky, err := b.skybox(b.params.Skybox)
	if err != nil {
		return err
	}

	numSpheres := int(b.params.NumSpheres)
	if numSpheres > len(spheres.spheres) {
		numSpheres = len(spheres.spheres)
	}
	k := newKernel(b.params, spheres.spheres[:numSpheres], sky.tex, img.width, img.height)

	var g errgroup.Group
	g.SetLimit(b.workers)
	for gy := uint32(0); gy < groupsY; gy++ {
		for gx := uint32(0); gx < groupsX; gx++ {
			gx, gy := gx, gy
			g.Go(func() error {
				k.runGroup(img.Data, gx, gy)
				return nil
			})
		}
	}
	return g.Wait()
}

func (b *Backend) Blend(src, dst tracer.Target, weight float32) error {
	if b.closed {
		return tracer.ErrMissingKernel
	}

	srcImg, err := b.image(src)
	if err != nil {
		return err
	}
	dstImg, err := b.image(dst)
	if err != nil {
		return err
	}
	if srcImg.width != dstImg.width || srcImg.height != dstImg.height {
		return tracer.ErrTargetMismatch
	}

	if weight >= 1 {
		copy(dstImg.Data, srcImg.Data)
		return nil
	}

	// Split rows across the worker pool
	rowLen := int(dstImg.width) * tracer.TargetChannels
	var g errgroup.Group
	g.SetLimit(b.workers)
	for row := 0; row < int(dstImg.height); row++ {
		from := row * rowLen
		g.Go(func() error {
			blendRow(dstImg.Data[from:from+rowLen], srcImg.Data[from:from+rowLen], weight)
			return nil
		})
	}
	return g.Wait()
}

func (b *Backend) ReadTarget(t tracer.Target, dst []float32) error {
	img, err := b.image(t)
	if err != nil {
		return err
	}
	if len(dst) < len(img.Data) {
		return fmt.Errorf("cpu: destination buffer too small; need %d floats, got %d", len(img.Data), len(dst))
	}

	copy(dst, img.Data)
	return nil
}

func (b *Backend) Close() {
	if b.closed {
		return
	}
	b.params = nil
	b.closed = true
}

func (b *Backend) image(t tracer.Target) (*Image, error) {
	img, ok := t.(*Image)
	if !ok || img.backend != b {
		return nil, tracer.ErrForeignResource
	}
	if img.Data == nil {
		return nil, fmt.Errorf("cpu: target %q has been released", img.name)
	}
	return img, nil
}

func (b *Backend) sphereBuffer(buf tracer.SphereBuffer) (*sphereBuffer, error) {
	sb, ok := buf.(*sphereBuffer)
	if !ok || sb.backend != b {
		return nil, tracer.ErrForeignResource
	}
	if sb.released {
		return nil, tracer.ErrMissingSceneBuffer
	}
	return sb, nil
}

func (b *Backend) skybox(s tracer.Skybox) (*skybox, error) {
	sky, ok := s.(*skybox)
	if !ok || sky.backend != b {
		return nil, tracer.ErrForeignResource
	}
	if sky.tex == nil {
		return nil, tracer.ErrMissingSkybox
	}
	return sky, nil
}

func blendRow(dst, src []float32, weight float32) {
	keep := 1 - weight
	for i := range dst {
		dst[i] = dst[i]*keep + src[i]*weight
	}
}
