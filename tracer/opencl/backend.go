package opencl

import (
	"fmt"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/tracer/opencl/device"
)

// Backend implements tracer.Backend on top of an opencl device.
type Backend struct {
	logger    log.Logger
	device    *device.Device
	resources *deviceResources

	bound bool
}

// Initialize dev, build the tracer kernels and return a backend that uses it.
// The backend takes ownership of dev and shuts it down when closed.
func New(dev *device.Device) (*Backend, error) {
	if dev == nil {
		return nil, ErrNoDevice
	}

	b := &Backend{
		logger: log.New(fmt.Sprintf("opencl backend (%s)", dev.Name)),
		device: dev,
	}

	err := dev.Init(programSource, buildOptions)
	if err != nil {
		return nil, err
	}

	b.resources, err = newDeviceResources(dev)
	if err != nil {
		dev.Close()
		return nil, err
	}

	b.logger.Noticef("initialized device (%d GFlops approximate speed)", dev.Speed)
	return b, nil
}

// Select the opencl device whose name contains matchName. GPU devices are
// preferred over other device types.
func SelectDevice(matchName string) (*device.Device, error) {
	devList, err := device.SelectDevices(device.AllDevices, matchName)
	if err != nil {
		return nil, err
	}
	if len(devList) == 0 {
		return nil, ErrNoDevice
	}

	for _, dev := range devList {
		if dev.Type == device.GpuDevice {
			return dev, nil
		}
	}
	return devList[0], nil
}

func (b *Backend) Name() string {
	return fmt.Sprintf("opencl (%s)", b.device.Name)
}

func (b *Backend) UploadSpheres(spheres []scene.Sphere) (tracer.SphereBuffer, error) {
	if b.resources == nil {
		return nil, tracer.ErrMissingKernel
	}

	// Empty buffers cannot be bound; reserve a single record instead. The
	// kernel never reads it since NumSpheres is zero.
	var err error
	buf := b.device.Buffer("spheres")
	if len(spheres) == 0 {
		err = buf.Allocate(sizeofSphereRec, cl.MEM_READ_ONLY)
	} else {
		err = buf.AllocateAndWriteData(scene.PackSpheres(spheres), cl.MEM_READ_ONLY)
	}
	if err != nil {
		return nil, err
	}

	b.logger.Debugf("allocated sphere buffer (%d spheres, %d bytes)", len(spheres), buf.Size())
	return &sphereBuffer{owner: b, buf: buf, count: len(spheres)}, nil
}

func (b *Backend) UploadSkybox(tex *texture.Texture) (tracer.Skybox, error) {
	if b.resources == nil {
		return nil, tracer.ErrMissingKernel
	}
	if tex == nil || tex.Width == 0 || tex.Height == 0 || len(tex.Data) < int(tex.Width*tex.Height*4) {
		return nil, texture.ErrInvalidTextureData
	}

	buf := b.device.Buffer("skybox")
	if err := buf.AllocateAndWriteData(tex.Data[:tex.Width*tex.Height*4], cl.MEM_READ_ONLY); err != nil {
		return nil, err
	}

	b.logger.Debugf("allocated skybox (%dx%d, %d bytes)", tex.Width, tex.Height, buf.Size())
	return &skyboxBuffer{owner: b, buf: buf, width: tex.Width, height: tex.Height}, nil
}

func (b *Backend) NewTarget(name string, width, height uint32) (tracer.Target, error) {
	if b.resources == nil {
		return nil, tracer.ErrMissingKernel
	}
	if width == 0 || height == 0 {
		return nil, tracer.ErrEmptyViewport
	}

	buf := b.device.Buffer(name)
	if err := buf.Allocate(int(width*height)*sizeofPixel, cl.MEM_READ_WRITE); err != nil {
		return nil, err
	}

	b.logger.Debugf("allocated target %q (%dx%d, %d bytes)", name, width, height, buf.Size())
	return &targetBuffer{owner: b, buf: buf, width: width, height: height}, nil
}

func (b *Backend) Bind(params *tracer.FrameParams) error {
	if b.resources == nil {
		return tracer.ErrMissingKernel
	}

	spheres, err := b.sphereBuffer(params.Spheres)
	if err != nil {
		return err
	}
	sky, err := b.skybox(params.Skybox)
	if err != nil {
		return err
	}

	b.bound = false
	if err = b.resources.BindFrameParams(params, spheres, sky); err != nil {
		return err
	}
	b.bound = true
	return nil
}

func (b *Backend) Dispatch(out tracer.Target, groupsX, groupsY uint32) error {
	if b.resources == nil || !b.bound {
		return tracer.ErrMissingKernel
	}

	target, err := b.target(out)
	if err != nil {
		return err
	}

	elapsed, err := b.resources.TraceFrame(target, groupsX, groupsY)
	if err != nil {
		return err
	}
	b.logger.Debugf("traced %dx%d frame in %d ms", target.width, target.height, elapsed.Nanoseconds()/1e6)
	return nil
}

func (b *Backend) Blend(src, dst tracer.Target, weight float32) error {
	if b.resources == nil {
		return tracer.ErrMissingKernel
	}

	srcTarget, err := b.target(src)
	if err != nil {
		return err
	}
	dstTarget, err := b.target(dst)
	if err != nil {
		return err
	}
	if srcTarget.width != dstTarget.width || srcTarget.height != dstTarget.height {
		return tracer.ErrTargetMismatch
	}

	_, err = b.resources.BlendFrame(srcTarget, dstTarget, weight)
	return err
}

func (b *Backend) ReadTarget(t tracer.Target, dst []float32) error {
	target, err := b.target(t)
	if err != nil {
		return err
	}

	need := int(target.numPixels()) * tracer.TargetChannels
	if len(dst) < need {
		return fmt.Errorf("%w: need %d floats, got %d", ErrBufferTooSmall, need, len(dst))
	}

	return target.buf.ReadData(0, 0, int(target.numPixels())*sizeofPixel, dst)
}

// Release kernels and shut down the underlying device.
func (b *Backend) Close() {
	if b.resources == nil {
		return
	}

	b.resources.Close()
	b.resources = nil
	b.bound = false
	b.device.Close()
}

func (b *Backend) target(t tracer.Target) (*targetBuffer, error) {
	target, ok := t.(*targetBuffer)
	if !ok || target.owner != b {
		return nil, tracer.ErrForeignResource
	}
	if target.buf.Handle() == nil {
		return nil, fmt.Errorf("opencl backend: target %q has been released", target.buf.Name())
	}
	return target, nil
}

func (b *Backend) sphereBuffer(buf tracer.SphereBuffer) (*sphereBuffer, error) {
	sb, ok := buf.(*sphereBuffer)
	if !ok || sb.owner != b {
		return nil, tracer.ErrForeignResource
	}
	if sb.buf.Handle() == nil {
		return nil, tracer.ErrMissingSceneBuffer
	}
	return sb, nil
}

func (b *Backend) skybox(s tracer.Skybox) (*skyboxBuffer, error) {
	sky, ok := s.(*skyboxBuffer)
	if !ok || sky.owner != b {
		return nil, tracer.ErrForeignResource
	}
	if sky.buf.Handle() == nil {
		return nil, tracer.ErrMissingSkybox
	}
	return sky, nil
}
