package opencl

import (
	"fmt"
	"time"

	"github.com/achilleasa/lumen/tracer"
	"github.com/achilleasa/lumen/tracer/opencl/device"
)

// Index of the first trace kernel argument set by BindFrameParams. Earlier
// slots describe the output target and are set on every dispatch.
const traceArgFrameParams uint32 = 3

// A container that stores handles to open CL kernels.
type deviceResources struct {
	kernels []*device.Kernel
}

// Using the supplied (initialized) device as a target, load all defined kernels.
func newDeviceResources(dev *device.Device) (*deviceResources, error) {
	var err error

	if dev == nil {
		return nil, fmt.Errorf("device_resources: invalid device handle")
	}

	dr := &deviceResources{
		kernels: make([]*device.Kernel, numKernels),
	}

	var kType kernelType
	for kType = 0; kType < numKernels; kType++ {
		dr.kernels[kType], err = dev.Kernel(kType.String())
		if err != nil {
			dr.Close()
			return nil, err
		}
	}

	return dr, nil
}

// Release all allocated resources.
func (dr *deviceResources) Close() {
	if dr.kernels != nil {
		for _, kernel := range dr.kernels {
			if kernel != nil {
				kernel.Release()
			}
		}
		dr.kernels = nil
	}
}

// Bind frame parameters to the trace kernel.
func (dr *deviceResources) BindFrameParams(params *tracer.FrameParams, spheres *sphereBuffer, sky *skyboxBuffer) error {
	kernel := dr.kernels[traceFrame]

	args := []interface{}{
		params.CameraToWorld,
		params.CameraInverseProjection,
		params.PixelOffset,
		params.RayBounces,
		params.DirectionalLight,
		params.AlbedoMultiplier.Vec4(0),
		params.SpecularMultiplier.Vec4(0),
		spheres.buf,
		params.NumSpheres,
		sky.buf,
		sky.width,
		sky.height,
	}
	for index, arg := range args {
		if err := kernel.SetArg(traceArgFrameParams+uint32(index), arg); err != nil {
			return err
		}
	}
	return nil
}

// Trace a frame into out using groupsX x groupsY work-groups.
func (dr *deviceResources) TraceFrame(out *targetBuffer, groupsX, groupsY uint32) (time.Duration, error) {
	kernel := dr.kernels[traceFrame]

	// Output slots come first so SetArgs can bind them in order
	if err := kernel.SetArgs(out.buf, out.width, out.height); err != nil {
		return 0, err
	}

	return kernel.Exec2D(
		0, 0,
		int(groupsX*tracer.WorkGroupSize), int(groupsY*tracer.WorkGroupSize),
		tracer.WorkGroupSize, tracer.WorkGroupSize,
	)
}

// Blend src into dst with the given weight.
func (dr *deviceResources) BlendFrame(src, dst *targetBuffer, weight float32) (time.Duration, error) {
	kernel := dr.kernels[blendFrame]

	numPixels := dst.numPixels()
	err := kernel.SetArgs(
		src.buf,
		dst.buf,
		numPixels,
		weight,
	)
	if err != nil {
		return 0, err
	}

	return kernel.Exec1D(0, int(numPixels), 0)
}
