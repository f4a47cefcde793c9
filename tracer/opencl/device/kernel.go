package device

import (
	"fmt"
	"reflect"
	"time"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/lumen/types"
)

// A wrapper around opencl kernelHandles.
type Kernel struct {
	device       *Device
	kernelHandle cl.Kernel
	name         string

	// kernelHandle workgroup sizes and offsets
	offsets         [2]uint64
	globalWorkSizes [2]uint64
	localWorkSizes  [2]uint64
}

// Get kernel name.
func (k *Kernel) Name() string {
	return k.name
}

// Free any allocated resources used by this kernel.
func (k *Kernel) Release() {
	if k.kernelHandle != nil {
		cl.ReleaseKernel(k.kernelHandle)
		k.kernelHandle = nil
	}
}

// Bind arguments to the kernel starting at argument 0.
func (k *Kernel) SetArgs(args ...interface{}) error {
	for argIndex, arg := range args {
		if err := k.SetArg(uint32(argIndex), arg); err != nil {
			return err
		}
	}
	return nil
}

// Bind a single kernel argument. Vec3 values occupy the same space as a
// float4 on the device; callers should pass Vec4 values for float3 args.
func (k *Kernel) SetArg(argIndex uint32, arg interface{}) error {
	var (
		size uint64
		ptr  unsafe.Pointer
	)

	switch v := arg.(type) {
	case *Buffer:
		bufHandle := v.Handle()
		size, ptr = 8, unsafe.Pointer(&bufHandle)
	case int32:
		size, ptr = 4, unsafe.Pointer(&v)
	case uint32:
		size, ptr = 4, unsafe.Pointer(&v)
	case float32:
		size, ptr = 4, unsafe.Pointer(&v)
	case types.Vec2:
		size, ptr = 8, unsafe.Pointer(&v[0])
	case types.Vec4:
		size, ptr = 16, unsafe.Pointer(&v[0])
	case types.Mat4:
		size, ptr = 64, unsafe.Pointer(&v[0])
	default:
		return fmt.Errorf(
			"opencl device (%s): could not set arg %d for kernel %s; unsupported arg type: %s",
			k.device.Name,
			argIndex,
			k.name,
			reflect.TypeOf(arg),
		)
	}

	if errCode := cl.SetKernelArg(k.kernelHandle, argIndex, size, ptr); errCode != cl.SUCCESS {
		return k.device.clError(fmt.Sprintf("could not set arg %d for kernel %s", argIndex, k.name), errCode)
	}
	return nil
}

// Execute 1D kernel. If localWorkSize is equal to 0 then the opencl
// implementation will pick the optimal worksize split for the underlying
// hardware.
func (k *Kernel) Exec1D(offset, globalWorkSize, localWorkSize int) (time.Duration, error) {
	var offsetPtr, localSizePtr *uint64

	if offset > 0 {
		k.offsets[0] = uint64(offset)
		offsetPtr = &k.offsets[0]
	}
	k.globalWorkSizes[0] = uint64(globalWorkSize)
	if localWorkSize != 0 {
		k.localWorkSizes[0] = uint64(localWorkSize)
		localSizePtr = &k.localWorkSizes[0]
	}

	return k.exec(1, offsetPtr, localSizePtr)
}

// Execute 2D kernel. If both localWorkSizeX and localWorkSizeY are 0 then the
// opencl implementation will pick the optimal local worksize split for the
// underlying hardware.
func (k *Kernel) Exec2D(offsetX, offsetY, globalWorkSizeX, globalWorkSizeY, localWorkSizeX, localWorkSizeY int) (time.Duration, error) {
	var offsetPtr, localSizePtr *uint64

	if offsetX > 0 || offsetY > 0 {
		k.offsets[0], k.offsets[1] = uint64(offsetX), uint64(offsetY)
		offsetPtr = &k.offsets[0]
	}
	k.globalWorkSizes[0], k.globalWorkSizes[1] = uint64(globalWorkSizeX), uint64(globalWorkSizeY)
	if localWorkSizeX != 0 && localWorkSizeY != 0 {
		k.localWorkSizes[0], k.localWorkSizes[1] = uint64(localWorkSizeX), uint64(localWorkSizeY)
		localSizePtr = &k.localWorkSizes[0]
	}

	return k.exec(2, offsetPtr, localSizePtr)
}

// Enqueue the kernel and wait for it to complete.
func (k *Kernel) exec(dims uint32, offsetPtr, localSizePtr *uint64) (time.Duration, error) {
	tick := time.Now()
	errCode := cl.EnqueueNDRangeKernel(
		k.device.cmdQueue,
		k.kernelHandle,
		dims,
		offsetPtr,
		&k.globalWorkSizes[0],
		localSizePtr,
		0,
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		return 0, k.device.clError(fmt.Sprintf("unable to execute kernel %s", k.name), errCode)
	}

	if err := k.device.Finish(); err != nil {
		return 0, err
	}

	return time.Since(tick), nil
}
