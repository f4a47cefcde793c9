package device

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

type Buffer struct {
	// Handle to opencl buffer.
	bufHandle cl.Mem

	// Associated Device.
	device *Device

	// A name for identifying the buffer.
	name string

	// Allocated size in bytes.
	size int
}

// Get buffer size in bytes.
func (b *Buffer) Size() int {
	return b.size
}

// Get buffer name.
func (b *Buffer) Name() string {
	return b.name
}

// Allocate a buffer with the given size and flags. Any previously allocated
// memory is released.
func (b *Buffer) Allocate(size int, flags cl.MemFlags) error {
	return b.allocate(size, flags, nil)
}

// Allocate a buffer with the given flags that is large enough to hold the
// given slice and have opencl copy its contents from host memory.
func (b *Buffer) AllocateAndWriteData(data interface{}, flags cl.MemFlags) error {
	dataPtr, dataLen, err := getSliceData(data)
	if err != nil {
		return err
	}
	return b.allocate(dataLen, flags|cl.MEM_COPY_HOST_PTR, dataPtr)
}

func (b *Buffer) allocate(size int, flags cl.MemFlags, hostPtr unsafe.Pointer) error {
	if !b.device.Ready() {
		return ErrDeviceNotReady
	}

	b.Release()

	var errCode int32
	b.bufHandle = cl.CreateBuffer(
		*b.device.ctx,
		flags,
		cl.MemFlags(size),
		hostPtr,
		&errCode,
	)
	if cl.ErrorCode(errCode) != cl.SUCCESS {
		b.bufHandle = nil
		return b.device.clError(fmt.Sprintf("could not allocate buffer %s of size %d", b.name, size), cl.ErrorCode(errCode))
	}

	b.size = size
	return nil
}

// Read data from the device buffer into the supplied host slice. If size is
// <= 0 then ReadData reads the entire buffer. Both offsets are specified in
// bytes.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if size <= 0 {
		size = b.size - srcOffset
	}

	dataPtr, dataLen, err := getSliceData(hostBuffer)
	if err != nil {
		return err
	}
	if dstOffset+size > dataLen {
		return fmt.Errorf("%w: host buffer holds %d bytes; cannot read %d bytes at offset %d from %s", ErrInsufficientSpace, dataLen, size, dstOffset, b.name)
	}

	errCode := cl.EnqueueReadBuffer(
		b.device.cmdQueue,
		b.bufHandle,
		cl.TRUE,
		uint64(srcOffset),
		uint64(size),
		unsafe.Pointer(uintptr(dataPtr)+uintptr(dstOffset)),
		0,
		nil,
		nil,
	)
	if errCode != cl.SUCCESS {
		return b.device.clError(fmt.Sprintf("error copying device data from %s to host buffer", b.name), errCode)
	}

	return nil
}

// Release buffer. Release may be called more than once.
func (b *Buffer) Release() {
	if b.bufHandle != nil {
		cl.ReleaseMemObject(b.bufHandle)
		b.bufHandle = nil
		b.size = 0
	}
}

// Get opencl buffer handle.
func (b *Buffer) Handle() cl.Mem {
	return b.bufHandle
}

// Given an interface{} containing a non-empty slice return a pointer to its
// data and its length in bytes.
func getSliceData(data interface{}) (unsafe.Pointer, int, error) {
	reflVal := reflect.ValueOf(data)
	if reflVal.Kind() != reflect.Slice || reflVal.Len() == 0 {
		return nil, 0, ErrUnsupportedData
	}

	return unsafe.Pointer(reflVal.Index(0).Addr().Pointer()),
		reflVal.Len() * int(reflVal.Type().Elem().Size()),
		nil
}
