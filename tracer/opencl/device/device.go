package device

import (
	"fmt"
	"regexp"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
)

type DeviceType uint8

// Supported device types.
const (
	CpuDevice   DeviceType = 1 << iota
	GpuDevice              = 1 << iota
	OtherDevice            = 1 << iota
	AllDevices             = 0xFF
)

// Size of the buffer used for capturing program build logs.
const buildLogSize = 64 * 1024

var (
	indentRegex = regexp.MustCompile("(?m)^")
)

func (dt DeviceType) String() string {
	switch dt {
	case CpuDevice:
		return "CPU"
	case GpuDevice:
		return "GPU"
	case OtherDevice:
		return "Other"
	}
	return fmt.Sprintf("DeviceType(%d)", uint8(dt))
}

// Wrapper around opencl-supported devices.
type Device struct {
	Name string
	Id   cl.DeviceId
	Type DeviceType

	compUnits  uint32
	clockSpeed uint32

	// Speed estimate in GFlops.
	Speed uint32

	// Opencl handles; allocated when device is initialized.
	ctx      *cl.Context
	cmdQueue cl.CommandQueue
	program  cl.Program
}

// Implements Stringer.
func (d *Device) String() string {
	return fmt.Sprintf(
		"Name: %s\nType: %s\nSpecs: %d computation units, %d Mhz clock, %d GFlops approximate speed",
		d.Name,
		d.Type.String(),
		d.compUnits,
		d.clockSpeed,
		d.Speed,
	)
}

// Returns true if the device has been initialized.
func (d *Device) Ready() bool {
	return d.ctx != nil && d.program != nil
}

// Initialize the device and build the supplied program source. Calling Init on
// an initialized device is a no-op.
func (d *Device) Init(programSrc, buildOptions string) error {
	var errCode cl.ErrorCode

	if d.ctx != nil {
		return nil
	}

	d.ctx = cl.CreateContext(nil, 1, &d.Id, nil, nil, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		d.ctx = nil
		return d.clError("could not create opencl context", errCode)
	}

	d.cmdQueue = cl.CreateCommandQueue(*d.ctx, d.Id, 0, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		defer d.Close()
		return d.clError("could not create command queue", errCode)
	}

	src := cl.Str(programSrc + "\x00")
	d.program = cl.CreateProgramWithSource(*d.ctx, 1, &src, nil, (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		defer d.Close()
		return d.clError("could not create program", errCode)
	}

	errCode = cl.BuildProgram(d.program, 1, &d.Id, cl.Str(buildOptions+"\x00"), nil, nil)
	if errCode != cl.SUCCESS {
		buildLog := d.buildLog()
		defer d.Close()
		return fmt.Errorf("%w:\n%s", d.clError("could not build program", errCode), buildLog)
	}

	return nil
}

// Shut down the device. Close may be called more than once.
func (d *Device) Close() {
	if d.program != nil {
		cl.ReleaseProgram(d.program)
		d.program = nil
	}

	if d.cmdQueue != nil {
		cl.ReleaseCommandQueue(d.cmdQueue)
		d.cmdQueue = nil
	}

	if d.ctx != nil {
		cl.ReleaseContext(d.ctx)
		d.ctx = nil
	}
}

// Load kernel by name.
func (d *Device) Kernel(name string) (*Kernel, error) {
	if !d.Ready() {
		return nil, ErrDeviceNotReady
	}

	var errCode cl.ErrorCode
	kernelHandle := cl.CreateKernel(d.program, cl.Str(name+"\x00"), (*int32)(&errCode))
	if errCode != cl.SUCCESS {
		return nil, d.clError(fmt.Sprintf("could not load kernel %s", name), errCode)
	}

	return &Kernel{
		device:       d,
		kernelHandle: kernelHandle,
		name:         name,
	}, nil
}

// Create an empty buffer.
func (d *Device) Buffer(name string) *Buffer {
	return &Buffer{
		device: d,
		name:   name,
	}
}

// Block until all enqueued commands have completed.
func (d *Device) Finish() error {
	if errCode := cl.Finish(d.cmdQueue); errCode != cl.SUCCESS {
		return d.clError("command queue did not complete", errCode)
	}
	return nil
}

// Detect device speed.
func (d *Device) detectSpeed() error {
	// Calculate theoretical device speed as: compute units * 2ops/cycle * clock speed
	errCode := cl.GetDeviceInfo(d.Id, cl.DEVICE_MAX_COMPUTE_UNITS, 4, unsafe.Pointer(&d.compUnits), nil)
	if errCode != cl.SUCCESS {
		return d.clError("could not query MAX_COMPUTE_UNITS", errCode)
	}
	errCode = cl.GetDeviceInfo(d.Id, cl.DEVICE_MAX_CLOCK_FREQUENCY, 4, unsafe.Pointer(&d.clockSpeed), nil)
	if errCode != cl.SUCCESS {
		return d.clError("could not query MAX_CLOCK_FREQUENCY", errCode)
	}
	d.Speed = d.compUnits * d.clockSpeed / 1000

	return nil
}

func (d *Device) buildLog() string {
	var dataLen uint64
	data := make([]byte, buildLogSize)

	cl.GetProgramBuildInfo(d.program, d.Id, cl.PROGRAM_BUILD_LOG, uint64(len(data)), unsafe.Pointer(&data[0]), &dataLen)
	if dataLen == 0 {
		return ""
	}
	return string(data[0 : dataLen-1])
}

func (d *Device) clError(msg string, errCode cl.ErrorCode) error {
	return &Error{Device: d.Name, Msg: msg, Code: errCode}
}
