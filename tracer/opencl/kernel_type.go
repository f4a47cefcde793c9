package opencl

import (
	_ "embed"
	"fmt"
)

// Options passed to the opencl compiler.
const buildOptions = "-cl-mad-enable"

//go:embed CL/raytrace.cl
var programSource string

type kernelType uint8

// The list of kernels that implement the tracer.
const (
	traceFrame kernelType = iota
	blendFrame
	//
	numKernels
)

// Implements Stringer; map kernel type to the kernel name as defined in the CL source files.
func (kt kernelType) String() string {
	switch kt {
	case traceFrame:
		return "traceFrame"
	case blendFrame:
		return "blendFrame"
	default:
		panic(fmt.Sprintf("Unsupported kernel type: %d", kt))
	}
}
