package opencl

import "errors"

var (
	ErrNoDevice       = errors.New("opencl backend: no matching opencl device found")
	ErrBufferTooSmall = errors.New("opencl backend: destination buffer too small")
)
