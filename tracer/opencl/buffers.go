package opencl

import (
	"github.com/achilleasa/lumen/tracer/opencl/device"
)

// Size of buffer elements in bytes.
const (
	sizeofPixel     = 16 // float4
	sizeofSphereRec = 40 // 10 x float32
)

// Device buffer with packed sphere records.
type sphereBuffer struct {
	owner *Backend
	buf   *device.Buffer
	count int
}

func (sb *sphereBuffer) Len() int {
	return sb.count
}

func (sb *sphereBuffer) Release() {
	sb.buf.Release()
}

// Device buffer with RGBA32F equirectangular skybox texels.
type skyboxBuffer struct {
	owner         *Backend
	buf           *device.Buffer
	width, height uint32
}

func (sb *skyboxBuffer) Release() {
	sb.buf.Release()
}

// Device buffer with RGBA32F render target pixels.
type targetBuffer struct {
	owner         *Backend
	buf           *device.Buffer
	width, height uint32
}

func (tb *targetBuffer) Width() uint32  { return tb.width }
func (tb *targetBuffer) Height() uint32 { return tb.height }

func (tb *targetBuffer) Release() {
	tb.buf.Release()
}

func (tb *targetBuffer) numPixels() uint32 {
	return tb.width * tb.height
}
