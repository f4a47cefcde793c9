package renderer

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/achilleasa/lumen/tracer"
	"github.com/chewxy/math32"
)

// Gamma used for encoding linear radiance values.
const displayGamma float32 = 1 / 2.2

// A host copy of an accumulated frame in linear RGBA32F layout. Row 0 is the
// bottom row of the image.
type Frame struct {
	Width  uint32
	Height uint32
	Data   []float32
}

// Map the frame to an 8-bit image. Values are scaled by exposure, clamped to
// [0, 1] and gamma encoded. Rows are flipped so that row 0 of the returned
// image is the top row.
func (f *Frame) ToRGBA(exposure float32) (*image.RGBA, error) {
	if len(f.Data) < int(f.Width*f.Height*tracer.TargetChannels) {
		return nil, fmt.Errorf("%w: %dx%d with %d floats", ErrFrameSizeMismatch, f.Width, f.Height, len(f.Data))
	}

	im := image.NewRGBA(image.Rect(0, 0, int(f.Width), int(f.Height)))
	f.encode(im.Pix, im.Stride, exposure, true)
	return im, nil
}

// Encode the frame into 8-bit RGBA pixels with the given row stride. If flipY
// is set, the top row of the frame is written first.
func (f *Frame) encode(pix []uint8, stride int, exposure float32, flipY bool) {
	for y := uint32(0); y < f.Height; y++ {
		dstY := y
		if flipY {
			dstY = f.Height - 1 - y
		}

		srcRow := f.Data[y*f.Width*tracer.TargetChannels:]
		dstRow := pix[int(dstY)*stride:]
		for x := uint32(0); x < f.Width; x++ {
			offset := x * tracer.TargetChannels
			dstRow[offset] = encodeChannel(srcRow[offset] * exposure)
			dstRow[offset+1] = encodeChannel(srcRow[offset+1] * exposure)
			dstRow[offset+2] = encodeChannel(srcRow[offset+2] * exposure)
			dstRow[offset+3] = 255
		}
	}
}

// Write the frame to a png file.
func (f *Frame) SavePNG(imgFile string, exposure float32) error {
	im, err := f.ToRGBA(exposure)
	if err != nil {
		return err
	}

	out, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer out.Close()

	return png.Encode(out, im)
}

func encodeChannel(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math32.Pow(v, displayGamma)*255 + 0.5)
}
