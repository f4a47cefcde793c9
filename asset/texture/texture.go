package texture

import (
	"errors"
	"fmt"

	"github.com/achilleasa/lumen/asset"
	"github.com/achilleasa/openimageigo"
	"github.com/chewxy/math32"
)

// The pixel format of the source image a texture was loaded from. Regardless
// of the source format, texture data is always stored as linear RGBA32F.
type Format uint32

const (
	Luminance8 Format = iota
	Luminance32F
	Rgba8
	Rgba32F
)

// Gamma used for decoding 8-bit source images into linear space.
const decodeGamma float32 = 2.2

var ErrInvalidTextureData = errors.New("texture: pixel data does not match texture dimensions")

// A texture image in linear RGBA32F layout.
type Texture struct {
	// Format of the source image.
	Format Format

	Width  uint32
	Height uint32

	// Pixel data; 4 floats per pixel, rows stored top to bottom.
	Data []float32
}

// Create a texture from existing RGBA32F pixel data.
func FromPixels(width, height uint32, data []float32) (*Texture, error) {
	if width == 0 || height == 0 || len(data) != int(width*height*4) {
		return nil, fmt.Errorf("%w: %dx%d with %d floats", ErrInvalidTextureData, width, height, len(data))
	}

	return &Texture{
		Format: Rgba32F,
		Width:  width,
		Height: height,
		Data:   data,
	}, nil
}

// Load a texture from a Resource. Any image format supported by
// OpenImageIO can be used; HDR formats such as .hdr and .exr keep their
// full dynamic range.
func New(res *asset.Resource) (*Texture, error) {
	// oiio can only read from the filesystem
	pathToFile, cleanup, err := res.LocalPath()
	if err != nil {
		return nil, err
	}
	defer cleanup()

	input, err := oiio.OpenImageInput(pathToFile)
	if err != nil {
		return nil, err
	}
	defer input.Close()

	// Get image spec and check whether we support this format
	spec := input.Spec()
	numChannels := spec.NumChannels()
	if numChannels != 1 && numChannels != 3 && numChannels != 4 {
		return nil, fmt.Errorf("texture: unsupported channel count %d while loading %s", numChannels, res.Path())
	}
	if spec.Depth() != 1 {
		return nil, fmt.Errorf("texture: unsupported depth %d while loading %s", spec.Depth(), res.Path())
	}

	tex := &Texture{
		Width:  uint32(spec.Width()),
		Height: uint32(spec.Height()),
	}

	// 8-bit images are assumed to be sRGB encoded; everything else is
	// read back as linear floats.
	srgb := spec.Format() == oiio.TypeUint8
	switch {
	case srgb && numChannels == 1:
		tex.Format = Luminance8
	case srgb:
		tex.Format = Rgba8
	case numChannels == 1:
		tex.Format = Luminance32F
	default:
		tex.Format = Rgba32F
	}

	imgData, err := input.ReadImageFormat(oiio.TypeFloat, nil)
	if err != nil {
		return nil, fmt.Errorf("texture: could not read data from %s: %w", res.Path(), err)
	}

	src, ok := imgData.([]float32)
	if !ok {
		return nil, fmt.Errorf("texture: unexpected pixel data type %T while loading %s", imgData, res.Path())
	}

	tex.Data = expandToRGBA(src, numChannels, srgb)
	if len(tex.Data) != int(tex.Width*tex.Height*4) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTextureData, res.Path())
	}

	return tex, nil
}

// Convert 1, 3 or 4 channel data into linear RGBA.
func expandToRGBA(src []float32, numChannels int, srgb bool) []float32 {
	numPixels := len(src) / numChannels
	out := make([]float32, numPixels*4)

	decode := func(v float32) float32 {
		if !srgb {
			return v
		}
		return math32.Pow(v, decodeGamma)
	}

	for p := 0; p < numPixels; p++ {
		in := src[p*numChannels : (p+1)*numChannels]
		o := out[p*4 : p*4+4]
		switch numChannels {
		case 1:
			l := decode(in[0])
			o[0], o[1], o[2], o[3] = l, l, l, 1
		case 3:
			o[0], o[1], o[2], o[3] = decode(in[0]), decode(in[1]), decode(in[2]), 1
		default:
			o[0], o[1], o[2], o[3] = decode(in[0]), decode(in[1]), decode(in[2]), in[3]
		}
	}

	return out
}
