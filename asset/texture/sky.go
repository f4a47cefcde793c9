package texture

import (
	"math"

	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

// Generate an equirectangular sky texture that blends from the zenith color
// to the horizon color and then to the ground color below the horizon.
func Gradient(width, height uint32, zenith, horizon, ground types.Vec3) *Texture {
	data := make([]float32, width*height*4)

	for y := uint32(0); y < height; y++ {
		// elevation is +1 at the top row and -1 at the bottom row
		elevation := 1 - 2*(float32(y)+0.5)/float32(height)

		var c types.Vec3
		if elevation >= 0 {
			t := math32.Sqrt(elevation)
			c = horizon.Mul(1 - t).Add(zenith.Mul(t))
		} else {
			t := math32.Sqrt(-elevation)
			c = horizon.Mul(1 - t).Add(ground.Mul(t))
		}

		for x := uint32(0); x < width; x++ {
			offset := (y*width + x) * 4
			data[offset], data[offset+1], data[offset+2], data[offset+3] = c[0], c[1], c[2], 1
		}
	}

	return &Texture{
		Format: Rgba32F,
		Width:  width,
		Height: height,
		Data:   data,
	}
}

// Default procedural sky used when no skybox image is supplied.
func DefaultSky() *Texture {
	return Gradient(
		256, 128,
		types.XYZ(0.25, 0.45, 0.85),
		types.XYZ(0.9, 0.9, 0.95),
		types.XYZ(0.3, 0.28, 0.25),
	)
}

// Sample the texture as an equirectangular environment map using the given
// (normalized) direction. Nearest-texel filtering is used.
func (t *Texture) Sample(dir types.Vec3) types.Vec3 {
	u, v := EquirectUV(dir)

	x := uint32(u * float32(t.Width))
	if x >= t.Width {
		x = t.Width - 1
	}
	y := uint32(v * float32(t.Height))
	if y >= t.Height {
		y = t.Height - 1
	}

	offset := (y*t.Width + x) * 4
	return types.XYZ(t.Data[offset], t.Data[offset+1], t.Data[offset+2])
}

// Map a direction to equirectangular texture coordinates in [0, 1]. The v
// coordinate is 0 for directions pointing straight up.
func EquirectUV(dir types.Vec3) (u, v float32) {
	y := dir[1]
	if y > 1 {
		y = 1
	} else if y < -1 {
		y = -1
	}

	u = 0.5 + math32.Atan2(dir[0], -dir[2])/(2*math.Pi)
	v = math32.Acos(y) / math.Pi
	return u, v
}
