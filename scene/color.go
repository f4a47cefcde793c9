package scene

import (
	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
)

// Convert a hue/saturation/value triplet (all in [0, 1]) to linear RGB.
func HSVToRGB(h, s, v float32) types.Vec3 {
	if s <= 0 {
		return types.Splat3(v)
	}

	h = (h - math32.Floor(h)) * 6
	sector := int(h)
	f := h - float32(sector)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	switch sector {
	case 0:
		return types.XYZ(v, t, p)
	case 1:
		return types.XYZ(q, v, p)
	case 2:
		return types.XYZ(p, v, t)
	case 3:
		return types.XYZ(p, q, v)
	case 4:
		return types.XYZ(t, p, v)
	default:
		return types.XYZ(v, p, q)
	}
}
