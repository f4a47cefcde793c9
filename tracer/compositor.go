package tracer

// Get the blend weight for the sample with the given index. The first sample
// (index 0) fully replaces the display target.
func BlendWeight(sample uint32) float32 {
	return float32(1 / (float64(sample) + 1))
}

// Compositor blends fresh frames into the display target producing a running
// average of all samples since the last reset.
type Compositor struct {
	backend Backend
}

func NewCompositor(backend Backend) *Compositor {
	return &Compositor{backend: backend}
}

// Blend src into dst as sample number sample.
func (c *Compositor) Composite(src, dst Target, sample uint32) error {
	if src.Width() != dst.Width() || src.Height() != dst.Height() {
		return ErrTargetMismatch
	}
	return c.backend.Blend(src, dst, BlendWeight(sample))
}
