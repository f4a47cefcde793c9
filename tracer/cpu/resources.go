package cpu

import (
	"github.com/achilleasa/lumen/asset/texture"
	"github.com/achilleasa/lumen/scene"
)

// Image is a host-resident float32 RGBA render target.
type Image struct {
	backend *Backend
	name    string
	width   uint32
	height  uint32

	// Pixel data; row 0 is the bottom row.
	Data []float32
}

func (img *Image) Width() uint32  { return img.width }
func (img *Image) Height() uint32 { return img.height }

func (img *Image) Release() {
	img.Data = nil
}

type sphereBuffer struct {
	backend  *Backend
	spheres  []scene.Sphere
	released bool
}

func (sb *sphereBuffer) Len() int {
	return len(sb.spheres)
}

func (sb *sphereBuffer) Release() {
	sb.released = true
}

type skybox struct {
	backend *Backend
	tex     *texture.Texture
}

func (s *skybox) Release() {
	s.tex = nil
}
