package tracer

import (
	"fmt"
	"math/rand"

	"github.com/achilleasa/lumen/log"
	"github.com/achilleasa/lumen/scene"
)

// SceneBuffer owns the device buffer with the sphere records of the current
// scene.
type SceneBuffer struct {
	logger  log.Logger
	backend Backend

	spheres []scene.Sphere
	buffer  SphereBuffer
}

// Create a new scene buffer backed by the given backend.
func NewSceneBuffer(backend Backend) *SceneBuffer {
	return &SceneBuffer{
		logger:  log.New("scene buffer"),
		backend: backend,
	}
}

// Generate a random sphere set and upload it, replacing any previously
// uploaded buffer. If the upload fails the previous buffer stays in place.
func (sb *SceneBuffer) Build(opts scene.GeneratorOptions, rng *rand.Rand) error {
	if err := opts.Validate(); err != nil {
		return err
	}

	spheres := scene.Generate(opts, rng)
	if uint32(len(spheres)) < opts.MaxSpheres {
		sb.logger.Infof("placed %d out of %d requested spheres; remaining candidates overlapped", len(spheres), opts.MaxSpheres)
	} else {
		sb.logger.Debugf("placed %d spheres", len(spheres))
	}

	return sb.Upload(spheres)
}

// Upload an explicit sphere list, replacing any previously uploaded buffer.
func (sb *SceneBuffer) Upload(spheres []scene.Sphere) error {
	buf, err := sb.backend.UploadSpheres(spheres)
	if err != nil {
		return fmt.Errorf("scene buffer: could not upload %d spheres: %w", len(spheres), err)
	}

	sb.Release()
	sb.buffer = buf
	sb.spheres = spheres
	return nil
}

// Get the device buffer handle or nil if no buffer has been uploaded.
func (sb *SceneBuffer) Handle() SphereBuffer {
	return sb.buffer
}

// Get the number of spheres in the device buffer.
func (sb *SceneBuffer) Count() uint32 {
	if sb.buffer == nil {
		return 0
	}
	return uint32(sb.buffer.Len())
}

// Get a host copy of the uploaded spheres.
func (sb *SceneBuffer) Spheres() []scene.Sphere {
	return sb.spheres
}

// Release the device buffer.
func (sb *SceneBuffer) Release() {
	if sb.buffer != nil {
		sb.buffer.Release()
		sb.buffer = nil
	}
	sb.spheres = nil
}
