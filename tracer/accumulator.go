package tracer

import "github.com/achilleasa/lumen/types"

// The reason for an accumulation reset.
type ResetCause uint8

const (
	NoReset ResetCause = iota
	ResetInitial
	ResetCameraMoved
	ResetLightMoved
	ResetViewportResized
	ResetRequested
	ResetSceneChanged
	ResetOptionsChanged
	ResetSkyboxChanged
)

func (c ResetCause) String() string {
	switch c {
	case NoReset:
		return "none"
	case ResetInitial:
		return "initial frame"
	case ResetCameraMoved:
		return "camera moved"
	case ResetLightMoved:
		return "light moved"
	case ResetViewportResized:
		return "viewport resized"
	case ResetRequested:
		return "reset requested"
	case ResetSceneChanged:
		return "scene rebuilt"
	case ResetOptionsChanged:
		return "options changed"
	case ResetSkyboxChanged:
		return "skybox changed"
	}
	return "unknown"
}

// Accumulator counts the samples that have been blended into the display
// target since the last reset.
type Accumulator struct {
	sample uint32
}

// Reset the sample counter.
func (a *Accumulator) Reset() {
	a.sample = 0
}

// Advance the sample counter. Must be called exactly once per composited frame.
func (a *Accumulator) Advance() {
	a.sample++
}

// Get the number of samples accumulated so far.
func (a *Accumulator) Value() uint32 {
	return a.sample
}

// The state whose change invalidates accumulated samples.
type pose struct {
	cameraToWorld    types.Mat4
	cameraProjection types.Mat4
	lightTransform   types.Mat4
	lightIntensity   float32
	frameW, frameH   uint32
}

// poseTracker remembers the pose observed during the previous frame.
type poseTracker struct {
	last  pose
	valid bool
}

// Compare cur to the previously observed pose and record it. Any difference
// in the compared values is reported regardless of its magnitude.
func (pt *poseTracker) Observe(cur pose) ResetCause {
	prev, valid := pt.last, pt.valid
	pt.last, pt.valid = cur, true

	switch {
	case !valid:
		return ResetInitial
	case prev.frameW != cur.frameW || prev.frameH != cur.frameH:
		return ResetViewportResized
	case prev.cameraToWorld != cur.cameraToWorld || prev.cameraProjection != cur.cameraProjection:
		return ResetCameraMoved
	case prev.lightTransform != cur.lightTransform || prev.lightIntensity != cur.lightIntensity:
		return ResetLightMoved
	}
	return NoReset
}
