package scene

import "github.com/achilleasa/lumen/types"

// A directional light (e.g. the sun). Like the camera, its orientation is
// stored as yaw/pitch angles in radians.
type DirectionalLight struct {
	Yaw       float32
	Pitch     float32
	Intensity float32
}

// Create a new directional light.
func NewDirectionalLight(yaw, pitch, intensity float32) *DirectionalLight {
	return &DirectionalLight{
		Yaw:       yaw,
		Pitch:     clampPitch(pitch),
		Intensity: intensity,
	}
}

// Rotate the light by the given yaw/pitch deltas.
func (l *DirectionalLight) Rotate(deltaYaw, deltaPitch float32) {
	l.Yaw += deltaYaw
	l.Pitch = clampPitch(l.Pitch + deltaPitch)
}

// Get the direction in which light travels.
func (l *DirectionalLight) Forward() types.Vec3 {
	return types.Vec3(orientation(l.Yaw, l.Pitch).Rotate(localForward))
}

// Get the light-to-world rotation matrix.
func (l *DirectionalLight) Transform() types.Mat4 {
	return types.Mat4(orientation(l.Yaw, l.Pitch).Mat4())
}

// Pack the light for the trace kernel: xyz holds the travel direction and w
// the intensity.
func (l *DirectionalLight) Vector() types.Vec4 {
	return l.Forward().Vec4(l.Intensity)
}
