package scene

import (
	"math"

	"github.com/achilleasa/lumen/types"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Max camera pitch; keeps the view direction away from the up vector.
const maxPitch = float32(89 * math.Pi / 180)

var (
	worldUp      = types.XYZ(0, 1, 0)
	localForward = mgl32.Vec3{0, 0, -1}
)

type CameraDirection uint8

// Camera movement directions.
const (
	Forward CameraDirection = iota
	Backward
	Left
	Right
	Up
	Down
)

// A perspective camera. Orientation is stored as yaw/pitch angles (radians)
// around the world up axis and the camera right axis.
type Camera struct {
	Position types.Vec3
	Yaw      float32
	Pitch    float32

	// Vertical field of view in degrees.
	FOV  float32
	Near float32
	Far  float32

	aspect float32
}

// Create a camera at the origin looking down the -Z axis.
func NewCamera(fov float32) *Camera {
	return &Camera{
		FOV:    fov,
		Near:   0.3,
		Far:    1000,
		aspect: 1,
	}
}

// Set the viewport aspect ratio used by the projection matrix.
func (c *Camera) SetAspect(aspect float32) {
	if aspect > 0 {
		c.aspect = aspect
	}
}

// Get the viewport aspect ratio.
func (c *Camera) Aspect() float32 {
	return c.aspect
}

// Orient the camera so it looks at the given point.
func (c *Camera) LookAt(target types.Vec3) {
	dir := target.Sub(c.Position).Normalize()
	if dir == (types.Vec3{}) {
		return
	}
	c.Yaw = math32.Atan2(-dir[0], -dir[2])
	c.Pitch = clampPitch(math32.Asin(dir[1]))
}

// Rotate the camera by the given yaw/pitch deltas.
func (c *Camera) Rotate(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch = clampPitch(c.Pitch + deltaPitch)
}

// Move the camera along one of its local axes.
func (c *Camera) Move(dir CameraDirection, amount float32) {
	fwd := c.Forward()
	right := fwd.Cross(worldUp).Normalize()

	var delta types.Vec3
	switch dir {
	case Forward:
		delta = fwd
	case Backward:
		delta = fwd.Mul(-1)
	case Left:
		delta = right.Mul(-1)
	case Right:
		delta = right
	case Up:
		delta = worldUp
	case Down:
		delta = worldUp.Mul(-1)
	}
	c.Position = c.Position.Add(delta.Mul(amount))
}

// Get the camera view direction.
func (c *Camera) Forward() types.Vec3 {
	return types.Vec3(orientation(c.Yaw, c.Pitch).Rotate(localForward))
}

// Get the camera-to-world transformation matrix.
func (c *Camera) CameraToWorld() types.Mat4 {
	return types.LookAtV(c.Position, c.Position.Add(c.Forward()), worldUp).Inv()
}

// Get the inverse of the camera projection matrix.
func (c *Camera) InverseProjection() types.Mat4 {
	return types.Perspective4(c.FOV, c.aspect, c.Near, c.Far).Inv()
}

func orientation(yaw, pitch float32) mgl32.Quat {
	yawQuat := mgl32.QuatRotate(yaw, mgl32.Vec3(worldUp))
	pitchQuat := mgl32.QuatRotate(pitch, mgl32.Vec3{1, 0, 0})
	return yawQuat.Mul(pitchQuat).Normalize()
}

func clampPitch(pitch float32) float32 {
	if pitch > maxPitch {
		return maxPitch
	}
	if pitch < -maxPitch {
		return -maxPitch
	}
	return pitch
}
