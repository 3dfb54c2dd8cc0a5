// Package viewer draws a physics scene with raylib: a free-flying camera,
// frustum culling and debug shapes for colliders.
package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

type FlyCamera struct {
	Position  rl.Vector3
	Yaw       float32
	Pitch     float32
	MoveSpeed float32
	LookSpeed float32
	Fovy      float32
}

func NewFlyCamera(pos rl.Vector3) *FlyCamera {
	return &FlyCamera{
		Position:  pos,
		Yaw:       -135.0,
		Pitch:     -30.0,
		MoveSpeed: 8.0, // Units per second
		LookSpeed: 0.1,
		Fovy:      45,
	}
}

// Update moves the camera with WASD, Q/E for down/up, and looks around while
// the right mouse button is held. Shift moves faster.
func (c *FlyCamera) Update(deltaTime float32) {
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		mouseDelta := rl.GetMouseDelta()
		c.Look(mouseDelta.X, mouseDelta.Y)
	}

	forward, right := c.getDirections()

	var moveDir rl.Vector3
	if rl.IsKeyDown(rl.KeyW) {
		moveDir = rl.Vector3Add(moveDir, forward)
	}
	if rl.IsKeyDown(rl.KeyS) {
		moveDir = rl.Vector3Subtract(moveDir, forward)
	}
	if rl.IsKeyDown(rl.KeyA) {
		moveDir = rl.Vector3Add(moveDir, right)
	}
	if rl.IsKeyDown(rl.KeyD) {
		moveDir = rl.Vector3Subtract(moveDir, right)
	}
	if rl.IsKeyDown(rl.KeyE) {
		moveDir.Y += 1
	}
	if rl.IsKeyDown(rl.KeyQ) {
		moveDir.Y -= 1
	}

	speed := c.MoveSpeed
	if rl.IsKeyDown(rl.KeyLeftShift) {
		speed *= 3
	}
	c.Move(moveDir, speed*deltaTime)
}

// Look turns the camera by a mouse delta in pixels.
func (c *FlyCamera) Look(dx, dy float32) {
	c.Yaw += dx * c.LookSpeed
	c.Pitch -= dy * c.LookSpeed

	// Clamp pitch
	if c.Pitch > 89 {
		c.Pitch = 89
	}
	if c.Pitch < -89 {
		c.Pitch = -89
	}
}

// Move shifts the camera distance units along dir. Diagonal input is
// normalized so it isn't faster.
func (c *FlyCamera) Move(dir rl.Vector3, distance float32) {
	if rl.Vector3Length(dir) == 0 {
		return
	}
	c.Position = rl.Vector3Add(c.Position, rl.Vector3Scale(rl.Vector3Normalize(dir), distance))
}

// getDirections returns the horizontal forward and right vectors.
func (c *FlyCamera) getDirections() (forward, right rl.Vector3) {
	yawRad := float64(c.Yaw) * math.Pi / 180
	forward = rl.Vector3{
		X: float32(math.Cos(yawRad)),
		Y: 0,
		Z: float32(math.Sin(yawRad)),
	}
	right = rl.Vector3{
		X: float32(math.Sin(yawRad)),
		Y: 0,
		Z: float32(-math.Cos(yawRad)),
	}
	return
}

// Forward is the unit view direction, pitch included.
func (c *FlyCamera) Forward() rl.Vector3 {
	yawRad := float64(c.Yaw) * math.Pi / 180
	pitchRad := float64(c.Pitch) * math.Pi / 180
	return rl.Vector3{
		X: float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		Y: float32(math.Sin(pitchRad)),
		Z: float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}
}

func (c *FlyCamera) GetRaylibCamera() rl.Camera3D {
	return rl.Camera3D{
		Position:   c.Position,
		Target:     rl.Vector3Add(c.Position, c.Forward()),
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       c.Fovy,
		Projection: rl.CameraPerspective,
	}
}
