package components

import (
	"rigid3d/internal/engine"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("KinematicDriver", func() engine.Serializable {
		return NewKinematicDriver(rl.Vector3{Y: 1}, 0, 0, 0)
	})
}

// KinematicDriver moves a kinematic Rigidbody around a horizontal circle and
// spins it about an axis. It only writes velocities; the physics tick moves
// the body.
type KinematicDriver struct {
	engine.BaseComponent
	RotationAxis   rl.Vector3
	RotationSpeed  float32 // degrees per second
	MovementRadius float32
	MovementSpeed  float32 // radians per second around the circle
	Phase          float32
	time           float32
}

func NewKinematicDriver(rotAxis rl.Vector3, rotSpeed, moveRadius, moveSpeed float32) *KinematicDriver {
	return &KinematicDriver{
		RotationAxis:   rotAxis,
		RotationSpeed:  rotSpeed,
		MovementRadius: moveRadius,
		MovementSpeed:  moveSpeed,
	}
}

func (k *KinematicDriver) Update(deltaTime float32) {
	g := k.GetGameObject()
	if g == nil {
		return
	}
	rb := engine.GetComponent[*Rigidbody](g)
	if rb == nil || !rb.IsKinematic {
		return
	}

	k.time += deltaTime
	t := k.time*k.MovementSpeed + k.Phase

	// Derivative of (cos t, 0, sin t) * radius
	speed := k.MovementRadius * k.MovementSpeed
	rb.Velocity = rl.Vector3{
		X: -math32.Sin(t) * speed,
		Z: math32.Cos(t) * speed,
	}

	axis := k.RotationAxis
	if rl.Vector3Length(axis) == 0 {
		axis = rl.Vector3{Y: 1}
	}
	rb.AngularVelocity = rl.Vector3Scale(rl.Vector3Normalize(axis), k.RotationSpeed*rl.Deg2rad)
}

// TypeName implements engine.Serializable
func (k *KinematicDriver) TypeName() string {
	return "KinematicDriver"
}

// Serialize implements engine.Serializable
func (k *KinematicDriver) Serialize() map[string]any {
	return map[string]any{
		"type":           "KinematicDriver",
		"rotationAxis":   vec3Data(k.RotationAxis),
		"rotationSpeed":  k.RotationSpeed,
		"movementRadius": k.MovementRadius,
		"movementSpeed":  k.MovementSpeed,
		"phase":          k.Phase,
	}
}

// Deserialize implements engine.Serializable
func (k *KinematicDriver) Deserialize(data map[string]any) {
	if v, ok := dataVec3(data["rotationAxis"]); ok {
		k.RotationAxis = v
	}
	if f, ok := dataFloat(data, "rotationSpeed"); ok {
		k.RotationSpeed = f
	}
	if f, ok := dataFloat(data, "movementRadius"); ok {
		k.MovementRadius = f
	}
	if f, ok := dataFloat(data, "movementSpeed"); ok {
		k.MovementSpeed = f
	}
	if f, ok := dataFloat(data, "phase"); ok {
		k.Phase = f
	}
}
