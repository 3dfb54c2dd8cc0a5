package engine

import rl "github.com/gen2brain/raylib-go/raylib"

// RaycastResult holds information about a raycast hit.
// Defined here to avoid circular imports with physics package.
type RaycastResult struct {
	GameObject *GameObject
	Point      rl.Vector3
	Normal     rl.Vector3
	Distance   float32
}

// WorldAccess lets components query and push the physics world without
// importing it. Mutations are queued and applied at the start of the next
// physics tick.
type WorldAccess interface {
	Raycast(origin, direction rl.Vector3, maxDistance float32) (RaycastResult, bool)
	ApplyForce(g *GameObject, force rl.Vector3)
	ApplyImpulse(g *GameObject, impulse rl.Vector3)
	ApplyTorque(g *GameObject, torque rl.Vector3)
	SetVelocity(g *GameObject, linear, angular rl.Vector3)
}
