package physics

import (
	"rigid3d/internal/collision"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// StaticBody is the body index used by constraints against static geometry.
const StaticBody = -1

// Body is the solver's view of one rigidbody for a single tick. Bodies live
// in a flat slice and constraints refer to them by index.
type Body struct {
	Entity          uint64
	Position        rl.Vector3
	Rotation        rl.Quaternion
	LinearVelocity  rl.Vector3
	AngularVelocity rl.Vector3 // radians per second, world space
	Mass            float32
	InvMass         float32
	InertiaLocal    mgl32.Mat3
	InvInertiaLocal mgl32.Mat3
	UseGravity      bool
	IsKinematic     bool
	LinearDamping   float32
	AngularDamping  float32

	// Accumulated from queued commands, applied during integration.
	force  rl.Vector3
	torque rl.Vector3

	// Solver scratch
	initialPosition  rl.Vector3
	initialRotation  rl.Quaternion
	inertialPosition rl.Vector3
	inertialRotation rl.Quaternion
	inContact        bool
}

// NewBody builds a dynamic body. A mass of zero or less, or kinematic set
// afterwards through SetKinematic, gives infinite mass.
func NewBody(entity uint64, position rl.Vector3, rotation rl.Quaternion, mass float32, inertia mgl32.Mat3) Body {
	b := Body{
		Entity:       entity,
		Position:     position,
		Rotation:     rotation,
		Mass:         mass,
		InertiaLocal: inertia,
		UseGravity:   true,
	}
	if mass > 0 {
		b.InvMass = 1 / mass
		b.InvInertiaLocal = invertInertia(inertia)
	}
	return b
}

// SetKinematic removes the body from constraint response.
func (b *Body) SetKinematic(kinematic bool) {
	b.IsKinematic = kinematic
	if kinematic {
		b.InvMass = 0
		b.InvInertiaLocal = mgl32.Mat3{}
	} else if b.Mass > 0 {
		b.InvMass = 1 / b.Mass
		b.InvInertiaLocal = invertInertia(b.InertiaLocal)
	}
}

// IsDynamic reports whether constraints can move the body.
func (b *Body) IsDynamic() bool {
	return b.InvMass > 0 && !b.IsKinematic
}

func (b *Body) InertiaWorld() mgl32.Mat3 {
	return collision.RotateTensor(b.InertiaLocal, b.Rotation)
}

func (b *Body) InvInertiaWorld() mgl32.Mat3 {
	return collision.RotateTensor(b.InvInertiaLocal, b.Rotation)
}

// PointVelocity is the velocity of a world point attached to the body.
func (b *Body) PointVelocity(point rl.Vector3) rl.Vector3 {
	r := rl.Vector3Subtract(point, b.Position)
	return rl.Vector3Add(b.LinearVelocity, rl.Vector3CrossProduct(b.AngularVelocity, r))
}

// ApplyImpulse changes velocity as if impulse acted at point.
func (b *Body) ApplyImpulse(impulse, point rl.Vector3) {
	if !b.IsDynamic() {
		return
	}
	b.LinearVelocity = rl.Vector3Add(b.LinearVelocity, rl.Vector3Scale(impulse, b.InvMass))
	r := rl.Vector3Subtract(point, b.Position)
	dw := collision.MulVec(b.InvInertiaWorld(), rl.Vector3CrossProduct(r, impulse))
	b.AngularVelocity = rl.Vector3Add(b.AngularVelocity, dw)
}

// WorldPoint transforms a body-local point to world space.
func (b *Body) WorldPoint(local rl.Vector3) rl.Vector3 {
	return collision.ToWorld(local, b.Position, b.Rotation)
}

// LocalPoint transforms a world point into the body frame.
func (b *Body) LocalPoint(world rl.Vector3) rl.Vector3 {
	return collision.ToLocal(world, b.Position, b.Rotation)
}

func invertInertia(m mgl32.Mat3) mgl32.Mat3 {
	if m.Det() == 0 {
		return mgl32.Mat3{}
	}
	return m.Inv()
}

// integrateRotation advances q by the rotation vector w (radians).
func integrateRotation(q rl.Quaternion, w rl.Vector3) rl.Quaternion {
	dq := rl.QuaternionMultiply(rl.Quaternion{X: w.X, Y: w.Y, Z: w.Z, W: 0}, q)
	q = rl.Quaternion{
		X: q.X + 0.5*dq.X,
		Y: q.Y + 0.5*dq.Y,
		Z: q.Z + 0.5*dq.Z,
		W: q.W + 0.5*dq.W,
	}
	return rl.QuaternionNormalize(q)
}

// rotationDelta returns the rotation vector taking from to to, for small
// rotations.
func rotationDelta(to, from rl.Quaternion) rl.Vector3 {
	dq := rl.QuaternionMultiply(to, rl.QuaternionInvert(from))
	if dq.W < 0 {
		dq = rl.Quaternion{X: -dq.X, Y: -dq.Y, Z: -dq.Z, W: -dq.W}
	}
	return rl.Vector3{X: 2 * dq.X, Y: 2 * dq.Y, Z: 2 * dq.Z}
}
