package collision

import rl "github.com/gen2brain/raylib-go/raylib"

// Contact is the result of a narrow-phase test. Normal points from A toward
// B and Penetration is the overlap depth along it.
type Contact struct {
	EntityA     uint64
	EntityB     uint64
	Position    rl.Vector3
	Normal      rl.Vector3
	Penetration float32
	Tangent     rl.Vector3
	Bitangent   rl.Vector3
}

// NewContact fills in the friction basis from the normal.
func NewContact(entityA, entityB uint64, position, normal rl.Vector3, penetration float32) Contact {
	t, b := TangentBasis(normal)
	return Contact{
		EntityA:     entityA,
		EntityB:     entityB,
		Position:    position,
		Normal:      normal,
		Penetration: penetration,
		Tangent:     t,
		Bitangent:   b,
	}
}

// TangentBasis derives the friction directions from a unit normal. World Y is
// the reference unless the normal is within ~25 degrees of it, then world X.
// Projection order is fixed so the basis is stable from tick to tick.
func TangentBasis(n rl.Vector3) (tangent, bitangent rl.Vector3) {
	up := rl.Vector3{Y: 1}
	if absf(n.Y) >= 0.9 {
		up = rl.Vector3{X: 1}
	}
	tangent = rl.Vector3Normalize(rl.Vector3Subtract(up, rl.Vector3Scale(n, rl.Vector3DotProduct(n, up))))
	bitangent = rl.Vector3CrossProduct(n, tangent)
	return tangent, bitangent
}

// Flipped swaps the roles of A and B.
func (c Contact) Flipped() Contact {
	return NewContact(c.EntityB, c.EntityA, c.Position, rl.Vector3Negate(c.Normal), c.Penetration)
}

// WitnessA is the point of A reaching deepest into B.
func (c Contact) WitnessA() rl.Vector3 {
	return rl.Vector3Add(c.Position, rl.Vector3Scale(c.Normal, c.Penetration/2))
}

// WitnessB is the point of B reaching deepest into A.
func (c Contact) WitnessB() rl.Vector3 {
	return rl.Vector3Subtract(c.Position, rl.Vector3Scale(c.Normal, c.Penetration/2))
}
