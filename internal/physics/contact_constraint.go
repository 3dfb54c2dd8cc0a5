package physics

import (
	"rigid3d/internal/collision"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// contactKey identifies a manifold point across ticks for warm starting.
type contactKey struct {
	A, B  uint64
	Point int
}

// ContactConstraint keeps two witness points from moving further into each
// other along the normal and from sliding along the tangent plane while
// friction allows. Rows are X = tangent, Y = bitangent, Z = normal.
type ContactConstraint struct {
	BodyA, BodyB int // StaticBody for static geometry
	Contact      collision.Contact
	Friction     float32
	Restitution  float32

	localA, localB rl.Vector3 // witness anchors in body space, or world space when static
	basis          [3]rl.Vector3
	separation     float32 // normal separation of the anchors when the tick started
	approachSpeed  float32 // normal relative velocity before the solve, negative when closing
	data           ConstraintData
	key            contactKey
	points         int // manifold points sharing the load of this pair
}

// CombineFriction is the geometric mean of the two collider frictions.
func CombineFriction(a, b float32) float32 {
	return math32.Sqrt(a * b)
}

// CombineRestitution takes the bouncier of the two colliders.
func CombineRestitution(a, b float32) float32 {
	return math32.Max(a, b)
}

// NewContactConstraint anchors the contact's witness points on both bodies.
// Static geometry keeps its anchor in world space.
func NewContactConstraint(bodies []Body, a, b int, c collision.Contact, friction, restitution, kStart float32) *ContactConstraint {
	cc := &ContactConstraint{
		BodyA:       a,
		BodyB:       b,
		Contact:     c,
		Friction:    friction,
		Restitution: restitution,
		basis:       [3]rl.Vector3{c.Tangent, c.Bitangent, c.Normal},
		data:        NewConstraintData(kStart),
	}
	cc.data.Max.Z = 0
	cc.localA = anchorLocal(bodies, a, c.WitnessA())
	cc.localB = anchorLocal(bodies, b, c.WitnessB())
	cc.separation = rl.Vector3DotProduct(c.Normal, cc.displacement(bodies))

	rel := rl.Vector3Subtract(pointVelocity(bodies, b, c.WitnessB()), pointVelocity(bodies, a, c.WitnessA()))
	cc.approachSpeed = rl.Vector3DotProduct(rel, c.Normal)
	cc.updateFrictionBounds()
	return cc
}

func anchorLocal(bodies []Body, idx int, world rl.Vector3) rl.Vector3 {
	if idx == StaticBody {
		return world
	}
	return bodies[idx].LocalPoint(world)
}

func anchorWorld(bodies []Body, idx int, local rl.Vector3) rl.Vector3 {
	if idx == StaticBody {
		return local
	}
	return bodies[idx].WorldPoint(local)
}

func pointVelocity(bodies []Body, idx int, p rl.Vector3) rl.Vector3 {
	if idx == StaticBody {
		return rl.Vector3{}
	}
	return bodies[idx].PointVelocity(p)
}

// displacement is pB - pA at the current body state.
func (c *ContactConstraint) displacement(bodies []Body) rl.Vector3 {
	return rl.Vector3Subtract(anchorWorld(bodies, c.BodyB, c.localB), anchorWorld(bodies, c.BodyA, c.localA))
}

// Penetration is the current overlap of the witness points along the normal.
func (c *ContactConstraint) Penetration(bodies []Body) float32 {
	return -rl.Vector3DotProduct(c.Contact.Normal, c.displacement(bodies))
}

func (c *ContactConstraint) updateFrictionBounds() {
	bound := c.Friction * math32.Abs(c.data.Lambda.Z)
	c.data.Min.X, c.data.Max.X = -bound, bound
	c.data.Min.Y, c.data.Max.Y = -bound, bound
}

func (c *ContactConstraint) Bodies() (int, int) {
	return c.BodyA, c.BodyB
}

func (c *ContactConstraint) AffectsBody(idx int) bool {
	return idx != StaticBody && (idx == c.BodyA || idx == c.BodyB)
}

// Evaluate measures tangential drift and further approach since the tick
// started. Existing penetration is left to position correction.
func (c *ContactConstraint) Evaluate(bodies []Body) rl.Vector3 {
	d := c.displacement(bodies)
	return rl.Vector3{
		X: rl.Vector3DotProduct(c.basis[0], d),
		Y: rl.Vector3DotProduct(c.basis[1], d),
		Z: rl.Vector3DotProduct(c.basis[2], d) - c.separation,
	}
}

func (c *ContactConstraint) ForceAndHessian(bodies []Body, idx int) (rl.Vector3, rl.Vector3, Hessian) {
	c.updateFrictionBounds()
	v := c.Evaluate(bodies)
	if idx == c.BodyB {
		r := rl.Vector3Subtract(anchorWorld(bodies, c.BodyB, c.localB), bodies[idx].Position)
		return anchorRows(&c.data, v, c.basis, r, 1)
	}
	r := rl.Vector3Subtract(anchorWorld(bodies, c.BodyA, c.localA), bodies[idx].Position)
	return anchorRows(&c.data, v, c.basis, r, -1)
}

func (c *ContactConstraint) UpdateDual(bodies []Body, beta float32) {
	v := c.Evaluate(bodies)
	c.data.updateRow(2, v.Z, beta)
	c.updateFrictionBounds()
	c.data.updateRow(0, v.X, beta)
	c.data.updateRow(1, v.Y, beta)
}

func (c *ContactConstraint) Data() *ConstraintData {
	return &c.data
}

// warmState is the dual state handed to the next tick. The part of the
// normal multiplier that stopped the bodies closing in at approachSpeed is
// removed, leaving only the load a resting contact keeps carrying, so an
// impact is not replayed against bodies that are already at rest. Friction
// is clamped to the cone of what remains.
func (c *ContactConstraint) warmState(bodies []Body, dt float32) ConstraintData {
	d := c.data
	closing := math32.Max(-c.approachSpeed, 0)
	if invMass := inverseMass(bodies, c.BodyA) + inverseMass(bodies, c.BodyB); invMass > 0 && dt > 0 {
		impact := closing / (invMass * dt)
		if c.points > 1 {
			impact /= float32(c.points)
		}
		d.Lambda.Z = math32.Min(d.Lambda.Z+impact, 0)
	}
	bound := c.Friction * math32.Abs(d.Lambda.Z)
	d.Lambda.X = collision.Clamp(d.Lambda.X, -bound, bound)
	d.Lambda.Y = collision.Clamp(d.Lambda.Y, -bound, bound)
	return d
}

// applyRestitution bounces the bodies apart when they were closing faster
// than threshold before the solve.
func (c *ContactConstraint) applyRestitution(bodies []Body, threshold float32) {
	if c.Restitution <= 0 || -c.approachSpeed < threshold {
		return
	}
	n := c.Contact.Normal
	pA := anchorWorld(bodies, c.BodyA, c.localA)
	pB := anchorWorld(bodies, c.BodyB, c.localB)
	rel := rl.Vector3Subtract(pointVelocity(bodies, c.BodyB, pB), pointVelocity(bodies, c.BodyA, pA))
	target := -c.Restitution * c.approachSpeed
	dv := target - rl.Vector3DotProduct(rel, n)
	if dv <= 0 {
		return
	}

	var k float32
	if c.BodyA != StaticBody {
		k += effectiveInvMass(&bodies[c.BodyA], pA, n)
	}
	if c.BodyB != StaticBody {
		k += effectiveInvMass(&bodies[c.BodyB], pB, n)
	}
	if k <= 0 {
		return
	}
	impulse := rl.Vector3Scale(n, dv/k)
	if c.BodyA != StaticBody {
		bodies[c.BodyA].ApplyImpulse(rl.Vector3Negate(impulse), pA)
	}
	if c.BodyB != StaticBody {
		bodies[c.BodyB].ApplyImpulse(impulse, pB)
	}
}

// effectiveInvMass is the inverse mass seen by an impulse along n at p.
func effectiveInvMass(b *Body, p, n rl.Vector3) float32 {
	if !b.IsDynamic() {
		return 0
	}
	rn := rl.Vector3CrossProduct(rl.Vector3Subtract(p, b.Position), n)
	return b.InvMass + rl.Vector3DotProduct(rn, collision.MulVec(b.InvInertiaWorld(), rn))
}
