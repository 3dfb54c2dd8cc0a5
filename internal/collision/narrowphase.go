package collision

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Instance is a shape placed in the world on behalf of an entity.
type Instance struct {
	Entity   uint64
	Shape    Shape
	Position rl.Vector3
	Rotation rl.Quaternion
}

// Collide returns the single best contact between a and b, or false when
// they do not overlap or the pair is not supported. Multi-point results are
// reduced to the centroid at the deepest penetration.
func Collide(a, b Instance) (Contact, bool) {
	contacts := CollideManifold(a, b)
	switch len(contacts) {
	case 0:
		return Contact{}, false
	case 1:
		return contacts[0], true
	}
	var sum rl.Vector3
	var depth float32
	for _, c := range contacts {
		sum = rl.Vector3Add(sum, c.Position)
		if c.Penetration > depth {
			depth = c.Penetration
		}
	}
	centroid := rl.Vector3Scale(sum, 1/float32(len(contacts)))
	return NewContact(a.Entity, b.Entity, centroid, contacts[0].Normal, depth), true
}

// CollideManifold returns up to four contacts sharing one normal. Box-box
// face contacts and capsules lying on boxes produce more than one point.
func CollideManifold(a, b Instance) []Contact {
	if b.Shape.Kind < a.Shape.Kind {
		contacts := CollideManifold(b, a)
		for i := range contacts {
			contacts[i] = contacts[i].Flipped()
		}
		return contacts
	}

	switch {
	case a.Shape.Kind == Cylinder || b.Shape.Kind == Cylinder:
		return single(convexConvex(a, b))
	case a.Shape.Kind == Cuboid && b.Shape.Kind == Cuboid:
		return boxBox(a, b)
	case a.Shape.Kind == Cuboid && b.Shape.Kind == Sphere:
		return single(boxSphere(a, b.Entity, b.Position, b.Shape.Radius))
	case a.Shape.Kind == Cuboid && b.Shape.Kind == Capsule:
		return boxCapsule(a, b)
	case a.Shape.Kind == Sphere && b.Shape.Kind == Sphere:
		return single(sphereSphere(a.Entity, a.Position, a.Shape.Radius, b.Entity, b.Position, b.Shape.Radius))
	case a.Shape.Kind == Sphere && b.Shape.Kind == Capsule:
		p0, p1 := segment(b)
		c := closestOnSegment(a.Position, p0, p1)
		return single(sphereSphere(a.Entity, a.Position, a.Shape.Radius, b.Entity, c, b.Shape.Radius))
	case a.Shape.Kind == Capsule && b.Shape.Kind == Capsule:
		a0, a1 := segment(a)
		b0, b1 := segment(b)
		ca, cb := closestBetweenSegments(a0, a1, b0, b1)
		return single(sphereSphere(a.Entity, ca, a.Shape.Radius, b.Entity, cb, b.Shape.Radius))
	}
	return nil
}

func single(c Contact, ok bool) []Contact {
	if !ok {
		return nil
	}
	return []Contact{c}
}

func sphereSphere(ea uint64, pa rl.Vector3, ra float32, eb uint64, pb rl.Vector3, rb float32) (Contact, bool) {
	d := rl.Vector3Subtract(pb, pa)
	dist := rl.Vector3Length(d)
	sum := ra + rb
	if dist >= sum {
		return Contact{}, false
	}
	normal := rl.Vector3{Y: 1}
	if dist > 1e-6 {
		normal = rl.Vector3Scale(d, 1/dist)
	}
	pen := sum - dist
	pos := rl.Vector3Add(pa, rl.Vector3Scale(normal, ra-pen/2))
	return NewContact(ea, eb, pos, normal, pen), true
}

// boxSphere tests box a against a sphere; the normal points box to sphere.
func boxSphere(a Instance, sphere uint64, center rl.Vector3, radius float32) (Contact, bool) {
	box := NewOBB(a.Position, a.Shape.HalfExtents, a.Rotation)
	closest, inside := box.ClosestPoint(center)

	var normal, surface rl.Vector3
	var pen float32
	if !inside {
		delta := rl.Vector3Subtract(center, closest)
		dist := rl.Vector3Length(delta)
		if dist >= radius {
			return Contact{}, false
		}
		normal = rl.Vector3Scale(delta, 1/dist)
		surface = closest
		pen = radius - dist
	} else {
		// Deep case: leave through the nearest face.
		local := rl.Vector3Subtract(center, box.Center)
		best := -1
		var bestGap, bestSign float32
		for i := 0; i < 3; i++ {
			d := rl.Vector3DotProduct(local, box.Axes[i])
			gap := box.half(i) - absf(d)
			if best < 0 || gap < bestGap {
				best, bestGap = i, gap
				bestSign = 1
				if d < 0 {
					bestSign = -1
				}
			}
		}
		normal = rl.Vector3Scale(box.Axes[best], bestSign)
		surface = rl.Vector3Add(center, rl.Vector3Scale(normal, bestGap))
		pen = radius + bestGap
	}

	deepest := rl.Vector3Subtract(center, rl.Vector3Scale(normal, radius))
	pos := rl.Vector3Scale(rl.Vector3Add(surface, deepest), 0.5)
	return NewContact(a.Entity, sphere, pos, normal, pen), true
}

func segment(c Instance) (rl.Vector3, rl.Vector3) {
	axis := rl.Vector3RotateByQuaternion(rl.Vector3{Y: c.Shape.HalfHeight}, c.Rotation)
	return rl.Vector3Subtract(c.Position, axis), rl.Vector3Add(c.Position, axis)
}

func closestOnSegment(p, a, b rl.Vector3) rl.Vector3 {
	ab := rl.Vector3Subtract(b, a)
	l2 := rl.Vector3LengthSqr(ab)
	if l2 < 1e-12 {
		return a
	}
	t := Clamp(rl.Vector3DotProduct(rl.Vector3Subtract(p, a), ab)/l2, 0, 1)
	return rl.Vector3Add(a, rl.Vector3Scale(ab, t))
}

// closestBetweenSegments returns the closest points on p1q1 and p2q2.
func closestBetweenSegments(p1, q1, p2, q2 rl.Vector3) (rl.Vector3, rl.Vector3) {
	d1 := rl.Vector3Subtract(q1, p1)
	d2 := rl.Vector3Subtract(q2, p2)
	r := rl.Vector3Subtract(p1, p2)
	a := rl.Vector3DotProduct(d1, d1)
	e := rl.Vector3DotProduct(d2, d2)
	f := rl.Vector3DotProduct(d2, r)

	var s, t float32
	switch {
	case a <= 1e-12 && e <= 1e-12:
		return p1, p2
	case a <= 1e-12:
		t = Clamp(f/e, 0, 1)
	default:
		c := rl.Vector3DotProduct(d1, r)
		if e <= 1e-12 {
			s = Clamp(-c/a, 0, 1)
		} else {
			b := rl.Vector3DotProduct(d1, d2)
			denom := a*e - b*b
			if denom > 1e-12 {
				s = Clamp((b*f-c*e)/denom, 0, 1)
			}
			t = (b*s + f) / e
			if t < 0 {
				t = 0
				s = Clamp(-c/a, 0, 1)
			} else if t > 1 {
				t = 1
				s = Clamp((b-c)/a, 0, 1)
			}
		}
	}
	return rl.Vector3Add(p1, rl.Vector3Scale(d1, s)), rl.Vector3Add(p2, rl.Vector3Scale(d2, t))
}

// boxCapsule treats the capsule as spheres on its segment. Both end caps
// report when they touch so a lying capsule gets two supports.
func boxCapsule(a, b Instance) []Contact {
	p0, p1 := segment(b)
	box := NewOBB(a.Position, a.Shape.HalfExtents, a.Rotation)

	var ends []Contact
	for _, p := range [2]rl.Vector3{p0, p1} {
		if c, ok := boxSphere(a, b.Entity, p, b.Shape.Radius); ok {
			ends = append(ends, c)
		}
	}
	if len(ends) == 2 && rl.Vector3DotProduct(ends[0].Normal, ends[1].Normal) > 0.999 {
		n := ends[0].Normal
		ends[1] = NewContact(a.Entity, b.Entity, ends[1].Position, n, ends[1].Penetration)
		return ends
	}

	// Alternate between the box and the segment to find the closest pair.
	p := rl.Vector3Scale(rl.Vector3Add(p0, p1), 0.5)
	for i := 0; i < 4; i++ {
		q, _ := box.ClosestPoint(p)
		p = closestOnSegment(q, p0, p1)
	}
	return single(boxSphere(a, b.Entity, p, b.Shape.Radius))
}

// witnessRank orders shapes by how well their support point marks the real
// contact patch.
func witnessRank(k ShapeKind) int {
	switch k {
	case Sphere, Capsule:
		return 2
	case Cylinder:
		return 1
	}
	return 0
}

// convexConvex is the general path: GJK for overlap, EPA for depth.
func convexConvex(a, b Instance) (Contact, bool) {
	support := minkowski(a, b)
	var s simplex
	if !gjk(support, rl.Vector3Subtract(b.Position, a.Position), &s) {
		return Contact{}, false
	}
	normal, depth, ok := epa(support, &s)
	if !ok || depth <= 0 {
		return Contact{}, false
	}

	var pos rl.Vector3
	if witnessRank(a.Shape.Kind) >= witnessRank(b.Shape.Kind) {
		wa := a.Shape.SupportWorld(normal, a.Position, a.Rotation)
		pos = rl.Vector3Subtract(wa, rl.Vector3Scale(normal, depth/2))
	} else {
		wb := b.Shape.SupportWorld(rl.Vector3Negate(normal), b.Position, b.Rotation)
		pos = rl.Vector3Add(wb, rl.Vector3Scale(normal, depth/2))
	}
	return NewContact(a.Entity, b.Entity, pos, normal, depth), true
}
