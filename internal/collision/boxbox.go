package collision

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

const maxManifoldPoints = 4

// boxBox builds a contact manifold between two cuboids. Face contacts clip
// the incident face against the reference face's side planes; edge contacts
// take the closest points between the two support edges.
func boxBox(a, b Instance) []Contact {
	boxA := NewOBB(a.Position, a.Shape.HalfExtents, a.Rotation)
	boxB := NewOBB(b.Position, b.Shape.HalfExtents, b.Rotation)
	axis, ok := satQuery(boxA, boxB)
	if !ok {
		return nil
	}
	n := axis.normal

	if axis.kind == axisEdge {
		ea0, ea1 := supportEdge(boxA, axis.indexA, n)
		eb0, eb1 := supportEdge(boxB, axis.indexB, rl.Vector3Negate(n))
		pa, pb := closestBetweenSegments(ea0, ea1, eb0, eb1)
		pos := rl.Vector3Scale(rl.Vector3Add(pa, pb), 0.5)
		return []Contact{NewContact(a.Entity, b.Entity, pos, n, axis.penetration)}
	}

	ref, inc := boxA, boxB
	refAxis := axis.indexA
	refNormal := n
	if axis.kind == axisFaceB {
		ref, inc = boxB, boxA
		refAxis = axis.indexB
		refNormal = rl.Vector3Negate(n)
	}

	polygon := incidentFace(inc, refNormal)
	for k := 0; k < 3; k++ {
		if k == refAxis {
			continue
		}
		side := ref.Axes[k]
		offset := rl.Vector3DotProduct(ref.Center, side) + ref.half(k)
		polygon = clipPolygon(polygon, side, offset)
		negOffset := -rl.Vector3DotProduct(ref.Center, side) + ref.half(k)
		polygon = clipPolygon(polygon, rl.Vector3Negate(side), negOffset)
	}

	faceOffset := rl.Vector3DotProduct(ref.Center, refNormal) + ref.half(refAxis)
	contacts := make([]Contact, 0, len(polygon))
	for _, p := range polygon {
		depth := faceOffset - rl.Vector3DotProduct(p, refNormal)
		if depth < 0 {
			continue
		}
		// p lies on the incident box; shift to the midpoint of the overlap.
		pos := rl.Vector3Add(p, rl.Vector3Scale(refNormal, depth/2))
		contacts = append(contacts, NewContact(a.Entity, b.Entity, pos, n, depth))
	}

	if len(contacts) == 0 {
		sa := boxA.support(n)
		sb := boxB.support(rl.Vector3Negate(n))
		pos := rl.Vector3Scale(rl.Vector3Add(sa, sb), 0.5)
		return []Contact{NewContact(a.Entity, b.Entity, pos, n, axis.penetration)}
	}
	return reduceManifold(contacts)
}

// support returns the vertex of the box farthest along d.
func (o OBB) support(d rl.Vector3) rl.Vector3 {
	return o.corner(
		signf(rl.Vector3DotProduct(d, o.Axes[0])),
		signf(rl.Vector3DotProduct(d, o.Axes[1])),
		signf(rl.Vector3DotProduct(d, o.Axes[2])),
	)
}

// supportEdge returns the edge parallel to axis i that reaches farthest
// along d.
func supportEdge(o OBB, i int, d rl.Vector3) (rl.Vector3, rl.Vector3) {
	var signs [3]float32
	for k := 0; k < 3; k++ {
		signs[k] = signf(rl.Vector3DotProduct(d, o.Axes[k]))
	}
	signs[i] = -1
	p0 := o.corner(signs[0], signs[1], signs[2])
	signs[i] = 1
	p1 := o.corner(signs[0], signs[1], signs[2])
	return p0, p1
}

// incidentFace returns the four corners of the face of o most opposed to
// normal, in winding order.
func incidentFace(o OBB, normal rl.Vector3) []rl.Vector3 {
	best := 0
	var bestDot float32
	for k := 0; k < 3; k++ {
		d := rl.Vector3DotProduct(o.Axes[k], normal)
		if absf(d) > absf(bestDot) {
			best, bestDot = k, d
		}
	}
	s := float32(-1)
	if bestDot < 0 {
		s = 1
	}
	u := (best + 1) % 3
	v := (best + 2) % 3

	center := rl.Vector3Add(o.Center, rl.Vector3Scale(o.Axes[best], s*o.half(best)))
	du := rl.Vector3Scale(o.Axes[u], o.half(u))
	dv := rl.Vector3Scale(o.Axes[v], o.half(v))
	return []rl.Vector3{
		rl.Vector3Add(center, rl.Vector3Add(du, dv)),
		rl.Vector3Add(center, rl.Vector3Subtract(du, dv)),
		rl.Vector3Subtract(center, rl.Vector3Add(du, dv)),
		rl.Vector3Subtract(center, rl.Vector3Subtract(du, dv)),
	}
}

// clipPolygon keeps the part of polygon with p·normal <= offset.
func clipPolygon(polygon []rl.Vector3, normal rl.Vector3, offset float32) []rl.Vector3 {
	if len(polygon) == 0 {
		return polygon
	}
	out := make([]rl.Vector3, 0, len(polygon)+1)
	prev := polygon[len(polygon)-1]
	prevDist := rl.Vector3DotProduct(prev, normal) - offset
	for _, cur := range polygon {
		dist := rl.Vector3DotProduct(cur, normal) - offset
		if (prevDist <= 0) != (dist <= 0) {
			t := prevDist / (prevDist - dist)
			out = append(out, rl.Vector3Lerp(prev, cur, t))
		}
		if dist <= 0 {
			out = append(out, cur)
		}
		prev, prevDist = cur, dist
	}
	return out
}

// reduceManifold keeps the deepest point and then the points that spread
// the patch out the most.
func reduceManifold(contacts []Contact) []Contact {
	if len(contacts) <= maxManifoldPoints {
		return contacts
	}
	used := make([]bool, len(contacts))
	pick := func(score func(Contact) float32) int {
		best := -1
		var bestScore float32
		for i, c := range contacts {
			if used[i] {
				continue
			}
			if s := score(c); best < 0 || s > bestScore {
				best, bestScore = i, s
			}
		}
		used[best] = true
		return best
	}

	first := pick(func(c Contact) float32 { return c.Penetration })
	p0 := contacts[first].Position
	second := pick(func(c Contact) float32 {
		return rl.Vector3DistanceSqr(c.Position, p0)
	})
	p1 := contacts[second].Position
	n := contacts[first].Normal
	area := func(c Contact) float32 {
		e0 := rl.Vector3Subtract(p0, c.Position)
		e1 := rl.Vector3Subtract(p1, c.Position)
		return rl.Vector3DotProduct(rl.Vector3CrossProduct(e0, e1), n)
	}
	third := pick(func(c Contact) float32 { return absf(area(c)) })
	side := signf(area(contacts[third]))
	fourth := pick(func(c Contact) float32 { return -side * area(c) })

	return []Contact{contacts[first], contacts[second], contacts[third], contacts[fourth]}
}
