package collision

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OBB represents an Oriented Bounding Box
type OBB struct {
	Center   rl.Vector3    // World-space center
	HalfSize rl.Vector3    // Half-extents along local axes
	Axes     [3]rl.Vector3 // Local X, Y, Z axes (rotated)
}

// NewOBB places a cuboid of the given half extents in the world.
func NewOBB(center, halfSize rl.Vector3, rotation rl.Quaternion) OBB {
	return OBB{Center: center, HalfSize: halfSize, Axes: Axes(rotation)}
}

func (o OBB) half(i int) float32 {
	return component(o.HalfSize, i)
}

// project returns the projection radius of the box onto axis.
func (o OBB) project(axis rl.Vector3) float32 {
	return o.HalfSize.X*absf(rl.Vector3DotProduct(o.Axes[0], axis)) +
		o.HalfSize.Y*absf(rl.Vector3DotProduct(o.Axes[1], axis)) +
		o.HalfSize.Z*absf(rl.Vector3DotProduct(o.Axes[2], axis))
}

// IntersectsOBB tests if two OBBs intersect using the Separating Axis Theorem
func (a OBB) IntersectsOBB(b OBB) bool {
	_, ok := satQuery(a, b)
	return ok
}

// satAxis is the best separating-axis candidate found by satQuery.
type satAxis struct {
	normal      rl.Vector3 // unit, oriented from a toward b
	penetration float32
	kind        int // 0: face of a, 1: face of b, 2: edge pair
	indexA      int
	indexB      int
}

const (
	axisFaceA = iota
	axisFaceB
	axisEdge
)

// edgeBias keeps face axes when an edge axis is only marginally shallower.
const edgeBias = 1e-3

// satQuery tests all 15 axes and returns the one with least penetration.
func satQuery(a, b OBB) (satAxis, bool) {
	t := rl.Vector3Subtract(b.Center, a.Center)
	best := satAxis{penetration: math32.MaxFloat32}

	test := func(axis rl.Vector3, kind, ia, ib int) bool {
		dist := rl.Vector3DotProduct(t, axis)
		pen := a.project(axis) + b.project(axis) - absf(dist)
		if pen < 0 {
			return false
		}
		if kind == axisEdge && pen >= best.penetration-edgeBias {
			return true
		}
		if pen < best.penetration {
			if dist < 0 {
				axis = rl.Vector3Negate(axis)
			}
			best = satAxis{normal: axis, penetration: pen, kind: kind, indexA: ia, indexB: ib}
		}
		return true
	}

	for i := 0; i < 3; i++ {
		if !test(a.Axes[i], axisFaceA, i, -1) {
			return satAxis{}, false
		}
	}
	for i := 0; i < 3; i++ {
		if !test(b.Axes[i], axisFaceB, -1, i) {
			return satAxis{}, false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			axis := rl.Vector3CrossProduct(a.Axes[i], b.Axes[j])
			// Skip near-zero axes (parallel edges)
			if rl.Vector3Length(axis) < 1e-4 {
				continue
			}
			if !test(rl.Vector3Normalize(axis), axisEdge, i, j) {
				return satAxis{}, false
			}
		}
	}
	return best, true
}

// ResolveOBB returns the minimum translation vector to push 'a' out of 'b'
// Returns zero vector if no overlap
func (a OBB) ResolveOBB(b OBB) rl.Vector3 {
	axis, ok := satQuery(a, b)
	if !ok {
		return rl.Vector3Zero()
	}
	return rl.Vector3Scale(axis.normal, -axis.penetration)
}

// ClosestPoint returns the point of the box closest to p, and whether p was
// inside.
func (o OBB) ClosestPoint(p rl.Vector3) (rl.Vector3, bool) {
	local := rl.Vector3Subtract(p, o.Center)
	result := o.Center
	inside := true
	for i := 0; i < 3; i++ {
		d := rl.Vector3DotProduct(local, o.Axes[i])
		h := o.half(i)
		if d < -h || d > h {
			inside = false
		}
		result = rl.Vector3Add(result, rl.Vector3Scale(o.Axes[i], Clamp(d, -h, h)))
	}
	return result, inside
}

// IntersectsSphere tests if an OBB intersects with a sphere
func (o OBB) IntersectsSphere(center rl.Vector3, radius float32) bool {
	closest, _ := o.ClosestPoint(center)
	return rl.Vector3LengthSqr(rl.Vector3Subtract(center, closest)) <= radius*radius
}

// corner returns the box vertex in the direction of the signs.
func (o OBB) corner(sx, sy, sz float32) rl.Vector3 {
	p := o.Center
	p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[0], sx*o.HalfSize.X))
	p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[1], sy*o.HalfSize.Y))
	p = rl.Vector3Add(p, rl.Vector3Scale(o.Axes[2], sz*o.HalfSize.Z))
	return p
}
