package collision

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// AABB is an axis-aligned box. Min <= Max on every axis.
type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABBFromCenter creates an AABB from a center point and half extents.
func NewAABBFromCenter(center, halfExtents rl.Vector3) AABB {
	return AABB{
		Min: rl.Vector3Subtract(center, halfExtents),
		Max: rl.Vector3Add(center, halfExtents),
	}
}

// FromBoundingBox converts a raylib bounding box.
func FromBoundingBox(b rl.BoundingBox) AABB {
	return AABB{Min: rl.Vector3Min(b.Min, b.Max), Max: rl.Vector3Max(b.Min, b.Max)}
}

// BoundingBox converts to raylib's bounding box, e.g. for rl.DrawBoundingBox.
func (a AABB) BoundingBox() rl.BoundingBox {
	return rl.NewBoundingBox(a.Min, a.Max)
}

// Overlaps reports whether the two boxes intersect. Touching boxes overlap.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

func (a AABB) Contains(p rl.Vector3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

func (a AABB) Merge(b AABB) AABB {
	return AABB{Min: rl.Vector3Min(a.Min, b.Min), Max: rl.Vector3Max(a.Max, b.Max)}
}

// Expand grows the box by margin on every side.
func (a AABB) Expand(margin float32) AABB {
	m := rl.Vector3{X: margin, Y: margin, Z: margin}
	return AABB{Min: rl.Vector3Subtract(a.Min, m), Max: rl.Vector3Add(a.Max, m)}
}

func (a AABB) Center() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Add(a.Min, a.Max), 0.5)
}

func (a AABB) HalfExtents() rl.Vector3 {
	return rl.Vector3Scale(rl.Vector3Subtract(a.Max, a.Min), 0.5)
}

func (a AABB) SurfaceArea() float32 {
	d := rl.Vector3Subtract(a.Max, a.Min)
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// Resolve returns the minimum translation vector to push a out of b.
// Returns zero vector if no overlap.
func (a AABB) Resolve(b AABB) rl.Vector3 {
	if !a.Overlaps(b) {
		return rl.Vector3Zero()
	}

	candidates := [6]struct {
		depth float32
		push  rl.Vector3
	}{
		{b.Max.X - a.Min.X, rl.Vector3{X: 1}},
		{a.Max.X - b.Min.X, rl.Vector3{X: -1}},
		{b.Max.Y - a.Min.Y, rl.Vector3{Y: 1}},
		{a.Max.Y - b.Min.Y, rl.Vector3{Y: -1}},
		{b.Max.Z - a.Min.Z, rl.Vector3{Z: 1}},
		{a.Max.Z - b.Min.Z, rl.Vector3{Z: -1}},
	}

	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].depth < candidates[best].depth {
			best = i
		}
	}
	return rl.Vector3Scale(candidates[best].push, candidates[best].depth)
}

// TransformAABB returns the world bound of a local box moved by position and
// rotation. All 8 corners are transformed.
func TransformAABB(local AABB, position rl.Vector3, rotation rl.Quaternion) AABB {
	out := AABB{
		Min: rl.Vector3{X: math32.MaxFloat32, Y: math32.MaxFloat32, Z: math32.MaxFloat32},
		Max: rl.Vector3{X: -math32.MaxFloat32, Y: -math32.MaxFloat32, Z: -math32.MaxFloat32},
	}
	for i := 0; i < 8; i++ {
		corner := local.Min
		if i&1 != 0 {
			corner.X = local.Max.X
		}
		if i&2 != 0 {
			corner.Y = local.Max.Y
		}
		if i&4 != 0 {
			corner.Z = local.Max.Z
		}
		p := ToWorld(corner, position, rotation)
		out.Min = rl.Vector3Min(out.Min, p)
		out.Max = rl.Vector3Max(out.Max, p)
	}
	return out
}
