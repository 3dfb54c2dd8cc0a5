package collision

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// RayHit describes where a ray first touches a surface.
type RayHit struct {
	Point    rl.Vector3
	Normal   rl.Vector3
	Distance float32
}

// RayAABB intersects a ray with a box using the slab method. direction must
// be normalized. A ray starting inside the box reports the exit point.
func RayAABB(origin, direction rl.Vector3, box AABB, maxDistance float32) (RayHit, bool) {
	tmin := float32(-math32.MaxFloat32)
	tmax := float32(math32.MaxFloat32)
	var nearAxis int
	var nearSign float32

	for axis := 0; axis < 3; axis++ {
		o := component(origin, axis)
		d := component(direction, axis)
		lo := component(box.Min, axis)
		hi := component(box.Max, axis)
		if d == 0 {
			if o < lo || o > hi {
				return RayHit{}, false
			}
			continue
		}
		t1 := (lo - o) / d
		t2 := (hi - o) / d
		sign := float32(-1)
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1
		}
		if t1 > tmin {
			tmin = t1
			nearAxis = axis
			nearSign = sign
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return RayHit{}, false
		}
	}

	if tmax < 0 || tmin > maxDistance {
		return RayHit{}, false
	}

	t := tmin
	if t < 0 {
		t = tmax
	}
	if t > maxDistance {
		return RayHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	var normal rl.Vector3
	switch nearAxis {
	case 0:
		normal.X = nearSign
	case 1:
		normal.Y = nearSign
	default:
		normal.Z = nearSign
	}
	return RayHit{Point: point, Normal: normal, Distance: t}, true
}

// RaySphere intersects a ray with a sphere. direction must be normalized.
func RaySphere(origin, direction, center rl.Vector3, radius, maxDistance float32) (RayHit, bool) {
	oc := rl.Vector3Subtract(origin, center)
	b := rl.Vector3DotProduct(oc, direction)
	c := rl.Vector3DotProduct(oc, oc) - radius*radius

	discriminant := b*b - c
	if discriminant < 0 {
		return RayHit{}, false
	}
	sq := math32.Sqrt(discriminant)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 || t > maxDistance {
		return RayHit{}, false
	}

	point := rl.Vector3Add(origin, rl.Vector3Scale(direction, t))
	normal := safeNormalize(rl.Vector3Subtract(point, center))
	return RayHit{Point: point, Normal: normal, Distance: t}, true
}

// RayOBB intersects a ray with an oriented box.
func RayOBB(origin, direction rl.Vector3, box OBB, rotation rl.Quaternion, maxDistance float32) (RayHit, bool) {
	localOrigin := ToLocal(origin, box.Center, rotation)
	localDir := rl.Vector3RotateByQuaternion(direction, rl.QuaternionInvert(rotation))
	hit, ok := RayAABB(localOrigin, localDir, AABB{Min: rl.Vector3Negate(box.HalfSize), Max: box.HalfSize}, maxDistance)
	if !ok {
		return RayHit{}, false
	}
	hit.Point = ToWorld(hit.Point, box.Center, rotation)
	hit.Normal = rl.Vector3RotateByQuaternion(hit.Normal, rotation)
	return hit, true
}

// RayShape casts against any shape placed at position/rotation.
func RayShape(origin, direction rl.Vector3, s Shape, position rl.Vector3, rotation rl.Quaternion, maxDistance float32) (RayHit, bool) {
	direction = safeNormalize(direction)
	switch s.Kind {
	case Cuboid:
		return RayOBB(origin, direction, NewOBB(position, s.HalfExtents, rotation), rotation, maxDistance)
	case Sphere:
		return RaySphere(origin, direction, position, s.Radius, maxDistance)
	}

	o := ToLocal(origin, position, rotation)
	d := rl.Vector3RotateByQuaternion(direction, rl.QuaternionInvert(rotation))
	best := RayHit{Distance: math32.MaxFloat32}
	found := false
	take := func(h RayHit, ok bool) {
		if ok && h.Distance < best.Distance {
			best = h
			found = true
		}
	}

	take(rayTube(o, d, s.Radius, s.HalfHeight, maxDistance))
	if s.Kind == Capsule {
		take(RaySphere(o, d, rl.Vector3{Y: s.HalfHeight}, s.Radius, maxDistance))
		take(RaySphere(o, d, rl.Vector3{Y: -s.HalfHeight}, s.Radius, maxDistance))
	} else {
		take(rayCap(o, d, s.Radius, s.HalfHeight, maxDistance))
		take(rayCap(o, d, s.Radius, -s.HalfHeight, maxDistance))
	}
	if !found {
		return RayHit{}, false
	}
	best.Point = ToWorld(best.Point, position, rotation)
	best.Normal = rl.Vector3RotateByQuaternion(best.Normal, rotation)
	return best, true
}

// rayTube hits the side of a Y-aligned cylinder clipped to |y| <= h.
func rayTube(o, d rl.Vector3, r, h, maxDistance float32) (RayHit, bool) {
	a := d.X*d.X + d.Z*d.Z
	if a < 1e-12 {
		return RayHit{}, false
	}
	b := o.X*d.X + o.Z*d.Z
	c := o.X*o.X + o.Z*o.Z - r*r
	disc := b*b - a*c
	if disc < 0 {
		return RayHit{}, false
	}
	t := (-b - math32.Sqrt(disc)) / a
	if t < 0 || t > maxDistance {
		return RayHit{}, false
	}
	p := rl.Vector3Add(o, rl.Vector3Scale(d, t))
	if absf(p.Y) > h {
		return RayHit{}, false
	}
	return RayHit{Point: p, Normal: safeNormalize(rl.Vector3{X: p.X, Z: p.Z}), Distance: t}, true
}

// rayCap hits the flat disc at height y.
func rayCap(o, d rl.Vector3, r, y, maxDistance float32) (RayHit, bool) {
	if absf(d.Y) < 1e-12 {
		return RayHit{}, false
	}
	t := (y - o.Y) / d.Y
	if t < 0 || t > maxDistance {
		return RayHit{}, false
	}
	p := rl.Vector3Add(o, rl.Vector3Scale(d, t))
	if p.X*p.X+p.Z*p.Z > r*r {
		return RayHit{}, false
	}
	return RayHit{Point: p, Normal: rl.Vector3{Y: signf(y)}, Distance: t}, true
}
