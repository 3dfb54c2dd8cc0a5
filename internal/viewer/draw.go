package viewer

import (
	"rigid3d/internal/collision"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const shapeSlices = 16

// BoundingRadius is the radius of a sphere around shape, for culling.
func BoundingRadius(s collision.Shape) float32 {
	switch s.Kind {
	case collision.Cuboid:
		return rl.Vector3Length(s.HalfExtents)
	case collision.Sphere:
		return s.Radius
	case collision.Capsule:
		return s.HalfHeight + s.Radius
	case collision.Cylinder:
		return math32.Sqrt(s.HalfHeight*s.HalfHeight + s.Radius*s.Radius)
	}
	return 0
}

// axisEnds returns the world end points of the local Y axis segment of a
// capsule or cylinder.
func axisEnds(s collision.Shape, pos rl.Vector3, rot rl.Quaternion) (rl.Vector3, rl.Vector3) {
	axis := rl.Vector3RotateByQuaternion(rl.Vector3{Y: s.HalfHeight}, rot)
	return rl.Vector3Subtract(pos, axis), rl.Vector3Add(pos, axis)
}

// axisAngle converts a unit quaternion for rl.Rotatef. Angle is in radians.
func axisAngle(q rl.Quaternion) (rl.Vector3, float32) {
	if q.W < 0 {
		q = rl.Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
	}
	s := math32.Sqrt(math32.Max(1-q.W*q.W, 0))
	if s < 1e-6 {
		return rl.Vector3{Y: 1}, 0
	}
	return rl.Vector3{X: q.X / s, Y: q.Y / s, Z: q.Z / s}, 2 * math32.Acos(collision.Clamp(q.W, -1, 1))
}

// DrawShape draws a collider shape at a world pose. Sensors are drawn as
// wireframes only.
func DrawShape(s collision.Shape, pos rl.Vector3, rot rl.Quaternion, color rl.Color, wireOnly bool) {
	switch s.Kind {
	case collision.Cuboid:
		axis, angle := axisAngle(rot)
		rl.PushMatrix()
		rl.Translatef(pos.X, pos.Y, pos.Z)
		rl.Rotatef(angle*rl.Rad2deg, axis.X, axis.Y, axis.Z)
		size := rl.Vector3Scale(s.HalfExtents, 2)
		if !wireOnly {
			rl.DrawCubeV(rl.Vector3{}, size, color)
		}
		rl.DrawCubeWiresV(rl.Vector3{}, size, rl.Fade(rl.Black, 0.4))
		rl.PopMatrix()

	case collision.Sphere:
		if wireOnly {
			rl.DrawSphereWires(pos, s.Radius, shapeSlices, shapeSlices, color)
		} else {
			rl.DrawSphere(pos, s.Radius, color)
		}

	case collision.Capsule:
		a, b := axisEnds(s, pos, rot)
		if wireOnly {
			rl.DrawCapsuleWires(a, b, s.Radius, shapeSlices, shapeSlices/2, color)
		} else {
			rl.DrawCapsule(a, b, s.Radius, shapeSlices, shapeSlices/2, color)
		}

	case collision.Cylinder:
		a, b := axisEnds(s, pos, rot)
		if wireOnly {
			rl.DrawCylinderWiresEx(a, b, s.Radius, s.Radius, shapeSlices, color)
		} else {
			rl.DrawCylinderEx(a, b, s.Radius, s.Radius, shapeSlices, color)
		}
	}
}

// DrawContact marks a contact point with its normal.
func DrawContact(c collision.Contact) {
	rl.DrawSphere(c.Position, 0.05, rl.Red)
	rl.DrawLine3D(c.Position, rl.Vector3Add(c.Position, rl.Vector3Scale(c.Normal, 0.5)), rl.Yellow)
}
