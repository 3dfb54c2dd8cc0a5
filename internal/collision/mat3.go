package collision

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Clamp restricts v to [lo, hi].
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Vec converts a raylib vector to mathgl.
func Vec(v rl.Vector3) mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// FromVec converts a mathgl vector to raylib.
func FromVec(v mgl32.Vec3) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// MulVec multiplies a 3x3 matrix with a raylib vector.
func MulVec(m mgl32.Mat3, v rl.Vector3) rl.Vector3 {
	return FromVec(m.Mul3x1(Vec(v)))
}

// Outer returns a * b^T.
func Outer(a, b rl.Vector3) mgl32.Mat3 {
	return mgl32.Mat3FromCols(
		mgl32.Vec3{a.X * b.X, a.Y * b.X, a.Z * b.X},
		mgl32.Vec3{a.X * b.Y, a.Y * b.Y, a.Z * b.Y},
		mgl32.Vec3{a.X * b.Z, a.Y * b.Z, a.Z * b.Z},
	)
}

// RotationMatrix returns the 3x3 rotation matrix of a unit quaternion.
func RotationMatrix(q rl.Quaternion) mgl32.Mat3 {
	return mgl32.Mat3FromCols(
		Vec(rl.Vector3RotateByQuaternion(rl.Vector3{X: 1}, q)),
		Vec(rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, q)),
		Vec(rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, q)),
	)
}

// RotateTensor returns R * m * R^T, moving a local tensor into world space.
func RotateTensor(m mgl32.Mat3, q rl.Quaternion) mgl32.Mat3 {
	r := RotationMatrix(q)
	return r.Mul3(m).Mul3(r.Transpose())
}

// Axes returns the world-space local X, Y and Z axes of a rotation.
func Axes(q rl.Quaternion) [3]rl.Vector3 {
	return [3]rl.Vector3{
		rl.Vector3RotateByQuaternion(rl.Vector3{X: 1}, q),
		rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, q),
		rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, q),
	}
}

// ToLocal moves a world point into the frame at position/rotation.
func ToLocal(p, position rl.Vector3, rotation rl.Quaternion) rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3Subtract(p, position), rl.QuaternionInvert(rotation))
}

// ToWorld moves a local point out of the frame at position/rotation.
func ToWorld(p, position rl.Vector3, rotation rl.Quaternion) rl.Vector3 {
	return rl.Vector3Add(position, rl.Vector3RotateByQuaternion(p, rotation))
}

func absf(x float32) float32 {
	return math32.Abs(x)
}

// signf returns -1, 0 or 1.
func signf(x float32) float32 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}

func component(v rl.Vector3, i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}
