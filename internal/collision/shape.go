package collision

import (
	"errors"
	"strings"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// ShapeKind tags the Shape union.
type ShapeKind uint8

const (
	Cuboid ShapeKind = iota
	Sphere
	Capsule
	Cylinder
)

var ErrUnknownShape = errors.New("unknown shape kind")

var shapeNames = [...]string{"cuboid", "sphere", "capsule", "cylinder"}

func (k ShapeKind) String() string {
	if int(k) < len(shapeNames) {
		return shapeNames[k]
	}
	return "unknown"
}

// ParseShapeKind accepts the names produced by String, plus "box".
func ParseShapeKind(s string) (ShapeKind, error) {
	switch strings.ToLower(s) {
	case "cuboid", "box":
		return Cuboid, nil
	case "sphere":
		return Sphere, nil
	case "capsule":
		return Capsule, nil
	case "cylinder":
		return Cylinder, nil
	}
	return 0, ErrUnknownShape
}

// Shape is a closed union of convex primitives, centered on the local origin.
// Capsules and cylinders run along local Y. Which fields are meaningful
// depends on Kind: HalfExtents for cuboids, Radius for the rest, HalfHeight
// for capsules and cylinders.
type Shape struct {
	Kind        ShapeKind
	HalfExtents rl.Vector3
	Radius      float32
	HalfHeight  float32
}

func NewCuboid(halfExtents rl.Vector3) Shape {
	return Shape{Kind: Cuboid, HalfExtents: halfExtents}
}

func NewSphere(radius float32) Shape {
	return Shape{Kind: Sphere, Radius: radius}
}

func NewCapsule(halfHeight, radius float32) Shape {
	return Shape{Kind: Capsule, HalfHeight: halfHeight, Radius: radius}
}

func NewCylinder(halfHeight, radius float32) Shape {
	return Shape{Kind: Cylinder, HalfHeight: halfHeight, Radius: radius}
}

// Scaled returns the shape with a transform scale baked in. Round shapes
// take the largest relevant axis.
func (s Shape) Scaled(scale rl.Vector3) Shape {
	sx, sy, sz := absf(scale.X), absf(scale.Y), absf(scale.Z)
	switch s.Kind {
	case Cuboid:
		s.HalfExtents = rl.Vector3{X: s.HalfExtents.X * sx, Y: s.HalfExtents.Y * sy, Z: s.HalfExtents.Z * sz}
	case Sphere:
		s.Radius *= math32.Max(sx, math32.Max(sy, sz))
	case Capsule, Cylinder:
		s.Radius *= math32.Max(sx, sz)
		s.HalfHeight *= sy
	}
	return s
}

// LocalAABB is the bound of the shape in its own frame.
func (s Shape) LocalAABB() AABB {
	var h rl.Vector3
	switch s.Kind {
	case Cuboid:
		h = s.HalfExtents
	case Sphere:
		h = rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius}
	case Capsule:
		h = rl.Vector3{X: s.Radius, Y: s.HalfHeight + s.Radius, Z: s.Radius}
	case Cylinder:
		h = rl.Vector3{X: s.Radius, Y: s.HalfHeight, Z: s.Radius}
	}
	return AABB{Min: rl.Vector3Negate(h), Max: h}
}

// WorldAABB bounds the shape placed at position with rotation.
func (s Shape) WorldAABB(position rl.Vector3, rotation rl.Quaternion) AABB {
	switch s.Kind {
	case Sphere:
		return NewAABBFromCenter(position, rl.Vector3{X: s.Radius, Y: s.Radius, Z: s.Radius})
	case Capsule:
		axis := rl.Vector3RotateByQuaternion(rl.Vector3{Y: s.HalfHeight}, rotation)
		ext := rl.Vector3{
			X: absf(axis.X) + s.Radius,
			Y: absf(axis.Y) + s.Radius,
			Z: absf(axis.Z) + s.Radius,
		}
		return NewAABBFromCenter(position, ext)
	case Cylinder:
		a := rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, rotation)
		disc := func(c float32) float32 {
			return s.Radius * math32.Sqrt(math32.Max(0, 1-c*c))
		}
		ext := rl.Vector3{
			X: absf(a.X)*s.HalfHeight + disc(a.X),
			Y: absf(a.Y)*s.HalfHeight + disc(a.Y),
			Z: absf(a.Z)*s.HalfHeight + disc(a.Z),
		}
		return NewAABBFromCenter(position, ext)
	}
	return TransformAABB(s.LocalAABB(), position, rotation)
}

// Support returns the local point farthest along direction. Zero direction
// components pick the middle of the face or cap so ties are deterministic.
func (s Shape) Support(direction rl.Vector3) rl.Vector3 {
	direction = safeNormalize(direction)
	switch s.Kind {
	case Cuboid:
		return rl.Vector3{
			X: supportSign(direction.X) * s.HalfExtents.X,
			Y: supportSign(direction.Y) * s.HalfExtents.Y,
			Z: supportSign(direction.Z) * s.HalfExtents.Z,
		}
	case Sphere:
		return rl.Vector3Scale(safeNormalize(direction), s.Radius)
	case Capsule:
		tip := rl.Vector3{Y: supportSign(direction.Y) * s.HalfHeight}
		return rl.Vector3Add(tip, rl.Vector3Scale(safeNormalize(direction), s.Radius))
	case Cylinder:
		var p rl.Vector3
		if direction.X*direction.X+direction.Z*direction.Z > supportEpsilon*supportEpsilon {
			p = rl.Vector3Scale(safeNormalize(rl.Vector3{X: direction.X, Z: direction.Z}), s.Radius)
		}
		p.Y = supportSign(direction.Y) * s.HalfHeight
		return p
	}
	return rl.Vector3Zero()
}

// SupportWorld is Support for the shape placed in the world.
func (s Shape) SupportWorld(direction, position rl.Vector3, rotation rl.Quaternion) rl.Vector3 {
	local := rl.Vector3RotateByQuaternion(direction, rl.QuaternionInvert(rotation))
	return ToWorld(s.Support(local), position, rotation)
}

func (s Shape) Volume() float32 {
	r2 := s.Radius * s.Radius
	switch s.Kind {
	case Cuboid:
		return 8 * s.HalfExtents.X * s.HalfExtents.Y * s.HalfExtents.Z
	case Sphere:
		return 4.0 / 3.0 * math32.Pi * r2 * s.Radius
	case Capsule:
		return math32.Pi*r2*2*s.HalfHeight + 4.0/3.0*math32.Pi*r2*s.Radius
	case Cylinder:
		return math32.Pi * r2 * 2 * s.HalfHeight
	}
	return 0
}

// ContainsPoint tests a point given in the shape's local frame.
func (s Shape) ContainsPoint(p rl.Vector3) bool {
	switch s.Kind {
	case Cuboid:
		h := s.HalfExtents
		return absf(p.X) <= h.X && absf(p.Y) <= h.Y && absf(p.Z) <= h.Z
	case Sphere:
		return rl.Vector3LengthSqr(p) <= s.Radius*s.Radius
	case Capsule:
		y := Clamp(p.Y, -s.HalfHeight, s.HalfHeight)
		return rl.Vector3LengthSqr(rl.Vector3{X: p.X, Y: p.Y - y, Z: p.Z}) <= s.Radius*s.Radius
	case Cylinder:
		return absf(p.Y) <= s.HalfHeight && p.X*p.X+p.Z*p.Z <= s.Radius*s.Radius
	}
	return false
}

// Inertia returns the local inertia tensor for a solid of the given mass.
func (s Shape) Inertia(mass float32) mgl32.Mat3 {
	r2 := s.Radius * s.Radius
	switch s.Kind {
	case Cuboid:
		x2 := s.HalfExtents.X * s.HalfExtents.X
		y2 := s.HalfExtents.Y * s.HalfExtents.Y
		z2 := s.HalfExtents.Z * s.HalfExtents.Z
		return mgl32.Diag3(mgl32.Vec3{mass / 3 * (y2 + z2), mass / 3 * (x2 + z2), mass / 3 * (x2 + y2)})
	case Sphere:
		i := 0.4 * mass * r2
		return mgl32.Diag3(mgl32.Vec3{i, i, i})
	case Capsule:
		h := s.HalfHeight
		cyl := math32.Pi * r2 * 2 * h
		sph := 4.0 / 3.0 * math32.Pi * r2 * s.Radius
		mc := mass * cyl / (cyl + sph)
		ms := mass - mc
		iy := mc*r2/2 + ms*0.4*r2
		ix := mc*(r2/4+h*h/3) + ms*(0.4*r2+h*h+0.75*h*s.Radius)
		return mgl32.Diag3(mgl32.Vec3{ix, iy, ix})
	case Cylinder:
		h := s.HalfHeight
		iy := mass * r2 / 2
		ix := mass * (3*r2 + 4*h*h) / 12
		return mgl32.Diag3(mgl32.Vec3{ix, iy, ix})
	}
	return mgl32.Ident3()
}

// supportEpsilon treats nearly perpendicular directions as exactly
// perpendicular when picking support features.
const supportEpsilon = 1e-5

func supportSign(x float32) float32 {
	if absf(x) < supportEpsilon {
		return 0
	}
	return signf(x)
}

func safeNormalize(v rl.Vector3) rl.Vector3 {
	l := rl.Vector3Length(v)
	if l < 1e-12 {
		return rl.Vector3Zero()
	}
	return rl.Vector3Scale(v, 1/l)
}
