package collision

import (
	"testing"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

func TestParseShapeKind(t *testing.T) {
	tests := map[string]ShapeKind{
		"cuboid":   Cuboid,
		"Box":      Cuboid,
		"sphere":   Sphere,
		"capsule":  Capsule,
		"cylinder": Cylinder,
	}
	for name, want := range tests {
		got, err := ParseShapeKind(name)
		if err != nil {
			t.Errorf("ParseShapeKind(%q) returned error: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseShapeKind(%q): expected %v, got %v", name, want, got)
		}
	}
	if _, err := ParseShapeKind("torus"); err != ErrUnknownShape {
		t.Errorf("Expected ErrUnknownShape, got %v", err)
	}
}

func TestWorldAABBRotatedCuboid(t *testing.T) {
	s := NewCuboid(rl.Vector3{X: 1, Y: 1, Z: 1})
	rot := rl.QuaternionFromAxisAngle(rl.Vector3{Y: 1}, math32.Pi/4)
	box := s.WorldAABB(rl.Vector3{}, rot)

	want := math32.Sqrt(2)
	if !near(box.Max.X, want, 1e-4) || !near(box.Max.Z, want, 1e-4) {
		t.Errorf("Expected max XZ %f, got %v", want, box.Max)
	}
	if !near(box.Max.Y, 1, 1e-4) {
		t.Errorf("Expected max Y 1, got %f", box.Max.Y)
	}
}

func TestWorldAABBCapsule(t *testing.T) {
	s := NewCapsule(1, 0.5)
	box := s.WorldAABB(rl.Vector3{Y: 2}, rl.QuaternionIdentity())
	if !near(box.Min.Y, 0.5, 1e-5) || !near(box.Max.Y, 3.5, 1e-5) {
		t.Errorf("Expected Y range [0.5, 3.5], got [%f, %f]", box.Min.Y, box.Max.Y)
	}
	if !near(box.Max.X, 0.5, 1e-5) {
		t.Errorf("Expected X extent 0.5, got %f", box.Max.X)
	}
}

func TestSupportCuboidFaceCenter(t *testing.T) {
	s := NewCuboid(rl.Vector3{X: 1, Y: 2, Z: 3})
	p := s.Support(rl.Vector3{Y: -1})
	if p != (rl.Vector3{Y: -2}) {
		t.Errorf("Expected bottom face center, got %v", p)
	}
}

func TestSupportCylinder(t *testing.T) {
	s := NewCylinder(1, 0.5)
	p := s.Support(rl.Vector3{X: 1, Y: 1})
	if !near(p.X, 0.5, 1e-5) || !near(p.Y, 1, 1e-5) {
		t.Errorf("Expected rim point (0.5,1,0), got %v", p)
	}
}

func TestInertiaSphere(t *testing.T) {
	i := NewSphere(1).Inertia(10)
	if !near(i.At(0, 0), 4, 1e-5) || !near(i.At(1, 1), 4, 1e-5) {
		t.Errorf("Expected diagonal 4, got %v", i)
	}
	if i.At(0, 1) != 0 {
		t.Errorf("Expected zero off-diagonal, got %f", i.At(0, 1))
	}
}

func TestInertiaCuboid(t *testing.T) {
	i := NewCuboid(rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5}).Inertia(6)
	// m/12 * (w^2 + h^2) with unit sides.
	if !near(i.At(0, 0), 1, 1e-5) {
		t.Errorf("Expected Ixx 1, got %f", i.At(0, 0))
	}
}

func TestVolume(t *testing.T) {
	if v := NewCuboid(rl.Vector3{X: 1, Y: 1, Z: 1}).Volume(); !near(v, 8, 1e-5) {
		t.Errorf("Expected cube volume 8, got %f", v)
	}
	if v := NewSphere(1).Volume(); !near(v, 4.0/3.0*math32.Pi, 1e-4) {
		t.Errorf("Expected sphere volume 4.18879, got %f", v)
	}
}

func TestScaled(t *testing.T) {
	s := NewSphere(1).Scaled(rl.Vector3{X: 2, Y: 3, Z: 1})
	if s.Radius != 3 {
		t.Errorf("Expected radius scaled by the largest axis to 3, got %f", s.Radius)
	}
	c := NewCuboid(rl.Vector3{X: 1, Y: 1, Z: 1}).Scaled(rl.Vector3{X: 2, Y: 3, Z: 4})
	if c.HalfExtents != (rl.Vector3{X: 2, Y: 3, Z: 4}) {
		t.Errorf("Expected half extents (2,3,4), got %v", c.HalfExtents)
	}
}

func TestAABBMergeAndResolve(t *testing.T) {
	a := NewAABBFromCenter(rl.Vector3{}, rl.Vector3{X: 1, Y: 1, Z: 1})
	b := NewAABBFromCenter(rl.Vector3{X: 1.5}, rl.Vector3{X: 1, Y: 1, Z: 1})

	m := a.Merge(b)
	if m.Min.X != -1 || m.Max.X != 2.5 {
		t.Errorf("Expected merged X range [-1, 2.5], got [%f, %f]", m.Min.X, m.Max.X)
	}

	mtv := a.Resolve(b)
	if !near(mtv.X, -0.5, 1e-5) || mtv.Y != 0 || mtv.Z != 0 {
		t.Errorf("Expected MTV (-0.5,0,0), got %v", mtv)
	}
}
