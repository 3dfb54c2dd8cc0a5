package physics

import (
	"testing"

	"rigid3d/internal/collision"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b, tol float32) bool {
	return math32.Abs(a-b) <= tol
}

func nearVec(a, b rl.Vector3, tol float32) bool {
	return near(a.X, b.X, tol) && near(a.Y, b.Y, tol) && near(a.Z, b.Z, tol)
}

func TestHessianSolveBlockDiagonal(t *testing.T) {
	h := Hessian{
		LL: mgl32.Diag3(mgl32.Vec3{2, 2, 2}),
		AA: mgl32.Diag3(mgl32.Vec3{3, 3, 3}),
	}
	lin, ang, ok := h.Solve(rl.Vector3{X: 2, Y: 4, Z: 6}, rl.Vector3{X: 3})
	if !ok {
		t.Fatal("Expected a solvable system")
	}
	if !nearVec(lin, rl.Vector3{X: 1, Y: 2, Z: 3}, 1e-5) {
		t.Errorf("Expected linear (1,2,3), got %v", lin)
	}
	if !nearVec(ang, rl.Vector3{X: 1}, 1e-5) {
		t.Errorf("Expected angular (1,0,0), got %v", ang)
	}
}

func TestHessianSolveCoupled(t *testing.T) {
	// One row with lever arm r = (0,0,1) along X on top of unit inertia.
	h := Hessian{LL: mgl32.Ident3(), AA: mgl32.Ident3()}
	h = h.Add(rowHessian(1, rl.Vector3{X: 1}, rl.Vector3CrossProduct(rl.Vector3{Z: 1}, rl.Vector3{X: 1})))
	f := rl.Vector3{X: 1}
	tq := rl.Vector3{Y: 0.5}
	lin, ang, ok := h.Solve(f, tq)
	if !ok {
		t.Fatal("Expected a solvable system")
	}
	// Check H * x == rhs
	gotF := collision.FromVec(h.LL.Mul3x1(collision.Vec(lin)).Add(h.LA.Mul3x1(collision.Vec(ang))))
	gotT := collision.FromVec(h.AL.Mul3x1(collision.Vec(lin)).Add(h.AA.Mul3x1(collision.Vec(ang))))
	if !nearVec(gotF, f, 1e-5) || !nearVec(gotT, tq, 1e-5) {
		t.Errorf("Expected H*x = rhs, got force %v torque %v", gotF, gotT)
	}
}

func TestHessianSolveSingular(t *testing.T) {
	if _, _, ok := (Hessian{}).Solve(rl.Vector3{X: 1}, rl.Vector3{}); ok {
		t.Error("Expected a zero Hessian to be reported as unsolvable")
	}
}

func TestConstraintDataWarmStart(t *testing.T) {
	d := NewConstraintData(1000)
	d.Lambda = rl.Vector3{X: 10, Y: -4, Z: 2}
	d.K = rl.Vector3{X: 1000, Y: 1, Z: 500}
	d.WarmStart(0.5)

	if !nearVec(d.Lambda, rl.Vector3{X: 5, Y: -2, Z: 1}, 1e-6) {
		t.Errorf("Expected lambda halved, got %v", d.Lambda)
	}
	if d.K.Y != MinStiffness {
		t.Errorf("Expected stiffness floored at %v, got %v", MinStiffness, d.K.Y)
	}
	if d.K.X != 500 {
		t.Errorf("Expected stiffness 500, got %v", d.K.X)
	}
}

func TestConstraintDataDualUpdate(t *testing.T) {
	d := NewConstraintData(1000)
	d.Max.Z = 0

	// Penetrating normal row: pushes and stiffens.
	d.updateRow(2, -0.01, 100000)
	if !near(d.Lambda.Z, -10, 1e-4) {
		t.Errorf("Expected lambda -10, got %f", d.Lambda.Z)
	}
	if !near(d.K.Z, 2000, 1e-2) {
		t.Errorf("Expected stiffness 2000, got %f", d.K.Z)
	}

	// Separating: clamped at the bound, stiffness unchanged.
	d.updateRow(2, 1, 100000)
	if d.Lambda.Z != 0 {
		t.Errorf("Expected lambda clamped to 0, got %f", d.Lambda.Z)
	}
	if !near(d.K.Z, 2000, 1e-2) {
		t.Errorf("Expected stiffness to stay 2000 at the bound, got %f", d.K.Z)
	}
}

func TestConstraintDataStiffnessCap(t *testing.T) {
	d := NewConstraintData(MaxStiffness)
	d.updateRow(0, 1, 1e9)
	if d.K.X != MaxStiffness {
		t.Errorf("Expected stiffness capped at %g, got %g", float64(MaxStiffness), d.K.X)
	}
}

func TestCombineMaterials(t *testing.T) {
	if f := CombineFriction(0.4, 0.9); !near(f, 0.6, 1e-5) {
		t.Errorf("Expected geometric mean 0.6, got %f", f)
	}
	if r := CombineRestitution(0.2, 0.7); r != 0.7 {
		t.Errorf("Expected max restitution 0.7, got %f", r)
	}
}
