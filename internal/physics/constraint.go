package physics

import (
	"rigid3d/internal/collision"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// MinStiffness keeps warm-started stiffness from decaying to nothing.
	MinStiffness = 1
	// MaxStiffness caps the augmented-Lagrangian penalty growth.
	MaxStiffness = 1e8
)

// Hessian is the 6x6 block of one body: linear-linear, linear-angular,
// angular-linear and angular-angular parts.
type Hessian struct {
	LL, LA, AL, AA mgl32.Mat3
}

func (h Hessian) Add(o Hessian) Hessian {
	return Hessian{
		LL: h.LL.Add(o.LL),
		LA: h.LA.Add(o.LA),
		AL: h.AL.Add(o.AL),
		AA: h.AA.Add(o.AA),
	}
}

// Solve returns the linear and angular deltas for the given right-hand side
// using the Schur complement of the linear block.
func (h Hessian) Solve(force, torque rl.Vector3) (rl.Vector3, rl.Vector3, bool) {
	if h.LL.Det() == 0 {
		return rl.Vector3{}, rl.Vector3{}, false
	}
	invA := h.LL.Inv()
	f := collision.Vec(force)
	g := collision.Vec(torque)

	// S = D - C A^-1 B
	schur := h.AA.Sub(h.AL.Mul3(invA).Mul3(h.LA))
	if schur.Det() == 0 {
		return rl.Vector3{}, rl.Vector3{}, false
	}
	angular := schur.Inv().Mul3x1(g.Sub(h.AL.Mul3(invA).Mul3x1(f)))
	linear := invA.Mul3x1(f.Sub(h.LA.Mul3x1(angular)))
	return collision.FromVec(linear), collision.FromVec(angular), true
}

// rowHessian returns k * J * J^T for a row Jacobian split into its linear
// and angular halves.
func rowHessian(k float32, lin, ang rl.Vector3) Hessian {
	return Hessian{
		LL: collision.Outer(lin, lin).Mul(k),
		LA: collision.Outer(lin, ang).Mul(k),
		AL: collision.Outer(ang, lin).Mul(k),
		AA: collision.Outer(ang, ang).Mul(k),
	}
}

// ConstraintData holds the per-row dual state of a three-row constraint.
// Rows without a bound use ±Inf.
type ConstraintData struct {
	Lambda rl.Vector3
	K      rl.Vector3
	Min    rl.Vector3
	Max    rl.Vector3

	fresh bool // created this tick, nothing to warm start from
}

// NewConstraintData starts every row at stiffness k with no bounds.
func NewConstraintData(k float32) ConstraintData {
	inf := math32.Inf(1)
	return ConstraintData{
		K:     rl.Vector3{X: k, Y: k, Z: k},
		Min:   rl.Vector3{X: -inf, Y: -inf, Z: -inf},
		Max:   rl.Vector3{X: inf, Y: inf, Z: inf},
		fresh: true,
	}
}

// carry takes over the multipliers and stiffness of the same constraint
// from the previous tick.
func (d *ConstraintData) carry(prev ConstraintData) {
	d.Lambda = prev.Lambda
	d.K = prev.K
	d.fresh = false
}

// WarmStart scales the retained multipliers and stiffness by decay before a
// new solve. Stiffness never drops below MinStiffness.
func (d *ConstraintData) WarmStart(decay float32) {
	d.Lambda = rl.Vector3Scale(d.Lambda, decay)
	d.K = rl.Vector3Scale(d.K, decay)
	for i := 0; i < 3; i++ {
		if row(d.K, i) < MinStiffness {
			setRow(&d.K, i, MinStiffness)
		}
	}
}

// force returns the clamped row force for violation c.
func (d *ConstraintData) force(i int, c float32) float32 {
	return collision.Clamp(row(d.K, i)*c+row(d.Lambda, i), row(d.Min, i), row(d.Max, i))
}

// updateRow is the augmented-Lagrangian dual step for one row. Stiffness only
// grows while the multiplier sits strictly inside its bounds.
func (d *ConstraintData) updateRow(i int, c, beta float32) {
	lambda := d.force(i, c)
	setRow(&d.Lambda, i, lambda)
	if lambda > row(d.Min, i) && lambda < row(d.Max, i) {
		setRow(&d.K, i, math32.Min(row(d.K, i)+beta*math32.Abs(c), MaxStiffness))
	}
}

// active reports whether row i would push with violation c.
func (d *ConstraintData) active(i int, c float32) bool {
	f := d.force(i, c)
	return f > row(d.Min, i) && f < row(d.Max, i)
}

// Constraint couples at most two bodies through three scalar rows.
type Constraint interface {
	Bodies() (a, b int)
	AffectsBody(idx int) bool
	// Evaluate returns the violation of each row at the bodies' current state.
	Evaluate(bodies []Body) rl.Vector3
	// ForceAndHessian returns the force, torque and Hessian block the
	// constraint applies to body idx.
	ForceAndHessian(bodies []Body, idx int) (force, torque rl.Vector3, h Hessian)
	UpdateDual(bodies []Body, beta float32)
	Data() *ConstraintData
}

// residual is the largest violation among rows that are pushing.
func residual(c Constraint, bodies []Body) float32 {
	v := c.Evaluate(bodies)
	d := c.Data()
	var worst float32
	for i := 0; i < 3; i++ {
		ci := row(v, i)
		if d.active(i, ci) {
			worst = math32.Max(worst, math32.Abs(ci))
		}
	}
	return worst
}

// anchorRows is the force/Hessian assembly shared by constraints whose rows
// measure the displacement between two body anchors along fixed directions.
// sign is +1 when body idx is the one the displacement points to.
func anchorRows(d *ConstraintData, c rl.Vector3, dirs [3]rl.Vector3, r rl.Vector3, sign float32) (force, torque rl.Vector3, h Hessian) {
	for i := 0; i < 3; i++ {
		lin := rl.Vector3Scale(dirs[i], sign)
		ang := rl.Vector3Scale(rl.Vector3CrossProduct(r, dirs[i]), sign)
		f := d.force(i, row(c, i))
		force = rl.Vector3Subtract(force, rl.Vector3Scale(lin, f))
		torque = rl.Vector3Subtract(torque, rl.Vector3Scale(ang, f))
		h = h.Add(rowHessian(row(d.K, i), lin, ang))
	}
	return force, torque, h
}

func row(v rl.Vector3, i int) float32 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func setRow(v *rl.Vector3, i int, x float32) {
	switch i {
	case 0:
		v.X = x
	case 1:
		v.Y = x
	default:
		v.Z = x
	}
}
