package physics

import (
	"rigid3d/internal/collision"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// SolveStats describes how one solve went.
type SolveStats struct {
	// Iterations is the pass after which the largest active violation fell
	// below the tolerance, or the full count when it never did.
	Iterations int
	Residual   float32
	Colors     int
}

// Solver runs augmented-Lagrangian vertex block descent over a body arena.
type Solver struct {
	Config    SolverConfig
	Tolerance float32
}

func NewSolver(cfg SolverConfig, tolerance float32) *Solver {
	return &Solver{Config: cfg, Tolerance: tolerance}
}

// Solve advances bodies by dt under the given constraints and derives new
// velocities from the change in pose. Constraints that carried state from
// the previous tick are warm started first.
func (s *Solver) Solve(bodies []Body, constraints []Constraint, dt float32) SolveStats {
	if dt <= 0 {
		return SolveStats{}
	}
	s.integrate(bodies, dt)

	for _, c := range constraints {
		d := c.Data()
		if d.fresh {
			d.fresh = false
			continue
		}
		d.WarmStart(s.Config.Alpha)
	}

	byBody := make([][]Constraint, len(bodies))
	for _, c := range constraints {
		a, b := c.Bodies()
		if a != StaticBody {
			byBody[a] = append(byBody[a], c)
		}
		if b != StaticBody && b != a {
			byBody[b] = append(byBody[b], c)
		}
	}
	colors := ColorBodies(bodies, constraints)

	invDt2 := 1 / (dt * dt)
	iterations := s.Config.Iterations
	if iterations < 1 {
		iterations = 1
	}
	stats := SolveStats{Iterations: iterations, Colors: len(colors)}
	for it := 0; it < iterations; it++ {
		for _, group := range colors {
			for _, i := range group {
				s.solveBody(bodies, i, byBody[i], invDt2)
			}
		}
		for _, c := range constraints {
			c.UpdateDual(bodies, s.Config.Beta)
		}

		var worst float32
		for _, c := range constraints {
			worst = math32.Max(worst, residual(c, bodies))
		}
		stats.Residual = worst
		if worst < s.Tolerance {
			stats.Iterations = it + 1
			break
		}
	}

	for i := range bodies {
		b := &bodies[i]
		if !b.IsDynamic() {
			continue
		}
		b.LinearVelocity = rl.Vector3Scale(rl.Vector3Subtract(b.Position, b.initialPosition), 1/dt)
		b.AngularVelocity = rl.Vector3Scale(rotationDelta(b.Rotation, b.initialRotation), 1/dt)
	}
	return stats
}

// integrate damps velocities, applies gravity and queued forces, and moves
// every body to its inertial target. Kinematic bodies simply follow their
// velocity.
func (s *Solver) integrate(bodies []Body, dt float32) {
	for i := range bodies {
		b := &bodies[i]
		b.initialPosition = b.Position
		b.initialRotation = b.Rotation

		if b.IsDynamic() {
			b.LinearVelocity = rl.Vector3Scale(b.LinearVelocity, 1/(1+b.LinearDamping*dt))
			b.AngularVelocity = rl.Vector3Scale(b.AngularVelocity, 1/(1+b.AngularDamping*dt))

			accel := rl.Vector3Scale(b.force, b.InvMass)
			if b.UseGravity {
				accel = rl.Vector3Add(accel, s.Config.Gravity)
			}
			b.LinearVelocity = rl.Vector3Add(b.LinearVelocity, rl.Vector3Scale(accel, dt))
			alpha := collision.MulVec(b.InvInertiaWorld(), b.torque)
			b.AngularVelocity = rl.Vector3Add(b.AngularVelocity, rl.Vector3Scale(alpha, dt))
		}
		b.force = rl.Vector3{}
		b.torque = rl.Vector3{}

		if b.IsDynamic() || b.IsKinematic {
			b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(b.LinearVelocity, dt))
			b.Rotation = integrateRotation(b.Rotation, rl.Vector3Scale(b.AngularVelocity, dt))
		}
		b.inertialPosition = b.Position
		b.inertialRotation = b.Rotation
	}
}

// solveBody takes one Newton step on the body's local energy: inertia
// pulling it toward the inertial target plus every attached constraint.
func (s *Solver) solveBody(bodies []Body, i int, constraints []Constraint, invDt2 float32) {
	b := &bodies[i]
	m := b.Mass * invDt2
	inertia := b.InertiaWorld().Mul(invDt2)

	force := rl.Vector3Scale(rl.Vector3Subtract(b.inertialPosition, b.Position), m)
	torque := collision.MulVec(inertia, rotationDelta(b.inertialRotation, b.Rotation))
	h := Hessian{LL: mgl32.Diag3(mgl32.Vec3{m, m, m}), AA: inertia}

	for _, c := range constraints {
		f, t, ch := c.ForceAndHessian(bodies, i)
		force = rl.Vector3Add(force, f)
		torque = rl.Vector3Add(torque, t)
		h = h.Add(ch)
	}

	lin, ang, ok := h.Solve(force, torque)
	if !ok {
		return
	}
	gamma := s.Config.Gamma
	b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(lin, gamma))
	b.Rotation = integrateRotation(b.Rotation, rl.Vector3Scale(ang, gamma))
}

// ApplyRestitution bounces contacts that were closing faster than threshold
// before the solve. Impulses are applied one contact at a time.
func ApplyRestitution(bodies []Body, contacts []*ContactConstraint, threshold float32) {
	for _, c := range contacts {
		c.applyRestitution(bodies, threshold)
	}
}

// FinishVelocities clamps speeds and zeroes the slow drift of bodies resting
// on something.
func FinishVelocities(bodies []Body, cfg Config) {
	for i := range bodies {
		b := &bodies[i]
		if !b.IsDynamic() {
			continue
		}
		b.LinearVelocity = clampLength(b.LinearVelocity, cfg.MaxLinearVelocity)
		b.AngularVelocity = clampLength(b.AngularVelocity, cfg.MaxAngularVelocity)
		if !b.inContact {
			continue
		}
		if rl.Vector3Length(b.LinearVelocity) < cfg.RestVelocityThreshold {
			b.LinearVelocity = rl.Vector3{}
		}
		if rl.Vector3Length(b.AngularVelocity) < cfg.RestVelocityThreshold {
			b.AngularVelocity = rl.Vector3{}
		}
	}
}

func clampLength(v rl.Vector3, max float32) rl.Vector3 {
	if max <= 0 {
		return v
	}
	if l := rl.Vector3Length(v); l > max {
		return rl.Vector3Scale(v, max/l)
	}
	return v
}
