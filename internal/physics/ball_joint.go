package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// BallJointStiffness is the starting stiffness of joint rows. Joints are
// equality constraints, so they start stiffer than contacts.
const BallJointStiffness = 10000

var worldAxes = [3]rl.Vector3{{X: 1}, {Y: 1}, {Z: 1}}

// BallJoint pins a point of one body to a point of another (or to the
// world) while leaving rotation free.
type BallJoint struct {
	BodyA, BodyB   int
	LocalA, LocalB rl.Vector3
	data           ConstraintData
}

// NewBallJoint anchors both bodies at the same world point.
func NewBallJoint(bodies []Body, a, b int, anchor rl.Vector3) *BallJoint {
	return &BallJoint{
		BodyA:  a,
		BodyB:  b,
		LocalA: anchorLocal(bodies, a, anchor),
		LocalB: anchorLocal(bodies, b, anchor),
		data:   NewConstraintData(BallJointStiffness),
	}
}

func (j *BallJoint) Bodies() (int, int) {
	return j.BodyA, j.BodyB
}

func (j *BallJoint) AffectsBody(idx int) bool {
	return idx != StaticBody && (idx == j.BodyA || idx == j.BodyB)
}

// Evaluate is the world-space gap anchorA - anchorB.
func (j *BallJoint) Evaluate(bodies []Body) rl.Vector3 {
	return rl.Vector3Subtract(anchorWorld(bodies, j.BodyA, j.LocalA), anchorWorld(bodies, j.BodyB, j.LocalB))
}

func (j *BallJoint) ForceAndHessian(bodies []Body, idx int) (rl.Vector3, rl.Vector3, Hessian) {
	c := j.Evaluate(bodies)
	if idx == j.BodyA {
		r := rl.Vector3Subtract(anchorWorld(bodies, j.BodyA, j.LocalA), bodies[idx].Position)
		return anchorRows(&j.data, c, worldAxes, r, 1)
	}
	r := rl.Vector3Subtract(anchorWorld(bodies, j.BodyB, j.LocalB), bodies[idx].Position)
	return anchorRows(&j.data, c, worldAxes, r, -1)
}

func (j *BallJoint) UpdateDual(bodies []Body, beta float32) {
	c := j.Evaluate(bodies)
	for i := 0; i < 3; i++ {
		j.data.updateRow(i, row(c, i), beta)
	}
}

func (j *BallJoint) Data() *ConstraintData {
	return &j.data
}
