package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// CorrectPositions pushes overlapping bodies apart along contact normals.
// Each pass removes PositionCorrectionRate of the penetration beyond
// ContactSlop, split by inverse mass. Only positions change; velocities stay
// as the solver left them.
func CorrectPositions(bodies []Body, contacts []*ContactConstraint, cfg Config) {
	for pass := 0; pass < cfg.PositionIterations; pass++ {
		for _, c := range contacts {
			pen := c.Penetration(bodies)
			corr := cfg.PositionCorrectionRate * math32.Max(pen-cfg.ContactSlop, 0)
			if corr <= 0 {
				continue
			}
			wA := inverseMass(bodies, c.BodyA)
			wB := inverseMass(bodies, c.BodyB)
			total := wA + wB
			if total <= 0 {
				continue
			}
			n := c.Contact.Normal
			if wA > 0 {
				a := &bodies[c.BodyA]
				a.Position = rl.Vector3Subtract(a.Position, rl.Vector3Scale(n, corr*wA/total))
			}
			if wB > 0 {
				b := &bodies[c.BodyB]
				b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(n, corr*wB/total))
			}
		}
	}
}

func inverseMass(bodies []Body, idx int) float32 {
	if idx == StaticBody || !bodies[idx].IsDynamic() {
		return 0
	}
	return bodies[idx].InvMass
}
