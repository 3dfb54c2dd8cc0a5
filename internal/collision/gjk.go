package collision

import rl "github.com/gen2brain/raylib-go/raylib"

// simplex holds 1-4 points of the Minkowski difference, newest last.
type simplex struct {
	points [4]rl.Vector3
	count  int
}

// supportFunc returns the farthest point of A-B along direction.
type supportFunc func(direction rl.Vector3) rl.Vector3

func minkowski(a, b Instance) supportFunc {
	return func(d rl.Vector3) rl.Vector3 {
		pa := a.Shape.SupportWorld(d, a.Position, a.Rotation)
		pb := b.Shape.SupportWorld(rl.Vector3Negate(d), b.Position, b.Rotation)
		return rl.Vector3Subtract(pa, pb)
	}
}

const gjkMaxIterations = 32

// gjk reports whether the origin lies inside the Minkowski difference. On a
// hit the simplex is a tetrahedron enclosing the origin, ready for epa.
func gjk(support supportFunc, start rl.Vector3, s *simplex) bool {
	direction := start
	if rl.Vector3LengthSqr(direction) < 1e-8 {
		direction = rl.Vector3{X: 1}
	}

	s.points[0] = support(direction)
	s.count = 1
	direction = rl.Vector3Negate(s.points[0])
	if rl.Vector3LengthSqr(direction) < 1e-16 {
		return false
	}

	for i := 0; i < gjkMaxIterations; i++ {
		p := support(direction)
		if rl.Vector3DotProduct(p, direction) <= 0 {
			return false
		}
		s.points[s.count] = p
		s.count++
		if s.evolve(&direction) {
			return s.count == 4
		}
	}
	return false
}

func (s *simplex) evolve(direction *rl.Vector3) bool {
	switch s.count {
	case 2:
		return s.line(direction)
	case 3:
		return s.triangle(direction)
	case 4:
		return s.tetrahedron(direction)
	}
	return false
}

func tripleCross(a, b, c rl.Vector3) rl.Vector3 {
	return rl.Vector3CrossProduct(rl.Vector3CrossProduct(a, b), c)
}

func (s *simplex) line(direction *rl.Vector3) bool {
	a := s.points[1]
	b := s.points[0]
	ab := rl.Vector3Subtract(b, a)
	ao := rl.Vector3Negate(a)

	if rl.Vector3LengthSqr(ab) < 1e-8 || rl.Vector3DotProduct(ab, ao) <= 0 {
		s.points[0] = a
		s.count = 1
		*direction = ao
		return false
	}

	perp := tripleCross(ab, ao, ab)
	if rl.Vector3LengthSqr(perp) < 1e-12 {
		// Origin on the segment; any perpendicular keeps the search going.
		perp = rl.Vector3CrossProduct(ab, rl.Vector3{X: 1})
		if rl.Vector3LengthSqr(perp) < 1e-12 {
			perp = rl.Vector3CrossProduct(ab, rl.Vector3{Y: 1})
		}
	}
	*direction = perp
	return false
}

func (s *simplex) triangle(direction *rl.Vector3) bool {
	a := s.points[2]
	b := s.points[1]
	c := s.points[0]
	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ao := rl.Vector3Negate(a)
	abc := rl.Vector3CrossProduct(ab, ac)

	if rl.Vector3LengthSqr(abc) < 1e-10 {
		s.points[0] = b
		s.points[1] = a
		s.count = 2
		return s.line(direction)
	}

	if rl.Vector3DotProduct(rl.Vector3CrossProduct(ab, abc), ao) > 0 {
		s.points[0] = b
		s.points[1] = a
		s.count = 2
		*direction = tripleCross(ab, ao, ab)
		return false
	}
	if rl.Vector3DotProduct(rl.Vector3CrossProduct(abc, ac), ao) > 0 {
		s.points[0] = c
		s.points[1] = a
		s.count = 2
		*direction = tripleCross(ac, ao, ac)
		return false
	}

	if rl.Vector3DotProduct(abc, ao) > 0 {
		*direction = abc
	} else {
		s.points[0] = b
		s.points[1] = c
		s.points[2] = a
		*direction = rl.Vector3Negate(abc)
	}
	return false
}

func (s *simplex) tetrahedron(direction *rl.Vector3) bool {
	a := s.points[3]
	b := s.points[2]
	c := s.points[1]
	d := s.points[0]
	ab := rl.Vector3Subtract(b, a)
	ac := rl.Vector3Subtract(c, a)
	ad := rl.Vector3Subtract(d, a)
	ao := rl.Vector3Negate(a)

	outward := func(n, away rl.Vector3) rl.Vector3 {
		if rl.Vector3DotProduct(n, away) > 0 {
			return rl.Vector3Negate(n)
		}
		return n
	}
	abc := outward(rl.Vector3CrossProduct(ab, ac), ad)
	acd := outward(rl.Vector3CrossProduct(ac, ad), ab)
	adb := outward(rl.Vector3CrossProduct(ad, ab), ac)

	reduce := func(p0, p1, p2 rl.Vector3) bool {
		s.points[0] = p0
		s.points[1] = p1
		s.points[2] = p2
		s.count = 3
		return s.triangle(direction)
	}

	if rl.Vector3LengthSqr(abc) < 1e-10 || rl.Vector3LengthSqr(acd) < 1e-10 || rl.Vector3LengthSqr(adb) < 1e-10 {
		return reduce(c, b, a)
	}
	if rl.Vector3DotProduct(abc, ao) > 0 {
		return reduce(c, b, a)
	}
	if rl.Vector3DotProduct(acd, ao) > 0 {
		return reduce(d, c, a)
	}
	if rl.Vector3DotProduct(adb, ao) > 0 {
		return reduce(b, d, a)
	}
	return true
}
