package collision

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	epaMaxIterations = 32
	epaTolerance     = 1e-4
	// normalSnap zeroes tiny normal components so axis-aligned resting
	// contacts keep an exactly axis-aligned friction basis.
	normalSnap = 1e-6
)

type epaFace struct {
	a, b, c  int
	normal   rl.Vector3
	distance float32
}

type epaEdge struct {
	a, b int
}

// epa expands the GJK tetrahedron toward the boundary of the Minkowski
// difference and returns the contact normal (A toward B) and depth.
func epa(support supportFunc, s *simplex) (rl.Vector3, float32, bool) {
	if s.count < 4 {
		return rl.Vector3{}, 0, false
	}
	vertices := make([]rl.Vector3, 0, 32)
	vertices = append(vertices, s.points[0], s.points[1], s.points[2], s.points[3])

	faces := make([]epaFace, 0, 32)
	for _, f := range [4][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}} {
		if face, ok := makeFace(vertices, f[0], f[1], f[2]); ok {
			faces = append(faces, face)
		}
	}

	for i := 0; i < epaMaxIterations && len(faces) > 0; i++ {
		closest := 0
		for j := 1; j < len(faces); j++ {
			if faces[j].distance < faces[closest].distance {
				closest = j
			}
		}
		face := faces[closest]

		p := support(face.normal)
		d := rl.Vector3DotProduct(p, face.normal)
		if d-face.distance < epaTolerance {
			return snapNormal(face.normal), face.distance, true
		}

		vertices = append(vertices, p)
		pi := len(vertices) - 1

		var horizon []epaEdge
		addEdge := func(a, b int) {
			for k, e := range horizon {
				if e.a == b && e.b == a {
					horizon = append(horizon[:k], horizon[k+1:]...)
					return
				}
			}
			horizon = append(horizon, epaEdge{a, b})
		}

		kept := faces[:0]
		for _, f := range faces {
			if rl.Vector3DotProduct(f.normal, rl.Vector3Subtract(p, vertices[f.a])) > 0 {
				addEdge(f.a, f.b)
				addEdge(f.b, f.c)
				addEdge(f.c, f.a)
				continue
			}
			kept = append(kept, f)
		}
		faces = kept

		for _, e := range horizon {
			if face, ok := makeFace(vertices, e.a, e.b, pi); ok {
				faces = append(faces, face)
			}
		}
	}

	if len(faces) == 0 {
		return rl.Vector3{}, 0, false
	}
	closest := 0
	for j := 1; j < len(faces); j++ {
		if faces[j].distance < faces[closest].distance {
			closest = j
		}
	}
	return snapNormal(faces[closest].normal), faces[closest].distance, true
}

// makeFace builds a face whose normal points away from the origin.
func makeFace(vertices []rl.Vector3, a, b, c int) (epaFace, bool) {
	n := rl.Vector3CrossProduct(
		rl.Vector3Subtract(vertices[b], vertices[a]),
		rl.Vector3Subtract(vertices[c], vertices[a]),
	)
	l := rl.Vector3Length(n)
	if l < 1e-10 {
		return epaFace{}, false
	}
	n = rl.Vector3Scale(n, 1/l)
	dist := rl.Vector3DotProduct(n, vertices[a])
	if dist < 0 {
		n = rl.Vector3Negate(n)
		dist = -dist
		b, c = c, b
	}
	return epaFace{a: a, b: b, c: c, normal: n, distance: dist}, true
}

func snapNormal(n rl.Vector3) rl.Vector3 {
	if math32.Abs(n.X) < normalSnap {
		n.X = 0
	}
	if math32.Abs(n.Y) < normalSnap {
		n.Y = 0
	}
	if math32.Abs(n.Z) < normalSnap {
		n.Z = 0
	}
	return safeNormalize(n)
}
