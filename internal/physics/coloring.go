package physics

// ColorBodies groups dynamic bodies so that no two bodies in the same group
// share a constraint. Bodies in one color can be solved in any order, or in
// parallel, without reading each other's in-flight state. Colors are
// assigned greedily in body order, so the result is deterministic.
func ColorBodies(bodies []Body, constraints []Constraint) [][]int {
	adjacency := make([][]int, len(bodies))
	for _, c := range constraints {
		a, b := c.Bodies()
		if a == StaticBody || b == StaticBody || a == b {
			continue
		}
		if !bodies[a].IsDynamic() || !bodies[b].IsDynamic() {
			continue
		}
		adjacency[a] = append(adjacency[a], b)
		adjacency[b] = append(adjacency[b], a)
	}

	color := make([]int, len(bodies))
	for i := range color {
		color[i] = -1
	}
	var groups [][]int
	used := make(map[int]bool)
	for i := range bodies {
		if !bodies[i].IsDynamic() {
			continue
		}
		for k := range used {
			delete(used, k)
		}
		for _, n := range adjacency[i] {
			if color[n] >= 0 {
				used[color[n]] = true
			}
		}
		c := 0
		for used[c] {
			c++
		}
		color[i] = c
		if c == len(groups) {
			groups = append(groups, nil)
		}
		groups[c] = append(groups[c], i)
	}
	return groups
}
