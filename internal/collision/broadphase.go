package collision

import (
	"cmp"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/exp/slices"
)

// Entry is one collider bound handed to the broad phase.
type Entry struct {
	Entity uint64
	Box    AABB
}

// Pair references two entries by index, A < B.
type Pair struct {
	A, B int
}

func makePair(i, j int) Pair {
	if i > j {
		i, j = j, i
	}
	return Pair{A: i, B: j}
}

func sortPairs(pairs []Pair) {
	slices.SortFunc(pairs, func(p, q Pair) int {
		if c := cmp.Compare(p.A, q.A); c != 0 {
			return c
		}
		return cmp.Compare(p.B, q.B)
	})
}

// BruteForcePairs tests every pair. Used for small sets and as the reference
// for the faster methods.
func BruteForcePairs(entries []Entry) []Pair {
	var pairs []Pair
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			if entries[i].Box.Overlaps(entries[j].Box) {
				pairs = append(pairs, Pair{A: i, B: j})
			}
		}
	}
	return pairs
}

type endpoint struct {
	value float32
	index int
	isMin bool
}

// SweepAxis picks the axis (0=X, 1=Y, 2=Z) along which box centers spread the
// most.
func SweepAxis(entries []Entry) int {
	if len(entries) == 0 {
		return 0
	}
	var sum, sumSq rl.Vector3
	for _, e := range entries {
		c := e.Box.Center()
		sum = rl.Vector3Add(sum, c)
		sumSq = rl.Vector3Add(sumSq, rl.Vector3Multiply(c, c))
	}
	n := float32(len(entries))
	mean := rl.Vector3Scale(sum, 1/n)
	variance := rl.Vector3Subtract(rl.Vector3Scale(sumSq, 1/n), rl.Vector3Multiply(mean, mean))

	axis := 0
	if variance.Y > component(variance, axis) {
		axis = 1
	}
	if variance.Z > component(variance, axis) {
		axis = 2
	}
	return axis
}

// SweepAndPrune sorts interval endpoints on the axis of greatest variance and
// tests each newly opened interval against the open ones with a full AABB
// check.
func SweepAndPrune(entries []Entry) []Pair {
	if len(entries) < 2 {
		return nil
	}
	axis := SweepAxis(entries)

	endpoints := make([]endpoint, 0, len(entries)*2)
	for i, e := range entries {
		endpoints = append(endpoints,
			endpoint{value: component(e.Box.Min, axis), index: i, isMin: true},
			endpoint{value: component(e.Box.Max, axis), index: i, isMin: false},
		)
	}
	// Opening endpoints sort first on ties so touching boxes are reported.
	slices.SortFunc(endpoints, func(a, b endpoint) int {
		if c := cmp.Compare(a.value, b.value); c != 0 {
			return c
		}
		if a.isMin != b.isMin {
			if a.isMin {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.index, b.index)
	})

	var pairs []Pair
	active := make([]int, 0, 16)
	for _, ep := range endpoints {
		if !ep.isMin {
			for k, idx := range active {
				if idx == ep.index {
					active = append(active[:k], active[k+1:]...)
					break
				}
			}
			continue
		}
		box := entries[ep.index].Box
		for _, other := range active {
			if box.Overlaps(entries[other].Box) {
				pairs = append(pairs, makePair(ep.index, other))
			}
		}
		active = append(active, ep.index)
	}
	sortPairs(pairs)
	return pairs
}

// CellKey addresses one cell of the spatial hash.
type CellKey struct {
	X, Y, Z int
}

// SpatialHash buckets entries into a uniform grid.
type SpatialHash struct {
	CellSize float32
	cells    map[CellKey][]int
	boxes    map[int]AABB
}

func NewSpatialHash(cellSize float32) *SpatialHash {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &SpatialHash{
		CellSize: cellSize,
		cells:    make(map[CellKey][]int),
		boxes:    make(map[int]AABB),
	}
}

func (h *SpatialHash) cellOf(p rl.Vector3) CellKey {
	return CellKey{
		X: int(math32.Floor(p.X / h.CellSize)),
		Y: int(math32.Floor(p.Y / h.CellSize)),
		Z: int(math32.Floor(p.Z / h.CellSize)),
	}
}

func (h *SpatialHash) span(box AABB, fn func(CellKey)) {
	lo, hi := h.cellOf(box.Min), h.cellOf(box.Max)
	for x := lo.X; x <= hi.X; x++ {
		for y := lo.Y; y <= hi.Y; y++ {
			for z := lo.Z; z <= hi.Z; z++ {
				fn(CellKey{x, y, z})
			}
		}
	}
}

// Insert adds index to every cell its box touches.
func (h *SpatialHash) Insert(index int, box AABB) {
	h.boxes[index] = box
	h.span(box, func(k CellKey) {
		h.cells[k] = append(h.cells[k], index)
	})
}

func (h *SpatialHash) Clear() {
	for k := range h.cells {
		delete(h.cells, k)
	}
	for k := range h.boxes {
		delete(h.boxes, k)
	}
}

// Query returns every index sharing a cell with box, sorted and unique.
func (h *SpatialHash) Query(box AABB) []int {
	seen := make(map[int]struct{})
	h.span(box, func(k CellKey) {
		for _, idx := range h.cells[k] {
			seen[idx] = struct{}{}
		}
	})
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	slices.Sort(out)
	return out
}

// Pairs returns overlapping pairs among entries that share a cell.
func (h *SpatialHash) Pairs() []Pair {
	seen := make(map[Pair]struct{})
	var pairs []Pair
	for _, bucket := range h.cells {
		for i := 0; i < len(bucket); i++ {
			for j := i + 1; j < len(bucket); j++ {
				p := makePair(bucket[i], bucket[j])
				if _, ok := seen[p]; ok {
					continue
				}
				seen[p] = struct{}{}
				if h.boxes[p.A].Overlaps(h.boxes[p.B]) {
					pairs = append(pairs, p)
				}
			}
		}
	}
	sortPairs(pairs)
	return pairs
}

// SpatialHashPairs builds a throwaway hash over entries.
func SpatialHashPairs(entries []Entry, cellSize float32) []Pair {
	h := NewSpatialHash(cellSize)
	for i, e := range entries {
		h.Insert(i, e.Box)
	}
	return h.Pairs()
}
