package physics

import (
	"rigid3d/internal/collision"

	"golang.org/x/exp/slices"
)

// CollisionEvent reports two colliders starting or stopping to touch.
// EntityA is always the smaller UID.
type CollisionEvent struct {
	EntityA, EntityB uint64
	Contact          collision.Contact // zero for exit events
	Sensor           bool
}

type entityPair struct {
	A, B uint64
}

func makeEntityPair(a, b uint64) entityPair {
	if a > b {
		a, b = b, a
	}
	return entityPair{A: a, B: b}
}

// contactTracker diffs the touching pairs of consecutive ticks.
type contactTracker struct {
	active  map[entityPair]bool
	current map[entityPair]CollisionEvent
}

func newContactTracker() *contactTracker {
	return &contactTracker{
		active:  make(map[entityPair]bool),
		current: make(map[entityPair]CollisionEvent),
	}
}

func (t *contactTracker) begin() {
	t.current = make(map[entityPair]CollisionEvent)
}

func (t *contactTracker) record(c collision.Contact, sensor bool) {
	p := makeEntityPair(c.EntityA, c.EntityB)
	if _, ok := t.current[p]; ok {
		return
	}
	if c.EntityA != p.A {
		c = c.Flipped()
	}
	t.current[p] = CollisionEvent{EntityA: p.A, EntityB: p.B, Contact: c, Sensor: sensor}
}

// forget drops a despawned entity so it produces no exit event.
func (t *contactTracker) forget(entity uint64) {
	for p := range t.active {
		if p.A == entity || p.B == entity {
			delete(t.active, p)
		}
	}
}

// end returns the enter and exit events of this tick, sorted by entity pair
// so dispatch order is deterministic.
func (t *contactTracker) end() (enter, exit []CollisionEvent) {
	for p, ev := range t.current {
		if !t.active[p] {
			enter = append(enter, ev)
		}
	}
	for p := range t.active {
		if _, ok := t.current[p]; !ok {
			exit = append(exit, CollisionEvent{EntityA: p.A, EntityB: p.B})
		}
	}
	t.active = make(map[entityPair]bool, len(t.current))
	for p := range t.current {
		t.active[p] = true
	}
	sortEvents(enter)
	sortEvents(exit)
	return enter, exit
}

func sortEvents(events []CollisionEvent) {
	slices.SortFunc(events, func(a, b CollisionEvent) int {
		switch {
		case a.EntityA != b.EntityA:
			if a.EntityA < b.EntityA {
				return -1
			}
			return 1
		case a.EntityB < b.EntityB:
			return -1
		case a.EntityB > b.EntityB:
			return 1
		}
		return 0
	})
}
