package physics

import (
	"log"
	"sync"
	"time"
)

// MaxStepsPerFrame bounds how much simulated time one frame may request.
const MaxStepsPerFrame = 8

// Accumulator converts variable frame deltas into a count of fixed ticks.
type Accumulator struct {
	FixedTimestep float32

	mu          sync.RWMutex
	accumulated float32
	lastLogTime time.Time
}

func NewAccumulator(fixedTimestep float32) *Accumulator {
	return &Accumulator{FixedTimestep: fixedTimestep}
}

// Accumulate adds a frame delta and returns how many fixed ticks are due.
// The accumulated time is clamped to MaxStepsPerFrame ticks so a stalled
// frame does not trigger a catch-up spiral; the excess is dropped.
func (a *Accumulator) Accumulate(dt float32) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.FixedTimestep <= 0 || dt <= 0 {
		return 0
	}
	a.accumulated += dt
	limit := a.FixedTimestep * MaxStepsPerFrame
	if a.accumulated > limit {
		if time.Since(a.lastLogTime) >= time.Second {
			a.lastLogTime = time.Now()
			log.Printf("Physics: accumulated %.3fs clamped to %.3fs", a.accumulated, limit)
		}
		a.accumulated = limit
	}

	// Rounding slack so n*fts of input yields n ticks.
	eps := a.FixedTimestep * 1e-4
	steps := 0
	for a.accumulated+eps >= a.FixedTimestep && steps < MaxStepsPerFrame {
		a.accumulated -= a.FixedTimestep
		steps++
	}
	if a.accumulated < 0 || a.accumulated+eps >= a.FixedTimestep {
		a.accumulated = 0
	}
	return steps
}

// InterpolationAlpha is how far the current frame sits between the last two
// ticks, in [0, 1).
func (a *Accumulator) InterpolationAlpha() float32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.FixedTimestep <= 0 {
		return 0
	}
	return a.accumulated / a.FixedTimestep
}

func (a *Accumulator) AccumulatedTime() float32 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.accumulated
}

func (a *Accumulator) Reset() {
	a.mu.Lock()
	a.accumulated = 0
	a.mu.Unlock()
}
