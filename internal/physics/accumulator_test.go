package physics

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestAccumulatorFixedSteps(t *testing.T) {
	fts := float32(1.0 / 60.0)
	acc := NewAccumulator(fts)

	if steps := acc.Accumulate(3 * fts); steps != 3 {
		t.Errorf("Expected 3 steps, got %d", steps)
	}
	if acc.AccumulatedTime() > fts*1e-3 {
		t.Errorf("Expected no leftover time, got %f", acc.AccumulatedTime())
	}
}

func TestAccumulatorCarriesRemainder(t *testing.T) {
	fts := float32(1.0 / 60.0)
	acc := NewAccumulator(fts)

	if steps := acc.Accumulate(fts * 0.5); steps != 0 {
		t.Errorf("Expected 0 steps for half a tick, got %d", steps)
	}
	if alpha := acc.InterpolationAlpha(); math32.Abs(alpha-0.5) > 1e-3 {
		t.Errorf("Expected alpha 0.5, got %f", alpha)
	}
	if steps := acc.Accumulate(fts * 0.5); steps != 1 {
		t.Errorf("Expected 1 step once a full tick accumulated, got %d", steps)
	}
}

func TestAccumulatorClampsLongFrames(t *testing.T) {
	acc := NewAccumulator(1.0 / 60.0)
	steps := acc.Accumulate(1.0)
	if steps > MaxStepsPerFrame {
		t.Errorf("Expected at most %d steps, got %d", MaxStepsPerFrame, steps)
	}
	if alpha := acc.InterpolationAlpha(); alpha < 0 || alpha >= 1 {
		t.Errorf("Expected alpha in [0,1), got %f", alpha)
	}
}

func TestAccumulatorClampIncludesRemainder(t *testing.T) {
	fts := float32(1.0 / 60.0)
	acc := NewAccumulator(fts)

	acc.Accumulate(0.5 * fts)
	if steps := acc.Accumulate(7.9 * fts); steps != MaxStepsPerFrame {
		t.Errorf("Expected %d steps, got %d", MaxStepsPerFrame, steps)
	}
	if alpha := acc.InterpolationAlpha(); alpha > 1e-3 {
		t.Errorf("Expected no remainder after an overloaded frame, got alpha %f", alpha)
	}

	// The next ordinary frame starts from an empty accumulator.
	if steps := acc.Accumulate(0.5 * fts); steps != 0 {
		t.Errorf("Expected 0 steps for half a tick, got %d", steps)
	}
	if alpha := acc.InterpolationAlpha(); math32.Abs(alpha-0.5) > 1e-3 {
		t.Errorf("Expected alpha 0.5, got %f", alpha)
	}
}

func TestAccumulatorReset(t *testing.T) {
	acc := NewAccumulator(1.0 / 60.0)
	acc.Accumulate(0.01)
	acc.Reset()
	if acc.AccumulatedTime() != 0 {
		t.Errorf("Expected 0 after Reset, got %f", acc.AccumulatedTime())
	}
	if acc.Accumulate(-1) != 0 {
		t.Error("Negative deltas should not produce steps")
	}
}
