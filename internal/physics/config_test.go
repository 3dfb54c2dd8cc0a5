package physics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate, got %v", err)
	}
	s := cfg.SolverParams()
	if s.Iterations != 10 || s.Beta != 100000 || s.Alpha != 0.95 || s.Gamma != 1 || s.KStart != 1000 {
		t.Errorf("Unexpected solver defaults: %+v", s)
	}
	if s.Gravity.Y != -9.81 {
		t.Errorf("Expected gravity -9.81, got %f", s.Gravity.Y)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.yaml")
	data := "velocity_iterations: 20\nsolver:\n  beta: 5000\nbroad_phase: hash\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.VelocityIterations != 20 {
		t.Errorf("Expected 20 iterations, got %d", cfg.VelocityIterations)
	}
	if cfg.Solver.Beta != 5000 {
		t.Errorf("Expected beta 5000, got %f", cfg.Solver.Beta)
	}
	if cfg.Solver.Alpha != 0.95 {
		t.Errorf("Expected alpha to keep its default, got %f", cfg.Solver.Alpha)
	}
	if cfg.BroadPhase != BroadPhaseHash {
		t.Errorf("Expected hash broad phase, got %q", cfg.BroadPhase)
	}
	if cfg.FixedTimestep != DefaultConfig().FixedTimestep {
		t.Errorf("Expected default timestep, got %f", cfg.FixedTimestep)
	}
}

func TestLoadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "physics.json")
	data := `{"gravity": [0, -1.62, 0], "contact_slop": 0.01}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Gravity[1] != -1.62 || cfg.ContactSlop != 0.01 {
		t.Errorf("Expected moon gravity and slop 0.01, got %v %f", cfg.Gravity, cfg.ContactSlop)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("broad_phase: octree\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfig(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected an error for a missing file")
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"timestep":   func(c *Config) { c.FixedTimestep = 0 },
		"iterations": func(c *Config) { c.VelocityIterations = 0 },
		"alpha":      func(c *Config) { c.Solver.Alpha = 1.5 },
		"gamma":      func(c *Config) { c.Solver.Gamma = 0 },
		"k_start":    func(c *Config) { c.Solver.KStart = -1 },
		"slop":       func(c *Config) { c.ContactSlop = -0.1 },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", name, err)
		}
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.PositionIterations = 7
	cfg.GPUBroadPhase = true
	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded != cfg {
		t.Errorf("Expected %+v, got %+v", cfg, loaded)
	}
}
