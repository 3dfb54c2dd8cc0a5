package physics

import (
	"errors"
	"fmt"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

// Vec3 is a vector as it appears in config files: [x, y, z].
type Vec3 [3]float32

func (v Vec3) Vector() rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

// SolverConfig tunes the AVBD iteration. Iterations and Gravity are filled
// from the top-level config by Config.SolverParams.
type SolverConfig struct {
	Iterations int        `yaml:"-" json:"-"`
	Beta       float32    `yaml:"beta" json:"beta"`       // stiffness growth per unit violation
	Alpha      float32    `yaml:"alpha" json:"alpha"`     // warm-start decay between ticks
	Gamma      float32    `yaml:"gamma" json:"gamma"`     // relaxation applied to each block update
	KStart     float32    `yaml:"k_start" json:"k_start"` // initial stiffness of new contacts
	Gravity    rl.Vector3 `yaml:"-" json:"-"`
}

// Config is the physics world configuration.
type Config struct {
	Gravity                Vec3         `yaml:"gravity" json:"gravity"`
	FixedTimestep          float32      `yaml:"fixed_timestep" json:"fixed_timestep"`
	VelocityIterations     int          `yaml:"velocity_iterations" json:"velocity_iterations"`
	PositionIterations     int          `yaml:"position_iterations" json:"position_iterations"`
	MaxLinearVelocity      float32      `yaml:"max_linear_velocity" json:"max_linear_velocity"`
	MaxAngularVelocity     float32      `yaml:"max_angular_velocity" json:"max_angular_velocity"`
	LinearDamping          float32      `yaml:"linear_damping" json:"linear_damping"`
	AngularDamping         float32      `yaml:"angular_damping" json:"angular_damping"`
	RestVelocityThreshold  float32      `yaml:"rest_velocity_threshold" json:"rest_velocity_threshold"`
	RestitutionThreshold   float32      `yaml:"restitution_threshold" json:"restitution_threshold"`
	ContactSlop            float32      `yaml:"contact_slop" json:"contact_slop"`
	PositionCorrectionRate float32      `yaml:"position_correction_rate" json:"position_correction_rate"`
	ConvergenceTolerance   float32      `yaml:"convergence_tolerance" json:"convergence_tolerance"`
	Solver                 SolverConfig `yaml:"solver" json:"solver"`
	GPUBroadPhase          bool         `yaml:"gpu_broad_phase" json:"gpu_broad_phase"`
	BroadPhase             string       `yaml:"broad_phase" json:"broad_phase"`
	HashCellSize           float32      `yaml:"hash_cell_size" json:"hash_cell_size"`
}

// Broad phase methods accepted by Config.BroadPhase.
const (
	BroadPhaseSAP   = "sap"
	BroadPhaseHash  = "hash"
	BroadPhaseBrute = "brute"
)

func DefaultConfig() Config {
	return Config{
		Gravity:                Vec3{0, -9.81, 0},
		FixedTimestep:          1.0 / 60.0,
		VelocityIterations:     10,
		PositionIterations:     4,
		MaxLinearVelocity:      100,
		MaxAngularVelocity:     100,
		LinearDamping:          0.01,
		AngularDamping:         0.01,
		RestVelocityThreshold:  0.05,
		RestitutionThreshold:   1.0,
		ContactSlop:            0.004,
		PositionCorrectionRate: 0.8,
		ConvergenceTolerance:   1e-4,
		Solver: SolverConfig{
			Beta:   100000,
			Alpha:  0.95,
			Gamma:  1.0,
			KStart: 1000,
		},
		BroadPhase:   BroadPhaseSAP,
		HashCellSize: 5,
	}
}

// SolverParams returns the solver settings with iteration count and gravity
// filled in.
func (c Config) SolverParams() SolverConfig {
	s := c.Solver
	s.Iterations = c.VelocityIterations
	s.Gravity = c.Gravity.Vector()
	return s
}

var ErrInvalidConfig = errors.New("invalid physics config")

// Validate reports the first setting the solver cannot run with.
func (c Config) Validate() error {
	switch {
	case c.FixedTimestep <= 0:
		return fmt.Errorf("%w: fixed_timestep must be positive, got %g", ErrInvalidConfig, c.FixedTimestep)
	case c.VelocityIterations < 1:
		return fmt.Errorf("%w: velocity_iterations must be at least 1, got %d", ErrInvalidConfig, c.VelocityIterations)
	case c.PositionIterations < 0:
		return fmt.Errorf("%w: position_iterations must not be negative, got %d", ErrInvalidConfig, c.PositionIterations)
	case c.Solver.Alpha < 0 || c.Solver.Alpha > 1:
		return fmt.Errorf("%w: solver.alpha must be in [0,1], got %g", ErrInvalidConfig, c.Solver.Alpha)
	case c.Solver.Gamma <= 0:
		return fmt.Errorf("%w: solver.gamma must be positive, got %g", ErrInvalidConfig, c.Solver.Gamma)
	case c.Solver.KStart <= 0:
		return fmt.Errorf("%w: solver.k_start must be positive, got %g", ErrInvalidConfig, c.Solver.KStart)
	case c.ContactSlop < 0:
		return fmt.Errorf("%w: contact_slop must not be negative, got %g", ErrInvalidConfig, c.ContactSlop)
	}
	switch c.BroadPhase {
	case BroadPhaseSAP, BroadPhaseHash, BroadPhaseBrute:
	default:
		return fmt.Errorf("%w: unknown broad_phase %q", ErrInvalidConfig, c.BroadPhase)
	}
	return nil
}

// LoadConfig reads a YAML (or JSON) config. Keys missing from the file keep
// their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read physics config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse physics config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML.
func SaveConfig(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode physics config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write physics config: %w", err)
	}
	return nil
}
