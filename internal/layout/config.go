package layout

import "math"

const (
	DefaultDeltaTime       = 0.01
	DefaultFreezeThreshold = -1.0
	DefaultTheta           = 0.5
	DefaultRepulsion       = 100.0
	DefaultSpringStiffness = 100.0
	DefaultSpringLength    = 0.0
	DefaultGravity         = 0.0
	DefaultDamping         = 0.9
	DefaultMinDistance     = 0.1
	DefaultPlacementRadius = 60.0
	DefaultSeed            = 1
)

// Config holds the immutable parameters of a tick. It is shared read-only by
// every worker during a tick.
type Config struct {
	// DeltaTime is the integration step. Must be > 0.
	DeltaTime float64
	// FreezeThreshold skips nodes whose net force magnitude is below it.
	// Any negative value disables freezing.
	FreezeThreshold float64
	// Theta is the Barnes-Hut opening criterion (cell width / distance).
	// Zero forces exact pairwise repulsion.
	Theta float64
	// RepulsionConstant scales inverse-square node repulsion.
	RepulsionConstant float64
	// SpringStiffness scales edge attraction (Hooke's law).
	SpringStiffness float64
	// SpringLength is the spring rest length. Zero means edges always pull.
	SpringLength float64
	// Gravity pulls every node toward the origin. Zero disables it.
	Gravity float64
	// Damping multiplies velocity every tick. Must be in (0, 1].
	Damping float64
	// Workers is the size of the worker pool. Zero means one per CPU.
	Workers int
	// MinDistance floors the separation used in repulsion.
	MinDistance float64
	// Seed drives the initial placement of nodes without a position.
	Seed int64
	// PlacementRadius bounds the initial placement disc.
	PlacementRadius float64
	// MassFromDegree grows each node's mass by its base mass per incident edge.
	MassFromDegree bool
}

func DefaultConfig() Config {
	return Config{
		DeltaTime:         DefaultDeltaTime,
		FreezeThreshold:   DefaultFreezeThreshold,
		Theta:             DefaultTheta,
		RepulsionConstant: DefaultRepulsion,
		SpringStiffness:   DefaultSpringStiffness,
		SpringLength:      DefaultSpringLength,
		Gravity:           DefaultGravity,
		Damping:           DefaultDamping,
		MinDistance:       DefaultMinDistance,
		Seed:              DefaultSeed,
		PlacementRadius:   DefaultPlacementRadius,
	}
}

// Validate returns a *ConfigError for the first field outside its range.
func (c Config) Validate() error {
	checks := []struct {
		field  string
		value  float64
		ok     bool
		reason string
	}{
		{"delta_time", c.DeltaTime, finite(c.DeltaTime) && c.DeltaTime > 0, "must be > 0"},
		{"freeze_threshold", c.FreezeThreshold, !math.IsNaN(c.FreezeThreshold), "must not be NaN"},
		{"theta", c.Theta, finite(c.Theta) && c.Theta >= 0, "must be >= 0"},
		{"repulsion_constant", c.RepulsionConstant, finite(c.RepulsionConstant), "must be finite"},
		{"spring_stiffness", c.SpringStiffness, finite(c.SpringStiffness), "must be finite"},
		{"spring_length", c.SpringLength, finite(c.SpringLength) && c.SpringLength >= 0, "must be >= 0"},
		{"gravity", c.Gravity, finite(c.Gravity) && c.Gravity >= 0, "must be >= 0"},
		{"damping", c.Damping, finite(c.Damping) && c.Damping > 0 && c.Damping <= 1, "must be in (0, 1]"},
		{"worker_count", float64(c.Workers), c.Workers >= 0, "must be >= 0"},
		{"min_distance", c.MinDistance, finite(c.MinDistance) && c.MinDistance > 0, "must be > 0"},
		{"placement_radius", c.PlacementRadius, finite(c.PlacementRadius) && c.PlacementRadius > 0, "must be > 0"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return &ConfigError{Field: chk.field, Value: chk.value, Reason: chk.reason}
		}
	}
	return nil
}

// FreezeEnabled reports whether the freeze threshold is a real threshold
// rather than the negative "never freeze" sentinel.
func (c Config) FreezeEnabled() bool {
	return c.FreezeThreshold >= 0
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
