package metrics

import "github.com/san-kum/forcelayout/internal/layout"

// Metric reduces a stream of snapshots to a single number.
type Metric interface {
	Name() string
	Observe(s *layout.Snapshot)
	Value() float64
	Reset()
}

// Defaults returns the metrics reported by the CLI.
func Defaults() []Metric {
	return []Metric{
		NewKineticEnergy(),
		NewSettling(),
		NewMeanSpeed(),
		NewFrozenFraction(),
		NewSpread(),
	}
}
