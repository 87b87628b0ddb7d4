package metrics

import (
	"math"

	"github.com/san-kum/forcelayout/internal/layout"
)

// MeanSpeed averages node speed over every observed tick.
type MeanSpeed struct {
	name    string
	sum     float64
	samples int
}

func NewMeanSpeed() *MeanSpeed {
	return &MeanSpeed{name: "mean_speed"}
}

func (m *MeanSpeed) Name() string { return m.name }

func (m *MeanSpeed) Observe(s *layout.Snapshot) {
	if len(s.Velocities) == 0 {
		return
	}
	total := 0.0
	for _, v := range s.Velocities {
		total += v.Len()
	}
	m.sum += total / float64(len(s.Velocities))
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanSpeed) Reset() {
	m.sum = 0
	m.samples = 0
}

// FrozenFraction is the share of nodes the integrator skipped on the latest
// tick because their force was under the freeze threshold.
type FrozenFraction struct {
	name  string
	value float64
}

func NewFrozenFraction() *FrozenFraction {
	return &FrozenFraction{name: "frozen_fraction"}
}

func (f *FrozenFraction) Name() string { return f.name }

func (f *FrozenFraction) Observe(s *layout.Snapshot) {
	if s.Len() == 0 {
		f.value = 0
		return
	}
	f.value = float64(s.Counts.Frozen) / float64(s.Len())
}

func (f *FrozenFraction) Value() float64 { return f.value }
func (f *FrozenFraction) Reset() { f.value = 0 }

// Spread is the largest distance of any node from the mean position.
type Spread struct {
	name  string
	value float64
}

func NewSpread() *Spread {
	return &Spread{name: "spread"}
}

func (sp *Spread) Name() string { return sp.name }

func (sp *Spread) Observe(s *layout.Snapshot) {
	r := 0.0
	for i := range s.Nodes {
		r = math.Max(r, s.Point(i).Dist(s.Average))
	}
	sp.value = r
}

func (sp *Spread) Value() float64 { return sp.value }
func (sp *Spread) Reset() { sp.value = 0 }
