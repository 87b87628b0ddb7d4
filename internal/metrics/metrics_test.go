package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/forcelayout/internal/layout"
)

func snapshot(tick uint64, frozen int, vel ...layout.Vec2) *layout.Snapshot {
	b := layout.NewBodies(len(vel))
	for i := range vel {
		b.Pos[i] = layout.Vec2{X: float64(i)}
		b.Vel[i] = vel[i]
		b.Mass[i] = 2
	}
	ids := make([]layout.NodeID, len(vel))
	for i := range ids {
		ids[i] = layout.NodeID(i)
	}
	return layout.NewSnapshot(tick, true, ids, b, layout.StepCounts{Frozen: frozen})
}

func TestKineticEnergy(t *testing.T) {
	m := NewKineticEnergy()
	m.Observe(snapshot(1, 0, layout.Vec2{X: 3, Y: 4}, layout.Vec2{X: 1}))
	// 0.5*2*25 + 0.5*2*1
	if m.Value() != 26 {
		t.Errorf("expected 26, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestSettling(t *testing.T) {
	m := NewSettling()
	m.Observe(snapshot(1, 0, layout.Vec2{X: 2}))
	m.Observe(snapshot(2, 0, layout.Vec2{X: 1}))
	if math.Abs(m.Value()-0.25) > 1e-12 {
		t.Errorf("expected 0.25, got %f", m.Value())
	}
}

func TestMeanSpeedAndFrozen(t *testing.T) {
	speed := NewMeanSpeed()
	speed.Observe(snapshot(1, 0, layout.Vec2{X: 2}, layout.Vec2{Y: 4}))
	speed.Observe(snapshot(2, 0, layout.Vec2{}, layout.Vec2{}))
	if speed.Value() != 1.5 {
		t.Errorf("expected mean speed 1.5, got %f", speed.Value())
	}

	frozen := NewFrozenFraction()
	frozen.Observe(snapshot(1, 1, layout.Vec2{}, layout.Vec2{}, layout.Vec2{}, layout.Vec2{}))
	if frozen.Value() != 0.25 {
		t.Errorf("expected 0.25, got %f", frozen.Value())
	}
}

func TestSpread(t *testing.T) {
	m := NewSpread()
	m.Observe(snapshot(1, 0, layout.Vec2{}, layout.Vec2{}, layout.Vec2{}))
	// nodes at x=0,1,2, mean 1
	if m.Value() != 1 {
		t.Errorf("expected spread 1, got %f", m.Value())
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(2, NewKineticEnergy(), NewFrozenFraction())
	r.OnTick(snapshot(0, 0, layout.Vec2{X: 1}))
	r.OnTick(snapshot(1, 0, layout.Vec2{X: 1}))
	r.OnTick(snapshot(1, 0, layout.Vec2{X: 5}))
	r.OnTick(snapshot(2, 0, layout.Vec2{X: 2}))
	r.OnTick(snapshot(3, 1, layout.Vec2{X: 3}))

	ke := r.Series("kinetic_energy")
	if len(ke) != 2 || ke[0] != 4 || ke[1] != 9 {
		t.Errorf("unexpected series %v", ke)
	}
	if r.Values()["frozen_fraction"] != 1 {
		t.Errorf("unexpected values %v", r.Values())
	}
	if names := r.Names(); len(names) != 2 || names[0] != "kinetic_energy" {
		t.Errorf("unexpected names %v", names)
	}

	r.Reset()
	if len(r.Series("kinetic_energy")) != 0 {
		t.Error("expected empty series after reset")
	}
}

func TestDefaults(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Defaults() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 5 {
		t.Errorf("expected 5 metrics, got %d", len(seen))
	}
}
