package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/forcelayout/internal/layout"
)

func bodies(n int) *layout.Bodies {
	b := layout.NewBodies(n)
	for i := range b.Mass {
		b.Mass[i] = 1
	}
	return b
}

func TestDampedStep(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.DeltaTime = 0.5
	cfg.Damping = 0.5

	b := bodies(1)
	b.Pos[0] = layout.Vec2{X: 1, Y: 1}
	b.Vel[0] = layout.Vec2{X: 2, Y: 0}
	b.Force[0] = layout.Vec2{X: 0, Y: 4}
	b.Mass[0] = 2

	c := NewDamped().Integrate(cfg, b, 0, 1)
	if c.Moved != 1 {
		t.Fatalf("expected one moved node, got %+v", c)
	}
	// v = ((2,0) + (0,4)/2*0.5) * 0.5 = (1, 0.5)
	if b.Vel[0] != (layout.Vec2{X: 1, Y: 0.5}) {
		t.Errorf("unexpected velocity %v", b.Vel[0])
	}
	if b.Pos[0] != (layout.Vec2{X: 1.5, Y: 1.25}) {
		t.Errorf("unexpected position %v", b.Pos[0])
	}
}

func TestFreezePolicy(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		moved     int
		frozen    int
	}{
		{"negative disables", -1, 3, 0},
		{"zero never freezes", 0, 3, 0},
		{"between", 1.5, 2, 1},
		{"huge freezes all", 1e12, 0, 3},
	}

	for _, tt := range tests {
		cfg := layout.DefaultConfig()
		cfg.FreezeThreshold = tt.threshold
		b := bodies(3)
		b.Force[0] = layout.Vec2{X: 1}
		b.Force[1] = layout.Vec2{X: 2}
		b.Force[2] = layout.Vec2{Y: -3}
		before := append([]layout.Vec2(nil), b.Pos...)

		c := NewDamped().Integrate(cfg, b, 0, 3)
		if c.Moved != tt.moved || c.Frozen != tt.frozen {
			t.Errorf("%s: got %+v", tt.name, c)
		}
		changed := 0
		for i := range before {
			if b.Pos[i] != before[i] {
				changed++
			}
		}
		if changed != tt.moved {
			t.Errorf("%s: %d positions changed, want %d", tt.name, changed, tt.moved)
		}
	}
}

func TestHeldAndPinned(t *testing.T) {
	cfg := layout.DefaultConfig()
	b := bodies(2)
	b.Pos[0] = layout.Vec2{X: 7, Y: 8}
	b.Pos[1] = layout.Vec2{X: -1, Y: 2}
	b.Vel[0] = layout.Vec2{X: 3}
	b.Vel[1] = layout.Vec2{Y: 3}
	b.Force[0] = layout.Vec2{X: 100}
	b.Force[1] = layout.Vec2{X: 100}
	b.Held[0] = true
	b.Pinned[1] = true

	integ := NewDamped()
	c := integ.Integrate(cfg, b, 0, 2)
	if c.Held != 2 {
		t.Errorf("expected 2 held nodes, got %+v", c)
	}
	if b.Pos[0] != (layout.Vec2{X: 7, Y: 8}) || b.Vel[0] != (layout.Vec2{}) {
		t.Errorf("held node moved: %v %v", b.Pos[0], b.Vel[0])
	}
	if b.Held[0] {
		t.Error("hold should last one tick")
	}

	integ.Integrate(cfg, b, 0, 2)
	if b.Pos[0] == (layout.Vec2{X: 7, Y: 8}) {
		t.Error("released node should move on the following tick")
	}
	if b.Pos[1] != (layout.Vec2{X: -1, Y: 2}) {
		t.Errorf("pinned node moved to %v", b.Pos[1])
	}
}

func TestConservationWithoutForce(t *testing.T) {
	cfg := layout.DefaultConfig()
	cfg.Damping = 1
	b := bodies(1)
	b.Pos[0] = layout.Vec2{X: 4, Y: -2}

	integ := NewDamped()
	for i := 0; i < 1000; i++ {
		integ.Integrate(cfg, b, 0, 1)
	}
	if b.Pos[0] != (layout.Vec2{X: 4, Y: -2}) || b.Vel[0] != (layout.Vec2{}) {
		t.Errorf("state drifted: %v %v", b.Pos[0], b.Vel[0])
	}
}

func TestNonFiniteGuard(t *testing.T) {
	cfg := layout.DefaultConfig()
	b := bodies(1)
	b.Pos[0] = layout.Vec2{X: 1, Y: 1}
	b.Vel[0] = layout.Vec2{X: 1}
	b.Force[0] = layout.Vec2{X: math.Inf(1)}

	NewDamped().Integrate(cfg, b, 0, 1)
	if b.Pos[0] != (layout.Vec2{X: 1, Y: 1}) {
		t.Errorf("position changed on non-finite step: %v", b.Pos[0])
	}
	if b.Vel[0] != (layout.Vec2{}) {
		t.Errorf("velocity should be reset, got %v", b.Vel[0])
	}
}

func TestRangeIsolation(t *testing.T) {
	cfg := layout.DefaultConfig()
	b := bodies(4)
	for i := range b.Force {
		b.Force[i] = layout.Vec2{X: 1}
	}
	NewDamped().Integrate(cfg, b, 1, 3)
	if b.Pos[0] != (layout.Vec2{}) || b.Pos[3] != (layout.Vec2{}) {
		t.Error("integrator touched nodes outside its range")
	}
	if b.Pos[1] == (layout.Vec2{}) || b.Pos[2] == (layout.Vec2{}) {
		t.Error("integrator skipped nodes inside its range")
	}
}
