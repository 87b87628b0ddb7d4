package integrators

import "github.com/san-kum/forcelayout/internal/layout"

// Damped is a semi-implicit Euler step with velocity damping:
//
//	v' = (v + F/m*dt) * damping
//	p' = p + v'*dt
//
// Nodes that are pinned or were dragged since the last tick keep their
// position and lose their velocity. When freezing is enabled, nodes whose
// net force magnitude is below the threshold are left untouched.
type Damped struct{}

func NewDamped() *Damped {
	return &Damped{}
}

func (d *Damped) Name() string { return "damped-euler" }

func (d *Damped) Integrate(cfg layout.Config, b *layout.Bodies, start, end int) layout.StepCounts {
	var c layout.StepCounts
	dt := cfg.DeltaTime
	freeze := cfg.FreezeEnabled()
	thr2 := cfg.FreezeThreshold * cfg.FreezeThreshold

	for i := start; i < end; i++ {
		if b.Held[i] || b.Pinned[i] {
			b.Vel[i] = layout.Vec2{}
			b.Held[i] = false
			c.Held++
			continue
		}

		f := b.Force[i]
		if freeze && f.Len2() < thr2 {
			c.Frozen++
			continue
		}

		v := b.Vel[i].Add(f.Scale(dt / b.Mass[i])).Scale(cfg.Damping)
		p := b.Pos[i].Add(v.Scale(dt))
		if !v.IsFinite() || !p.IsFinite() {
			b.Vel[i] = layout.Vec2{}
			c.Frozen++
			continue
		}
		b.Vel[i] = v
		b.Pos[i] = p
		c.Moved++
	}
	return c
}
