package layout

// Bodies is the mutable per-node physics state, laid out as parallel slices
// indexed by dense node index. Workers own disjoint index ranges.
type Bodies struct {
	Pos    []Vec2
	Vel    []Vec2
	Force  []Vec2
	Mass   []float64
	Pinned []bool
	// Held marks nodes dragged since the last tick. The integrator leaves
	// their position alone for one tick and clears the flag.
	Held []bool
}

func NewBodies(n int) *Bodies {
	return &Bodies{
		Pos:    make([]Vec2, n),
		Vel:    make([]Vec2, n),
		Force:  make([]Vec2, n),
		Mass:   make([]float64, n),
		Pinned: make([]bool, n),
		Held:   make([]bool, n),
	}
}

func (b *Bodies) Len() int { return len(b.Pos) }

// Average returns the mean position, or the origin for an empty set.
func (b *Bodies) Average() Vec2 {
	if len(b.Pos) == 0 {
		return Vec2{}
	}
	var sum Vec2
	for _, p := range b.Pos {
		sum = sum.Add(p)
	}
	return sum.Scale(1 / float64(len(b.Pos)))
}

// StepCounts tallies what the integrator did to each node during a tick.
type StepCounts struct {
	Moved  int
	Frozen int
	Held   int
}

func (c StepCounts) Add(o StepCounts) StepCounts {
	return StepCounts{c.Moved + o.Moved, c.Frozen + o.Frozen, c.Held + o.Held}
}

// Integrator advances bodies[start:end] by one tick using the forces already
// stored in b.Force.
type Integrator interface {
	Name() string
	Integrate(cfg Config, b *Bodies, start, end int) StepCounts
}
