package layout

// Position is one entry of the positions() view.
type Position struct {
	ID NodeID  `json:"id" yaml:"id"`
	X  float64 `json:"x" yaml:"x"`
	Y  float64 `json:"y" yaml:"y"`
}

// Snapshot is an immutable copy of the layout after a tick. Consumers may
// keep it indefinitely; the simulator never writes to a published snapshot.
type Snapshot struct {
	Tick       uint64
	Running    bool
	Nodes      []Position
	Velocities []Vec2
	Mass       []float64
	Average    Vec2
	Counts     StepCounts
}

// NewSnapshot copies the state of b into a fresh snapshot.
func NewSnapshot(tick uint64, running bool, ids []NodeID, b *Bodies, counts StepCounts) *Snapshot {
	n := b.Len()
	s := &Snapshot{
		Tick:       tick,
		Running:    running,
		Nodes:      make([]Position, n),
		Velocities: make([]Vec2, n),
		Mass:       make([]float64, n),
		Average:    b.Average(),
		Counts:     counts,
	}
	for i := 0; i < n; i++ {
		s.Nodes[i] = Position{ID: ids[i], X: b.Pos[i].X, Y: b.Pos[i].Y}
	}
	copy(s.Velocities, b.Vel)
	copy(s.Mass, b.Mass)
	return s
}

func (s *Snapshot) Len() int { return len(s.Nodes) }

// Point returns the position of the node at index i as a vector.
func (s *Snapshot) Point(i int) Vec2 {
	return Vec2{s.Nodes[i].X, s.Nodes[i].Y}
}

// Bounds returns the axis-aligned box around all nodes. ok is false for an
// empty snapshot.
func (s *Snapshot) Bounds() (min, max Vec2, ok bool) {
	if len(s.Nodes) == 0 {
		return Vec2{}, Vec2{}, false
	}
	min = s.Point(0)
	max = min
	for _, p := range s.Nodes[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max, true
}

// Positions returns a copy of the ordered (id, x, y) list.
func (s *Snapshot) Positions() []Position {
	out := make([]Position, len(s.Nodes))
	copy(out, s.Nodes)
	return out
}
