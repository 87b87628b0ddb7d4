// Package forces computes the per-node net force of a layout tick:
// Barnes-Hut repulsion over a quadtree, Hooke springs along edges and an
// optional pull toward the origin.
//
// Every method reads shared state only and writes nothing but its return
// value (or, for Compute, the force slots of its own index range), so
// disjoint ranges may be evaluated concurrently after Prepare.
package forces

import (
	"math"

	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/quadtree"
)

type Model struct {
	cfg   layout.Config
	graph *layout.Graph
	tree  *quadtree.Tree
}

func NewModel(cfg layout.Config, g *layout.Graph) *Model {
	return &Model{cfg: cfg, graph: g, tree: quadtree.New()}
}

func (m *Model) Tree() *quadtree.Tree { return m.tree }

// Prepare rebuilds the tree from the current positions. It must complete
// before any call to Repulsion, Net or Compute for the tick.
func (m *Model) Prepare(b *layout.Bodies) {
	m.tree.Build(b.Pos, b.Mass)
}

// Repulsion returns the inverse-square push on node i from every other body,
// approximating distant groups by their centre of mass.
func (m *Model) Repulsion(b *layout.Bodies, i int) layout.Vec2 {
	k := m.cfg.RepulsionConstant
	if k == 0 {
		return layout.Vec2{}
	}
	p := b.Pos[i]
	mi := b.Mass[i]
	var f layout.Vec2
	m.tree.Walk(p, i, m.cfg.Theta, func(q layout.Vec2, mq float64, body int) {
		f = f.Add(repel(p, q, i, body, k*mi*mq, m.cfg.MinDistance))
	})
	return f
}

// Springs returns the sum of spring forces from the edges incident to i.
func (m *Model) Springs(b *layout.Bodies, i int) layout.Vec2 {
	if m.cfg.SpringStiffness == 0 {
		return layout.Vec2{}
	}
	var f layout.Vec2
	nodes, weights := m.graph.Neighbors(i)
	for k, j := range nodes {
		f = f.Add(spring(m.cfg, b.Pos[i], b.Pos[j], weights[k], i, int(j)))
	}
	return f
}

// Gravity pulls node i toward the origin proportionally to its distance.
func (m *Model) Gravity(b *layout.Bodies, i int) layout.Vec2 {
	if m.cfg.Gravity == 0 || !b.Pos[i].IsFinite() {
		return layout.Vec2{}
	}
	return b.Pos[i].Scale(-m.cfg.Gravity * b.Mass[i])
}

// Net is the total force on node i. A sum that overflows is reported as
// zero.
func (m *Model) Net(b *layout.Bodies, i int) layout.Vec2 {
	f := m.Repulsion(b, i).Add(m.Springs(b, i)).Add(m.Gravity(b, i))
	if !f.IsFinite() {
		return layout.Vec2{}
	}
	return f
}

// Compute stores the net force of every node in [start, end) into b.Force.
func (m *Model) Compute(b *layout.Bodies, start, end int) {
	for i := start; i < end; i++ {
		b.Force[i] = m.Net(b, i)
	}
}

// Direct computes exact pairwise repulsion for every node in O(n²).
func Direct(cfg layout.Config, pos []layout.Vec2, mass []float64) []layout.Vec2 {
	out := make([]layout.Vec2, len(pos))
	if cfg.RepulsionConstant == 0 {
		return out
	}
	for i := range pos {
		if !pos[i].IsFinite() {
			continue
		}
		var f layout.Vec2
		for j := range pos {
			if i == j || !pos[j].IsFinite() {
				continue
			}
			f = f.Add(repel(pos[i], pos[j], i, j, cfg.RepulsionConstant*mass[i]*mass[j], cfg.MinDistance))
		}
		out[i] = f
	}
	return out
}

func repel(p, q layout.Vec2, i, j int, strength, minDist float64) layout.Vec2 {
	d := p.Sub(q)
	dist := d.Len()
	if math.IsInf(dist, 0) || math.IsNaN(dist) {
		return layout.Vec2{}
	}
	var dir layout.Vec2
	if dist == 0 {
		dir = separation(i, j)
	} else {
		dir = d.Scale(1 / dist)
	}
	if dist < minDist {
		dist = minDist
	}
	return dir.Scale(strength / (dist * dist))
}

// spring is the force on endpoint a (index i) from an edge to b (index j) of
// weight w: stiffness*w*(distance-rest) along the edge, positive toward b.
func spring(cfg layout.Config, a, b layout.Vec2, w float64, i, j int) layout.Vec2 {
	d := b.Sub(a)
	dist := d.Len()
	if math.IsInf(dist, 0) || math.IsNaN(dist) {
		return layout.Vec2{}
	}
	mag := cfg.SpringStiffness * w * (dist - cfg.SpringLength)
	if dist == 0 {
		if mag == 0 {
			return layout.Vec2{}
		}
		// toward b is the opposite of "i away from j"
		return separation(i, j).Scale(-mag)
	}
	return d.Scale(mag / dist)
}

const goldenAngle = 2.399963229728653

// separation returns a unit vector pushing i away from j when the two sit
// on the same point. separation(i, j) == -separation(j, i).
func separation(i, j int) layout.Vec2 {
	lo, hi := i, j
	sign := 1.0
	if lo > hi {
		lo, hi = hi, lo
		sign = -1
	}
	a := goldenAngle * float64(lo*7919+hi)
	return layout.Vec2{X: sign * math.Cos(a), Y: sign * math.Sin(a)}
}
