// Package quadtree implements the Barnes-Hut spatial tree used for
// approximate repulsion.
//
// Cells live in a single arena slice and refer to their children by index.
// The four children of a cell are allocated contiguously, so a cell stores
// only the index of its first child. Quadrants are numbered
//
//	0: x <  cx, y <  cy
//	1: x >= cx, y <  cy
//	2: x <  cx, y >= cy
//	3: x >= cx, y >= cy
//
// A Tree is rebuilt from scratch every tick and is read-only afterwards, so
// any number of goroutines may call Walk concurrently once Build returns.
package quadtree

import (
	"math"

	"github.com/san-kum/forcelayout/internal/layout"
)

// MaxDepth bounds subdivision. Bodies that still share a leaf at this depth
// are chained into a bucket instead of splitting further.
const MaxDepth = 48

const none int32 = -1

type cell struct {
	center layout.Vec2
	half   float64
	com    layout.Vec2
	mass   float64
	child  int32
	body   int32
	count  int32
}

// Cell is a read-only view of one tree cell.
type Cell struct {
	Center layout.Vec2
	Half   float64
	COM    layout.Vec2
	Mass   float64
	Bodies int
	Leaf   bool
}

// Tree is a reusable arena quadtree.
type Tree struct {
	cells []cell
	next  []int32
	pos   []layout.Vec2
	mass  []float64
	n     int
}

func New() *Tree {
	return &Tree{}
}

// Build discards the previous contents and inserts every body with a finite
// position. pos and mass are retained (not copied) until the next Build and
// must not be modified while the tree is in use.
func (t *Tree) Build(pos []layout.Vec2, mass []float64) {
	t.cells = t.cells[:0]
	t.pos = pos
	t.mass = mass
	t.n = 0
	if cap(t.next) < len(pos) {
		t.next = make([]int32, len(pos))
	}
	t.next = t.next[:len(pos)]
	for i := range t.next {
		t.next[i] = none
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pos {
		if !p.IsFinite() {
			continue
		}
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if minX > maxX {
		return
	}

	// halved before subtracting so bounds near ±MaxFloat64 do not overflow
	half := math.Max(maxX/2-minX/2, maxY/2-minY/2)
	pad := math.Max(1e-3, 0.02*half)
	t.cells = append(t.cells, cell{
		center: layout.Vec2{X: minX/2 + maxX/2, Y: minY/2 + maxY/2},
		half:   half + pad,
		child:  none,
		body:   none,
	})

	for i, p := range pos {
		if !p.IsFinite() {
			continue
		}
		t.insert(int32(i), p)
		t.n++
	}
	t.aggregate()
}

func (t *Tree) insert(b int32, p layout.Vec2) {
	c := int32(0)
	for depth := 0; ; depth++ {
		cl := &t.cells[c]
		if cl.child != none {
			c = cl.child + quadrant(cl.center, p)
			continue
		}
		if cl.body == none {
			cl.body = b
			return
		}
		if depth >= MaxDepth {
			t.next[b] = cl.body
			cl.body = b
			return
		}

		old := cl.body
		cl.body = none
		first := t.split(c)
		center := t.cells[c].center
		t.cells[first+quadrant(center, t.pos[old])].body = old
		c = first + quadrant(center, p)
	}
}

// split allocates the four children of c and returns the index of the first.
func (t *Tree) split(c int32) int32 {
	parent := t.cells[c]
	q := parent.half / 2
	first := int32(len(t.cells))
	for k := 0; k < 4; k++ {
		off := layout.Vec2{X: -q, Y: -q}
		if k&1 != 0 {
			off.X = q
		}
		if k&2 != 0 {
			off.Y = q
		}
		t.cells = append(t.cells, cell{
			center: parent.center.Add(off),
			half:   q,
			child:  none,
			body:   none,
		})
	}
	t.cells[c].child = first
	return first
}

// aggregate fills mass and centre of mass bottom-up. Children always sit
// after their parent in the arena, so a reverse sweep visits them first.
func (t *Tree) aggregate() {
	for c := len(t.cells) - 1; c >= 0; c-- {
		cl := &t.cells[c]
		var m float64
		var wsum layout.Vec2
		var count int32
		if cl.child == none {
			for b := cl.body; b != none; b = t.next[b] {
				m += t.mass[b]
				wsum = wsum.Add(t.pos[b].Scale(t.mass[b]))
				count++
			}
		} else {
			for k := cl.child; k < cl.child+4; k++ {
				ch := &t.cells[k]
				m += ch.mass
				wsum = wsum.Add(ch.com.Scale(ch.mass))
				count += ch.count
			}
		}
		cl.mass = m
		cl.count = count
		if m > 0 {
			cl.com = wsum.Scale(1 / m)
		} else {
			cl.com = cl.center
		}
	}
}

func quadrant(center, p layout.Vec2) int32 {
	var q int32
	if p.X >= center.X {
		q |= 1
	}
	if p.Y >= center.Y {
		q |= 2
	}
	return q
}

// Len returns the number of bodies inserted by the last Build.
func (t *Tree) Len() int { return t.n }

// Cells returns the number of allocated cells.
func (t *Tree) Cells() int { return len(t.cells) }

// Root returns the root cell. An empty tree has a zero-mass root.
func (t *Tree) Root() Cell {
	if len(t.cells) == 0 {
		return Cell{Leaf: true}
	}
	return t.view(0)
}

// Bounds returns the centre and half-width of the root square.
func (t *Tree) Bounds() (layout.Vec2, float64) {
	if len(t.cells) == 0 {
		return layout.Vec2{}, 0
	}
	return t.cells[0].center, t.cells[0].half
}

// Depth returns the depth of the deepest cell.
func (t *Tree) Depth() int {
	if len(t.cells) == 0 {
		return 0
	}
	deepest := 0
	var rec func(c int32, d int)
	rec = func(c int32, d int) {
		if d > deepest {
			deepest = d
		}
		if ch := t.cells[c].child; ch != none {
			for k := ch; k < ch+4; k++ {
				rec(k, d+1)
			}
		}
	}
	rec(0, 0)
	return deepest
}

func (t *Tree) view(c int32) Cell {
	cl := t.cells[c]
	return Cell{
		Center: cl.center,
		Half:   cl.half,
		COM:    cl.com,
		Mass:   cl.mass,
		Bodies: int(cl.count),
		Leaf:   cl.child == none,
	}
}
