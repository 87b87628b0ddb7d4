package quadtree

import "github.com/san-kum/forcelayout/internal/layout"

// Visitor receives one source of repulsion: a single body (index >= 0) or an
// aggregated cell (index -1) at its centre of mass.
type Visitor func(pos layout.Vec2, mass float64, body int)

// Walk traverses the tree on behalf of a query point. An internal cell whose
// width divided by the distance from query to its centre of mass is below
// theta is reported once as a pseudo-body; otherwise its children are
// visited. Leaf bodies are reported individually, skipping the body whose
// index equals self. theta = 0 never accepts a cell, which makes the walk an
// exact pairwise enumeration. Walk does not modify the tree.
func (t *Tree) Walk(query layout.Vec2, self int, theta float64, visit Visitor) {
	if len(t.cells) == 0 {
		return
	}

	var stack [3*MaxDepth + 8]int32
	stack[0] = 0
	sp := 1
	for sp > 0 {
		sp--
		cl := &t.cells[stack[sp]]
		if cl.count == 0 {
			continue
		}

		if cl.child == none {
			for b := cl.body; b != none; b = t.next[b] {
				if int(b) == self {
					continue
				}
				visit(t.pos[b], t.mass[b], int(b))
			}
			continue
		}

		if theta > 0 && cl.count > 1 {
			if 2*cl.half < theta*query.Dist(cl.com) {
				visit(cl.com, cl.mass, -1)
				continue
			}
		}

		for k := cl.child + 3; k >= cl.child; k-- {
			stack[sp] = k
			sp++
		}
	}
}

// Visits counts how many sources Walk reports for query. It is used to
// measure the cost of a theta setting.
func (t *Tree) Visits(query layout.Vec2, self int, theta float64) int {
	n := 0
	t.Walk(query, self, theta, func(layout.Vec2, float64, int) { n++ })
	return n
}
