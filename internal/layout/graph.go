package layout

import "fmt"

// NodeID identifies a node. IDs are chosen by the caller and must be unique
// within a graph.
type NodeID int64

// NodeSpec describes one node of the input graph. A nil Position asks the
// simulator to place the node; a zero Mass means 1.
type NodeSpec struct {
	ID       NodeID
	Label    string
	Position *Vec2
	Mass     float64
	Pinned   bool
}

// EdgeSpec connects two nodes. Weight scales the spring stiffness and is
// taken literally; use Edge for the usual weight of 1.
type EdgeSpec struct {
	Source NodeID
	Target NodeID
	Weight float64
}

// GraphSpec is the immutable graph description handed over by the
// graph-construction collaborator.
type GraphSpec struct {
	Nodes []NodeSpec
	Edges []EdgeSpec
}

func Node(id NodeID) NodeSpec {
	return NodeSpec{ID: id}
}

func NodeAt(id NodeID, x, y float64) NodeSpec {
	return NodeSpec{ID: id, Position: &Vec2{x, y}}
}

func Edge(a, b NodeID) EdgeSpec {
	return EdgeSpec{Source: a, Target: b, Weight: 1}
}

func WeightedEdge(a, b NodeID, w float64) EdgeSpec {
	return EdgeSpec{Source: a, Target: b, Weight: w}
}

// Link is an edge resolved to dense node indices.
type Link struct {
	A, B   int
	Weight float64
}

// Graph is the fixed node and edge set of a simulation. Nodes are addressed
// by dense index in construction order; adjacency is stored in CSR form so
// each node's incident springs can be summed without touching other nodes.
type Graph struct {
	ids     []NodeID
	labels  []string
	index   map[NodeID]int
	mass    []float64
	base    []float64
	pinned  []bool
	initial []Vec2
	placed  []bool
	links   []Link

	adjStart  []int32
	adjNode   []int32
	adjWeight []float64
}

// NewGraph validates spec and resolves it to dense indices. When
// massFromDegree is set each node's mass becomes base*(1+degree).
func NewGraph(spec GraphSpec, massFromDegree bool) (*Graph, error) {
	n := len(spec.Nodes)
	g := &Graph{
		ids:     make([]NodeID, n),
		labels:  make([]string, n),
		index:   make(map[NodeID]int, n),
		mass:    make([]float64, n),
		base:    make([]float64, n),
		pinned:  make([]bool, n),
		initial: make([]Vec2, n),
		placed:  make([]bool, n),
	}

	for i, ns := range spec.Nodes {
		if _, dup := g.index[ns.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate node id %d", ErrInvalidGraph, ns.ID)
		}
		m := ns.Mass
		if m == 0 {
			m = 1
		}
		if !finite(m) || m < 0 {
			return nil, fmt.Errorf("%w: node %d mass %g", ErrInvalidGraph, ns.ID, ns.Mass)
		}
		if ns.Position != nil {
			if !ns.Position.IsFinite() {
				return nil, fmt.Errorf("%w: node %d position (%g, %g)", ErrInvalidGraph, ns.ID, ns.Position.X, ns.Position.Y)
			}
			g.initial[i] = *ns.Position
			g.placed[i] = true
		}
		g.index[ns.ID] = i
		g.ids[i] = ns.ID
		g.labels[i] = ns.Label
		g.mass[i] = m
		g.base[i] = ns.Mass
		g.pinned[i] = ns.Pinned
	}

	degree := make([]int32, n)
	g.links = make([]Link, 0, len(spec.Edges))
	for _, es := range spec.Edges {
		a, ok := g.index[es.Source]
		if !ok {
			return nil, &NodeError{Op: "edge", ID: es.Source, Wrapped: ErrUnknownNode}
		}
		b, ok := g.index[es.Target]
		if !ok {
			return nil, &NodeError{Op: "edge", ID: es.Target, Wrapped: ErrUnknownNode}
		}
		if !finite(es.Weight) || es.Weight < 0 {
			return nil, fmt.Errorf("%w: edge %d-%d weight %g", ErrInvalidGraph, es.Source, es.Target, es.Weight)
		}
		g.links = append(g.links, Link{A: a, B: b, Weight: es.Weight})
		if a != b {
			degree[a]++
			degree[b]++
		}
	}

	g.adjStart = make([]int32, n+1)
	for i := 0; i < n; i++ {
		g.adjStart[i+1] = g.adjStart[i] + degree[i]
	}
	total := g.adjStart[n]
	g.adjNode = make([]int32, total)
	g.adjWeight = make([]float64, total)
	fill := make([]int32, n)
	copy(fill, g.adjStart[:n])
	for _, l := range g.links {
		if l.A == l.B {
			continue
		}
		g.adjNode[fill[l.A]] = int32(l.B)
		g.adjWeight[fill[l.A]] = l.Weight
		fill[l.A]++
		g.adjNode[fill[l.B]] = int32(l.A)
		g.adjWeight[fill[l.B]] = l.Weight
		fill[l.B]++
	}

	if massFromDegree {
		for i := range g.mass {
			g.mass[i] *= 1 + float64(degree[i])
		}
	}
	return g, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.ids) }

func (g *Graph) ID(i int) NodeID { return g.ids[i] }
func (g *Graph) Label(i int) string { return g.labels[i] }
func (g *Graph) Mass(i int) float64 { return g.mass[i] }
func (g *Graph) Pinned(i int) bool { return g.pinned[i] }
func (g *Graph) Links() []Link { return g.links }
func (g *Graph) Degree(i int) int { return int(g.adjStart[i+1] - g.adjStart[i]) }
func (g *Graph) IDs() []NodeID { return g.ids }

// Index resolves a node id to its dense index.
func (g *Graph) Index(id NodeID) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Initial returns the caller-supplied starting position of node i, if any.
func (g *Graph) Initial(i int) (Vec2, bool) {
	return g.initial[i], g.placed[i]
}

// Neighbors returns the indices and spring weights of the edges incident to
// node i. Parallel edges appear once per edge; self loops are omitted. The
// returned slices alias the graph and must not be modified.
func (g *Graph) Neighbors(i int) ([]int32, []float64) {
	s, e := g.adjStart[i], g.adjStart[i+1]
	return g.adjNode[s:e], g.adjWeight[s:e]
}

// TotalMass returns the sum of all node masses.
func (g *Graph) TotalMass() float64 {
	sum := 0.0
	for _, m := range g.mass {
		sum += m
	}
	return sum
}

// Spec rebuilds a GraphSpec from g with positions taken from pos. Masses are
// the ones originally supplied, before any degree scaling, so building the
// result with the same options reproduces g.
func (g *Graph) Spec(pos []Vec2) GraphSpec {
	spec := GraphSpec{
		Nodes: make([]NodeSpec, len(g.ids)),
		Edges: make([]EdgeSpec, len(g.links)),
	}
	for i, id := range g.ids {
		ns := NodeSpec{ID: id, Label: g.labels[i], Mass: g.base[i], Pinned: g.pinned[i]}
		if i < len(pos) {
			p := pos[i]
			ns.Position = &p
		}
		spec.Nodes[i] = ns
	}
	for i, l := range g.links {
		spec.Edges[i] = EdgeSpec{Source: g.ids[l.A], Target: g.ids[l.B], Weight: l.Weight}
	}
	return spec
}
