package graphio

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/forcelayout/internal/layout"
)

// Generator builds a graph from a size parameter and a seed.
type Generator func(n int, seed int64) layout.GraphSpec

var Generators = map[string]Generator{
	"ba":   func(n int, seed int64) layout.GraphSpec { return BarabasiAlbert(n, 1, seed) },
	"ba2":  func(n int, seed int64) layout.GraphSpec { return BarabasiAlbert(n, 2, seed) },
	"ring": func(n int, _ int64) layout.GraphSpec { return Ring(n) },
	"grid": func(n int, _ int64) layout.GraphSpec { return Grid(n, n) },
	"star": func(n int, _ int64) layout.GraphSpec { return Star(n) },
}

func ListGenerators() []string {
	names := make([]string, 0, len(Generators))
	for name := range Generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Generate(name string, n int, seed int64) (layout.GraphSpec, error) {
	gen, ok := Generators[name]
	if !ok {
		return layout.GraphSpec{}, fmt.Errorf("unknown generator %q (have %v)", name, ListGenerators())
	}
	if n < 1 {
		return layout.GraphSpec{}, fmt.Errorf("generator size must be >= 1, got %d", n)
	}
	return gen(n, seed), nil
}

func nodes(n int) []layout.NodeSpec {
	out := make([]layout.NodeSpec, n)
	for i := range out {
		out[i] = layout.Node(layout.NodeID(i))
	}
	return out
}

// BarabasiAlbert grows a scale-free graph: each new node attaches to m
// distinct existing nodes chosen with probability proportional to degree.
func BarabasiAlbert(n, m int, seed int64) layout.GraphSpec {
	spec := layout.GraphSpec{Nodes: nodes(n)}
	if n < 2 || m < 1 {
		return spec
	}
	rng := rand.New(rand.NewSource(seed))

	// every edge endpoint appears once, so uniform picks are degree-weighted
	var targets []int
	for v := 1; v < n; v++ {
		k := min(m, v)
		chosen := make(map[int]bool, k)
		for len(chosen) < k {
			var u int
			if len(targets) == 0 {
				u = rng.Intn(v)
			} else {
				u = targets[rng.Intn(len(targets))]
			}
			chosen[u] = true
		}
		picked := make([]int, 0, k)
		for u := range chosen {
			picked = append(picked, u)
		}
		sort.Ints(picked)
		for _, u := range picked {
			spec.Edges = append(spec.Edges, layout.Edge(layout.NodeID(v), layout.NodeID(u)))
			targets = append(targets, u, v)
		}
	}
	return spec
}

func Ring(n int) layout.GraphSpec {
	spec := layout.GraphSpec{Nodes: nodes(n)}
	if n < 2 {
		return spec
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		if n == 2 && i == 1 {
			break
		}
		spec.Edges = append(spec.Edges, layout.Edge(layout.NodeID(i), layout.NodeID(j)))
	}
	return spec
}

func Grid(w, h int) layout.GraphSpec {
	spec := layout.GraphSpec{Nodes: nodes(w * h)}
	id := func(x, y int) layout.NodeID { return layout.NodeID(y*w + x) }
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x+1 < w {
				spec.Edges = append(spec.Edges, layout.Edge(id(x, y), id(x+1, y)))
			}
			if y+1 < h {
				spec.Edges = append(spec.Edges, layout.Edge(id(x, y), id(x, y+1)))
			}
		}
	}
	return spec
}

func Star(n int) layout.GraphSpec {
	spec := layout.GraphSpec{Nodes: nodes(n)}
	for i := 1; i < n; i++ {
		spec.Edges = append(spec.Edges, layout.Edge(0, layout.NodeID(i)))
	}
	return spec
}
