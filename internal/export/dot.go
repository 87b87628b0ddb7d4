package export

import (
	"bytes"
	"fmt"

	"github.com/san-kum/forcelayout/internal/layout"
)

// dotScale converts layout units to graphviz points.
const dotScale = 10.0

// ToDOT emits an undirected graph with every node pinned at its layout
// position, so graphviz renders the layout instead of computing its own.
func ToDOT(snap *layout.Snapshot, g *layout.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, width=0.15, fixedsize=true, style=filled, fillcolor=\"#00d7ff\", fontsize=8];\n")
	buf.WriteString("  edge [color=\"#5f5f5f\"];\n")

	for i, n := range snap.Nodes {
		attrs := fmt.Sprintf("label=%q, pos=\"%g,%g!\"", label(g, i), n.X*dotScale, n.Y*dotScale)
		if g.Pinned(i) {
			attrs += ", fillcolor=\"#ff5f87\""
		}
		fmt.Fprintf(&buf, "  \"%d\" [%s];\n", n.ID, attrs)
	}
	for _, l := range g.Links() {
		if l.A == l.B {
			continue
		}
		fmt.Fprintf(&buf, "  \"%d\" -- \"%d\"", g.ID(l.A), g.ID(l.B))
		if l.Weight != 1 {
			fmt.Fprintf(&buf, " [penwidth=%g]", l.Weight)
		}
		buf.WriteString(";\n")
	}
	buf.WriteString("}\n")
	return buf.String()
}
