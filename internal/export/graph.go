package export

import (
	"io"

	"github.com/san-kum/forcelayout/internal/graphio"
	"github.com/san-kum/forcelayout/internal/layout"
)

// WriteGraph writes g as a YAML graph file with every node placed at its
// position in snap. Loading the file starts a new layout where snap ended.
func WriteGraph(w io.Writer, snap *layout.Snapshot, g *layout.Graph) error {
	pos := make([]layout.Vec2, snap.Len())
	for i := range pos {
		pos[i] = snap.Point(i)
	}
	return graphio.Write(w, g.Spec(pos), graphio.YAML)
}
