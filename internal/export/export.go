// Package export writes a layout snapshot in formats other tools can read:
// CSV, JSON, SVG, Graphviz DOT, and a graph file that resumes the layout. Everything is written to an io.Writer;
// the package never touches the filesystem.
package export

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/san-kum/forcelayout/internal/layout"
)

// Writer renders a snapshot of graph g to w.
type Writer func(ctx context.Context, w io.Writer, snap *layout.Snapshot, g *layout.Graph) error

var formats = map[string]Writer{
	"csv": func(_ context.Context, w io.Writer, snap *layout.Snapshot, g *layout.Graph) error {
		return WriteCSV(w, snap, g)
	},
	"json": func(_ context.Context, w io.Writer, snap *layout.Snapshot, g *layout.Graph) error {
		return WriteJSON(w, snap, g, nil)
	},
	"svg": func(_ context.Context, w io.Writer, snap *layout.Snapshot, g *layout.Graph) error {
		_, err := io.WriteString(w, LayoutSVG(snap, g, DefaultSVGOptions()))
		return err
	},
	"dot": func(_ context.Context, w io.Writer, snap *layout.Snapshot, g *layout.Graph) error {
		_, err := io.WriteString(w, ToDOT(snap, g))
		return err
	},
	"graph": func(_ context.Context, w io.Writer, snap *layout.Snapshot, g *layout.Graph) error {
		return WriteGraph(w, snap, g)
	},
	"graphviz": func(ctx context.Context, w io.Writer, snap *layout.Snapshot, g *layout.Graph) error {
		svg, err := RenderSVG(ctx, ToDOT(snap, g))
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	},
}

// Formats lists the supported format names.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write renders snap in the named format.
func Write(ctx context.Context, format string, w io.Writer, snap *layout.Snapshot, g *layout.Graph) error {
	fn, ok := formats[format]
	if !ok {
		return fmt.Errorf("unknown export format %q (have %v)", format, Formats())
	}
	return fn(ctx, w, snap, g)
}

func label(g *layout.Graph, i int) string {
	if l := g.Label(i); l != "" {
		return l
	}
	return fmt.Sprint(g.ID(i))
}
