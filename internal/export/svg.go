package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/forcelayout/internal/layout"
)

type SVGOptions struct {
	Width      int
	Height     int
	Radius     float64
	Background string
	NodeColor  string
	PinColor   string
	EdgeColor  string
	Labels     bool
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:      800,
		Height:     800,
		Radius:     4,
		Background: "#0a0a0a",
		NodeColor:  "#00d7ff",
		PinColor:   "#ff5f87",
		EdgeColor:  "#3a3a3a",
	}
}

// frame maps layout coordinates onto a width x height viewport with 10%
// padding on each side. The y axis points up in layout space.
type frame struct {
	minX, minY     float64
	rangeX, rangeY float64
	width, height  float64
}

func newFrame(snap *layout.Snapshot, width, height int) frame {
	lo, hi, ok := snap.Bounds()
	if !ok {
		lo, hi = layout.Vec2{X: -1, Y: -1}, layout.Vec2{X: 1, Y: 1}
	}
	rangeX := hi.X - lo.X
	rangeY := hi.Y - lo.Y
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	lo.X -= rangeX * 0.1
	hi.X += rangeX * 0.1
	lo.Y -= rangeY * 0.1
	hi.Y += rangeY * 0.1
	return frame{
		minX: lo.X, minY: lo.Y,
		rangeX: hi.X - lo.X, rangeY: hi.Y - lo.Y,
		width: float64(width), height: float64(height),
	}
}

func (f frame) project(p layout.Vec2) (float64, float64) {
	x := (p.X - f.minX) / f.rangeX * f.width
	y := f.height - (p.Y-f.minY)/f.rangeY*f.height
	return x, y
}

// LayoutSVG draws edges as lines and nodes as circles. Pinned nodes use
// PinColor.
func LayoutSVG(snap *layout.Snapshot, g *layout.Graph, opts SVGOptions) string {
	f := newFrame(snap, opts.Width, opts.Height)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background)

	fmt.Fprintf(&sb, "<g stroke=\"%s\" stroke-width=\"1\">\n", opts.EdgeColor)
	for _, l := range g.Links() {
		if l.A == l.B {
			continue
		}
		x1, y1 := f.project(snap.Point(l.A))
		x2, y2 := f.project(snap.Point(l.B))
		fmt.Fprintf(&sb, "<line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n", x1, y1, x2, y2)
	}
	sb.WriteString("</g>\n")

	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", opts.NodeColor)
	for i := range snap.Nodes {
		x, y := f.project(snap.Point(i))
		if g.Pinned(i) {
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", x, y, opts.Radius, opts.PinColor)
		} else {
			fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n", x, y, opts.Radius)
		}
	}
	sb.WriteString("</g>\n")

	if opts.Labels {
		sb.WriteString("<g fill=\"#d0d0d0\" font-family=\"monospace\" font-size=\"10\">\n")
		for i := range snap.Nodes {
			x, y := f.project(snap.Point(i))
			fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\">%s</text>\n", x+opts.Radius+2, y-opts.Radius, escape(label(g, i)))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return xmlEscaper.Replace(s) }
