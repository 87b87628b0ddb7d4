package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/san-kum/forcelayout/internal/graphio"
	"github.com/san-kum/forcelayout/internal/layout"
)

func fixture(t *testing.T) (*layout.Snapshot, *layout.Graph) {
	t.Helper()
	spec := layout.GraphSpec{
		Nodes: []layout.NodeSpec{
			layout.NodeAt(1, 0, 0),
			{ID: 2, Label: "b<&>", Position: &layout.Vec2{X: 3, Y: 4}, Pinned: true},
			layout.NodeAt(-7, -2, 1),
		},
		Edges: []layout.EdgeSpec{layout.Edge(1, 2), layout.WeightedEdge(2, -7, 2.5), layout.Edge(1, 1)},
	}
	g, err := layout.NewGraph(spec, false)
	if err != nil {
		t.Fatal(err)
	}
	b := layout.NewBodies(g.Len())
	for i := 0; i < g.Len(); i++ {
		b.Pos[i], _ = g.Initial(i)
		b.Vel[i] = layout.Vec2{X: float64(i), Y: -float64(i)}
		b.Mass[i] = g.Mass(i)
	}
	return layout.NewSnapshot(12, true, g.IDs(), b, layout.StepCounts{Moved: 3}), g
}

func TestWriteCSV(t *testing.T) {
	snap, g := fixture(t)
	var buf bytes.Buffer
	if err := WriteCSV(&buf, snap, g); err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], ",") != "id,label,x,y,vx,vy,mass" {
		t.Errorf("unexpected header %v", rows[0])
	}
	if got := strings.Join(rows[2], ","); got != "2,b<&>,3,4,1,-1,1" {
		t.Errorf("unexpected row %q", got)
	}
	if rows[3][0] != "-7" {
		t.Errorf("expected negative id, got %s", rows[3][0])
	}
}

func TestWriteJSON(t *testing.T) {
	snap, g := fixture(t)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, snap, g, map[string]float64{"spread": 2}); err != nil {
		t.Fatal(err)
	}
	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Tick != 12 || len(doc.Nodes) != 3 || len(doc.Edges) != 3 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if !doc.Nodes[1].Pinned || doc.Nodes[1].Label != "b<&>" {
		t.Errorf("node 2 lost attributes: %+v", doc.Nodes[1])
	}
	if doc.Edges[1] != (EdgeData{Source: 2, Target: -7, Weight: 2.5}) {
		t.Errorf("unexpected edge %+v", doc.Edges[1])
	}
	if doc.Metrics["spread"] != 2 {
		t.Error("metrics not written")
	}
}

func TestLayoutSVG(t *testing.T) {
	snap, g := fixture(t)
	opts := DefaultSVGOptions()
	opts.Labels = true
	svg := LayoutSVG(snap, g, opts)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete SVG document")
	}
	if n := strings.Count(svg, "<circle"); n != 3 {
		t.Errorf("expected 3 circles, got %d", n)
	}
	// self loop is not drawn
	if n := strings.Count(svg, "<line"); n != 2 {
		t.Errorf("expected 2 lines, got %d", n)
	}
	if strings.Count(svg, opts.PinColor) != 1 {
		t.Error("pinned node should use the pin color")
	}
	if !strings.Contains(svg, "b&lt;&amp;&gt;") {
		t.Error("labels must be escaped")
	}
}

func TestFrameProjection(t *testing.T) {
	snap, _ := fixture(t)
	f := newFrame(snap, 100, 100)
	// x spans [-2,3], y spans [0,4], padded by 10%
	x, y := f.project(layout.Vec2{X: -2, Y: 4})
	if x < 8 || x > 9 || y < 8 || y > 9 {
		t.Errorf("corner projected to (%f,%f)", x, y)
	}
	x, y = f.project(layout.Vec2{X: 3, Y: 0})
	if x < 91 || x > 92 || y < 91 || y > 92 {
		t.Errorf("corner projected to (%f,%f)", x, y)
	}
}

func TestSVGEmpty(t *testing.T) {
	g, _ := layout.NewGraph(layout.GraphSpec{}, false)
	snap := layout.NewSnapshot(0, false, nil, layout.NewBodies(0), layout.StepCounts{})
	svg := LayoutSVG(snap, g, DefaultSVGOptions())
	if strings.Contains(svg, "<circle") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("empty layout should produce an empty drawing")
	}
}

func TestToDOT(t *testing.T) {
	snap, g := fixture(t)
	dot := ToDOT(snap, g)
	for _, want := range []string{
		`"2" [label="b<&>", pos="30,40!", fillcolor="#ff5f87"];`,
		`"-7" [label="-7", pos="-20,10!"];`,
		`"1" -- "2";`,
		`"2" -- "-7" [penwidth=2.5];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("missing %q in\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"1" -- "1"`) {
		t.Error("self loop should be dropped")
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	snap, g := fixture(t)
	if err := Write(context.Background(), "png", &bytes.Buffer{}, snap, g); err == nil {
		t.Error("expected unknown format error")
	}
	for _, name := range []string{"csv", "json", "svg", "dot", "graph"} {
		var buf bytes.Buffer
		if err := Write(context.Background(), name, &buf, snap, g); err != nil || buf.Len() == 0 {
			t.Errorf("%s: err=%v len=%d", name, err, buf.Len())
		}
	}
}

func TestWriteGraph(t *testing.T) {
	snap, g := fixture(t)
	var buf bytes.Buffer
	if err := WriteGraph(&buf, snap, g); err != nil {
		t.Fatal(err)
	}
	spec, err := graphio.Read(&buf, graphio.YAML)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec.Nodes) != 3 || len(spec.Edges) != 3 {
		t.Fatalf("unexpected sizes %d %d", len(spec.Nodes), len(spec.Edges))
	}
	for i, n := range spec.Nodes {
		if n.Position == nil || *n.Position != snap.Point(i) {
			t.Errorf("node %d: position %v, want %v", n.ID, n.Position, snap.Point(i))
		}
	}
	if spec.Nodes[1].Label != "b<&>" || !spec.Nodes[1].Pinned {
		t.Errorf("node 2 not carried over: %+v", spec.Nodes[1])
	}
	if spec.Edges[1].Weight != 2.5 {
		t.Errorf("unexpected weight %g", spec.Edges[1].Weight)
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render is slow")
	}
	snap, g := fixture(t)
	out, err := RenderSVG(context.Background(), ToDOT(snap, g))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(out, []byte("<svg")) {
		t.Error("expected SVG output")
	}
}
