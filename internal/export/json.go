package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/forcelayout/internal/layout"
)

type Document struct {
	Tick    uint64             `json:"tick"`
	Average [2]float64         `json:"average"`
	Nodes   []NodeData         `json:"nodes"`
	Edges   []EdgeData         `json:"edges"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

type NodeData struct {
	ID     layout.NodeID `json:"id"`
	Label  string        `json:"label,omitempty"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	VX     float64       `json:"vx"`
	VY     float64       `json:"vy"`
	Mass   float64       `json:"mass"`
	Pinned bool          `json:"pinned,omitempty"`
}

type EdgeData struct {
	Source layout.NodeID `json:"source"`
	Target layout.NodeID `json:"target"`
	Weight float64       `json:"weight"`
}

// NewDocument assembles the JSON form of a snapshot.
func NewDocument(snap *layout.Snapshot, g *layout.Graph, metrics map[string]float64) Document {
	doc := Document{
		Tick:    snap.Tick,
		Average: [2]float64{snap.Average.X, snap.Average.Y},
		Nodes:   make([]NodeData, len(snap.Nodes)),
		Edges:   make([]EdgeData, len(g.Links())),
		Metrics: metrics,
	}
	for i, n := range snap.Nodes {
		doc.Nodes[i] = NodeData{
			ID:     n.ID,
			Label:  g.Label(i),
			X:      n.X,
			Y:      n.Y,
			VX:     snap.Velocities[i].X,
			VY:     snap.Velocities[i].Y,
			Mass:   snap.Mass[i],
			Pinned: g.Pinned(i),
		}
	}
	for i, l := range g.Links() {
		doc.Edges[i] = EdgeData{Source: g.ID(l.A), Target: g.ID(l.B), Weight: l.Weight}
	}
	return doc
}

func WriteJSON(w io.Writer, snap *layout.Snapshot, g *layout.Graph, metrics map[string]float64) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewDocument(snap, g, metrics))
}
