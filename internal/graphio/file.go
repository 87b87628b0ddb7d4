// Package graphio reads and writes graph descriptions and generates test
// graphs. It hands the simulator a layout.GraphSpec and knows nothing about
// physics.
package graphio

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/forcelayout/internal/layout"
)

type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// File is the on-disk graph format. When Nodes is empty, nodes are declared
// implicitly by the edges in order of first appearance.
type File struct {
	Nodes []NodeRecord `yaml:"nodes,omitempty" json:"nodes,omitempty"`
	Edges []EdgeRecord `yaml:"edges" json:"edges"`
}

type NodeRecord struct {
	ID     int64    `yaml:"id" json:"id"`
	Label  string   `yaml:"label,omitempty" json:"label,omitempty"`
	X      *float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y      *float64 `yaml:"y,omitempty" json:"y,omitempty"`
	Mass   float64  `yaml:"mass,omitempty" json:"mass,omitempty"`
	Pinned bool     `yaml:"pinned,omitempty" json:"pinned,omitempty"`
}

// EdgeRecord is one edge. A missing weight means 1.
type EdgeRecord struct {
	Source int64    `yaml:"source" json:"source"`
	Target int64    `yaml:"target" json:"target"`
	Weight *float64 `yaml:"weight,omitempty" json:"weight,omitempty"`
}

// FormatOf picks the format from a file extension; anything but .json is YAML.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return JSON
	}
	return YAML
}

func ReadFile(path string) (layout.GraphSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return layout.GraphSpec{}, err
	}
	defer f.Close()
	spec, err := Read(f, FormatOf(path))
	if err != nil {
		return layout.GraphSpec{}, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

func Read(r io.Reader, format Format) (layout.GraphSpec, error) {
	var file File
	var err error
	switch format {
	case JSON:
		err = json.NewDecoder(r).Decode(&file)
	case YAML:
		err = yaml.NewDecoder(r).Decode(&file)
		if err == io.EOF {
			err = nil
		}
	default:
		return layout.GraphSpec{}, fmt.Errorf("unknown graph format %q", format)
	}
	if err != nil {
		return layout.GraphSpec{}, fmt.Errorf("decode graph: %w", err)
	}
	return file.Spec(), nil
}

// Spec converts the file form into a layout.GraphSpec. Positions are kept
// only when both coordinates are present.
func (f File) Spec() layout.GraphSpec {
	spec := layout.GraphSpec{
		Nodes: make([]layout.NodeSpec, 0, len(f.Nodes)),
		Edges: make([]layout.EdgeSpec, 0, len(f.Edges)),
	}
	for _, n := range f.Nodes {
		ns := layout.NodeSpec{ID: layout.NodeID(n.ID), Label: n.Label, Mass: n.Mass, Pinned: n.Pinned}
		if n.X != nil && n.Y != nil {
			ns.Position = &layout.Vec2{X: *n.X, Y: *n.Y}
		}
		spec.Nodes = append(spec.Nodes, ns)
	}

	implicit := len(f.Nodes) == 0
	seen := make(map[int64]bool)
	declare := func(id int64) {
		if implicit && !seen[id] {
			seen[id] = true
			spec.Nodes = append(spec.Nodes, layout.Node(layout.NodeID(id)))
		}
	}
	for _, e := range f.Edges {
		declare(e.Source)
		declare(e.Target)
		w := 1.0
		if e.Weight != nil {
			w = *e.Weight
		}
		spec.Edges = append(spec.Edges, layout.WeightedEdge(layout.NodeID(e.Source), layout.NodeID(e.Target), w))
	}
	return spec
}

// FromSpec converts a GraphSpec to its file form.
func FromSpec(spec layout.GraphSpec) File {
	f := File{
		Nodes: make([]NodeRecord, len(spec.Nodes)),
		Edges: make([]EdgeRecord, len(spec.Edges)),
	}
	for i, n := range spec.Nodes {
		rec := NodeRecord{ID: int64(n.ID), Label: n.Label, Mass: n.Mass, Pinned: n.Pinned}
		if n.Position != nil {
			x, y := n.Position.X, n.Position.Y
			rec.X, rec.Y = &x, &y
		}
		f.Nodes[i] = rec
	}
	for i, e := range spec.Edges {
		rec := EdgeRecord{Source: int64(e.Source), Target: int64(e.Target)}
		if e.Weight != 1 {
			w := e.Weight
			rec.Weight = &w
		}
		f.Edges[i] = rec
	}
	return f
}

func Write(w io.Writer, spec layout.GraphSpec, format Format) error {
	file := FromSpec(spec)
	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(file)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(file); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown graph format %q", format)
}
