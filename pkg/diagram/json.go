package diagram

import (
	"encoding/json"
	"fmt"
)

// fileDiagram is the on-disk representation shared by the JSON and YAML
// codecs.
type fileDiagram struct {
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Style       *fileStyle `json:"style,omitempty" yaml:"style,omitempty"`
	Nodes       []fileNode `json:"nodes" yaml:"nodes"`
	Edges       []fileEdge `json:"edges" yaml:"edges"`
}

type fileStyle struct {
	Color     string   `json:"color,omitempty" yaml:"color,omitempty"`
	Alpha     *float64 `json:"alpha,omitempty" yaml:"alpha,omitempty"`
	Thickness float64  `json:"thickness,omitempty" yaml:"thickness,omitempty"`
	T         *float64 `json:"t,omitempty" yaml:"t,omitempty"`
}

type fileNode struct {
	ID    string  `json:"id" yaml:"id"`
	Label string  `json:"label,omitempty" yaml:"label,omitempty"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	W     float64 `json:"w" yaml:"w"`
	H     float64 `json:"h" yaml:"h"`
}

type fileEdge struct {
	From      string   `json:"from" yaml:"from"`
	To        string   `json:"to" yaml:"to"`
	Label     string   `json:"label,omitempty" yaml:"label,omitempty"`
	Color     string   `json:"color,omitempty" yaml:"color,omitempty"`
	Thickness float64  `json:"thickness,omitempty" yaml:"thickness,omitempty"`
	T         *float64 `json:"t,omitempty" yaml:"t,omitempty"`
}

func toFile(d *Diagram) fileDiagram {
	f := fileDiagram{
		Name:        d.Name,
		Description: d.Description,
		Nodes:       make([]fileNode, 0, len(d.Nodes)),
		Edges:       make([]fileEdge, 0, len(d.Edges)),
	}
	if d.Style != (Style{}) {
		f.Style = &fileStyle{
			Color:     d.Style.Color,
			Alpha:     d.Style.Alpha,
			Thickness: d.Style.Thickness,
			T:         d.Style.T,
		}
	}
	for _, n := range d.Nodes {
		f.Nodes = append(f.Nodes, fileNode(n))
	}
	for _, e := range d.Edges {
		f.Edges = append(f.Edges, fileEdge(e))
	}
	return f
}

func fromFile(f fileDiagram) *Diagram {
	d := &Diagram{
		Name:        f.Name,
		Description: f.Description,
	}
	if f.Style != nil {
		d.Style = Style{
			Color:     f.Style.Color,
			Alpha:     f.Style.Alpha,
			Thickness: f.Style.Thickness,
			T:         f.Style.T,
		}
	}
	for _, n := range f.Nodes {
		d.Nodes = append(d.Nodes, Node(n))
	}
	for _, e := range f.Edges {
		d.Edges = append(d.Edges, Edge(e))
	}
	return d
}

// ParseJSON parses and validates a diagram from JSON.
func ParseJSON(data []byte) (*Diagram, error) {
	var f fileDiagram
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	d := fromFile(f)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// ToJSON encodes a diagram as JSON.
func ToJSON(d *Diagram, pretty bool) ([]byte, error) {
	f := toFile(d)
	if pretty {
		return json.MarshalIndent(f, "", "  ")
	}
	return json.Marshal(f)
}
