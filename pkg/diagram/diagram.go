// Diagram model: rectangular nodes joined by directed connectors.

// Package diagram loads, validates and routes box-and-arrow diagrams.
package diagram

import (
	"errors"
	"fmt"
	"math"

	"honnef.co/go/curve"

	"github.com/ha1tch/arrowkit/pkg/outline"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid diagram")

// Diagram is a set of boxes and the connectors between them.
type Diagram struct {
	Name        string
	Description string
	Nodes       []Node
	Edges       []Edge
	Style       Style
}

// Node is an axis-aligned box. X, Y is the top-left corner.
type Node struct {
	ID    string
	Label string
	X, Y  float64
	W, H  float64
}

// Edge is a directed connector from one node to another. Zero-valued
// style fields fall back to the diagram style.
type Edge struct {
	From      string
	To        string
	Label     string
	Color     string   // hex, e.g. "#00ff00"
	Thickness float64  // 0 for the diagram default
	T         *float64 // attachment parameter, nil for the diagram default
}

// Style holds diagram-wide connector defaults.
type Style struct {
	Color     string
	Alpha     *float64 // stroke opacity in [0,1]
	Thickness float64
	T         *float64
}

// Rect returns the node's box.
func (n Node) Rect() curve.Rect {
	return curve.Rect{X0: n.X, Y0: n.Y, X1: n.X + n.W, Y1: n.Y + n.H}
}

// Outlines returns the sides a connector may attach to.
func (n Node) Outlines() outline.Outlines {
	return outline.FromRect(n.Rect())
}

// Center returns the centre of the node's box.
func (n Node) Center() curve.Point {
	return n.Rect().Center()
}

// Node returns the node with the given id.
func (d *Diagram) Node(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// Bounds returns the union of all node boxes.
func (d *Diagram) Bounds() curve.Rect {
	var r curve.Rect
	for i, n := range d.Nodes {
		if i == 0 {
			r = n.Rect()
			continue
		}
		r = r.Union(n.Rect())
	}
	return r
}

// Validate checks ids, sizes, edge references and style ranges.
func (d *Diagram) Validate() error {
	seen := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node %d has no id", ErrInvalid, i)
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalid, n.ID)
		}
		seen[n.ID] = true
		if !finite(n.X, n.Y, n.W, n.H, n.X+n.W, n.Y+n.H) {
			return fmt.Errorf("%w: node %q has non-finite geometry (%g, %g, %g, %g)", ErrInvalid, n.ID, n.X, n.Y, n.W, n.H)
		}
		if !(n.W > 0 && n.H > 0) {
			return fmt.Errorf("%w: node %q has non-positive size %gx%g", ErrInvalid, n.ID, n.W, n.H)
		}
	}

	if err := checkStyle("style", d.Style.Color, d.Style.Thickness, d.Style.T); err != nil {
		return err
	}
	if a := d.Style.Alpha; a != nil && !(*a >= 0 && *a <= 1) {
		return fmt.Errorf("%w: style: alpha %g outside [0,1]", ErrInvalid, *a)
	}

	for i, e := range d.Edges {
		if !seen[e.From] {
			return fmt.Errorf("%w: edge %d: unknown source %q", ErrInvalid, i, e.From)
		}
		if !seen[e.To] {
			return fmt.Errorf("%w: edge %d: unknown target %q", ErrInvalid, i, e.To)
		}
		if err := checkStyle(fmt.Sprintf("edge %d", i), e.Color, e.Thickness, e.T); err != nil {
			return err
		}
	}
	return nil
}

func checkStyle(where, col string, thickness float64, t *float64) error {
	if !(thickness >= 0) || math.IsInf(thickness, 0) {
		return fmt.Errorf("%w: %s: thickness %g is not a finite non-negative value", ErrInvalid, where, thickness)
	}
	if t != nil && !(*t >= 0 && *t <= 1) {
		return fmt.Errorf("%w: %s: t %g outside [0,1]", ErrInvalid, where, *t)
	}
	if col != "" {
		if _, err := ParseColor(col, 255); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, where, err)
		}
	}
	return nil
}

// finite reports whether no value is NaN or infinite.
func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
