// Retained scene nodes.
// A small tree of styled paths that renderers walk in paint order.

// Package scene holds render-ready nodes and the connector that keeps
// its children in sync with two node outlines.
package scene

import (
	"image/color"

	"honnef.co/go/curve"
)

// Node kinds.
const (
	KindGroup = "group"
	KindShape = "shape"
)

// Node is a styled path with children. A nil Fill or Stroke means the
// path is not filled or not stroked.
type Node struct {
	ID   string
	Kind string

	Path        curve.BezPath
	Fill        *color.NRGBA
	Stroke      *color.NRGBA
	StrokeWidth float64

	Children []*Node
}

// NewGroup creates an empty group node.
func NewGroup(id string) *Node {
	return &Node{ID: id, Kind: KindGroup}
}

// AddChild appends c to the node's children.
func (n *Node) AddChild(c *Node) {
	n.Children = append(n.Children, c)
}

// RemoveAllChildren detaches every child.
func (n *Node) RemoveAllChildren() {
	clear(n.Children)
	n.Children = n.Children[:0]
}

// ReplaceChildren swaps the children for cs in one step.
func (n *Node) ReplaceChildren(cs ...*Node) {
	n.RemoveAllChildren()
	n.Children = append(n.Children, cs...)
}

// Walk visits n and its descendants depth first in paint order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Bounds returns the control box of every path in the subtree, expanded by
// half the stroke width of stroked nodes. ok is false for an empty subtree.
func (n *Node) Bounds() (r curve.Rect, ok bool) {
	n.Walk(func(c *Node) bool {
		if len(c.Path) == 0 {
			return true
		}
		b := c.Path.ControlBox()
		if c.Stroke != nil {
			b = b.Inflate(c.StrokeWidth/2, c.StrokeWidth/2)
		}
		if !ok {
			r, ok = b, true
		} else {
			r = r.Union(b)
		}
		return true
	})
	return r, ok
}
