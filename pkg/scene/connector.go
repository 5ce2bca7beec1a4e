package scene

import (
	"honnef.co/go/curve"

	"github.com/ha1tch/arrowkit/pkg/arrow"
	"github.com/ha1tch/arrowkit/pkg/outline"
)

// Connector is a group node whose children are kept in sync with the
// arrow between two outlines. It is not safe for concurrent use.
type Connector struct {
	*Node
	arrow *arrow.Arrow
	shape arrow.Shape
	ok    bool
}

// NewConnector creates an empty connector group drawn with a.
func NewConnector(id string, a *arrow.Arrow) *Connector {
	return &Connector{Node: NewGroup(id), arrow: a}
}

// Update recomputes the connector from src to dst and returns the curve
// midpoint. When no pair of sides is usable it returns the origin and
// false, and the group is left with no children.
func (c *Connector) Update(src, dst outline.Outlines) (curve.Point, bool) {
	c.RemoveAllChildren()
	c.shape, c.ok = c.arrow.Update(src, dst)
	if !c.ok {
		return curve.Point{}, false
	}

	tipFill := c.shape.TipColor
	stroke := c.shape.Color
	c.AddChild(&Node{
		ID:   c.ID + ".tip",
		Kind: KindShape,
		Path: c.shape.TipPath(),
		Fill: &tipFill,
	})
	c.AddChild(&Node{
		ID:          c.ID + ".curve",
		Kind:        KindShape,
		Path:        c.shape.CurvePath(),
		Stroke:      &stroke,
		StrokeWidth: c.shape.Thickness,
	})
	return c.shape.Midpoint, true
}

// Shape returns the geometry of the last successful Update.
func (c *Connector) Shape() (arrow.Shape, bool) {
	return c.shape, c.ok
}

// Arrow returns the arrow style used by the connector.
func (c *Connector) Arrow() *arrow.Arrow {
	return c.arrow
}
