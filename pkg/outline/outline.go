// Rectangle outlines for connector anchoring.
// Sides are directed segments carrying an outward unit normal.

// Package outline describes the boundary sides of diagram nodes that a
// connector may attach to.
package outline

import (
	"math"

	"honnef.co/go/curve"
)

// Side is one edge of a node boundary.
type Side struct {
	Line   curve.Line
	Normal curve.Vec2 // outward facing
}

// NewSide creates a side from p0 to p1. The outward normal is the
// direction rotated a quarter turn counter-clockwise in y-down screen
// space, which points outside a rectangle traversed clockwise.
func NewSide(p0, p1 curve.Point) Side {
	d := p1.Sub(p0)
	// 0-x rather than -x keeps axis-aligned normals free of negative zero.
	n := curve.Vec(d.Y, 0-d.X)
	return Side{
		Line:   curve.Line{P0: p0, P1: p1},
		Normal: n.Normalize(),
	}
}

// P returns the point at parameter t along the side.
func (s Side) P(t float64) curve.Point {
	return s.Line.Eval(t)
}

// Midpoint returns the centre of the side.
func (s Side) Midpoint() curve.Point {
	return s.Line.P0.Midpoint(s.Line.P1)
}

// UnitNormal returns the normal scaled to length 1.
func (s Side) UnitNormal() curve.Vec2 {
	h := s.Normal.Hypot()
	if h == 0 {
		return s.Normal
	}
	return s.Normal.Mul(1 / h)
}

// NormalAngle returns the angle of the outward normal in radians.
func (s Side) NormalAngle() float64 {
	return s.Normal.Angle()
}

// Length returns the length of the side.
func (s Side) Length() float64 {
	return s.Line.Length()
}

// Degenerate reports whether the side has no usable direction.
func (s Side) Degenerate() bool {
	return s.Length() == 0 || s.Normal.IsNaN()
}

// Outlines is the ordered set of sides a connector may use.
type Outlines []Side

// Side indices for outlines built by FromRect.
const (
	Top = iota
	Right
	Bottom
	Left
)

// SideName returns a short name for a FromRect side index.
func SideName(i int) string {
	switch i {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	}
	return "?"
}

// FromRect returns the four sides of r in clockwise order (y-down):
// top, right, bottom, left.
func FromRect(r curve.Rect) Outlines {
	r = r.Abs()
	tl := curve.Pt(r.X0, r.Y0)
	tr := curve.Pt(r.X1, r.Y0)
	br := curve.Pt(r.X1, r.Y1)
	bl := curve.Pt(r.X0, r.Y1)
	return Outlines{
		NewSide(tl, tr),
		NewSide(tr, br),
		NewSide(br, bl),
		NewSide(bl, tl),
	}
}

// FromBox returns the outlines of the rectangle with origin (x, y) and size w×h.
func FromBox(x, y, w, h float64) Outlines {
	return FromRect(curve.Rect{X0: x, Y0: y, X1: x + w, Y1: y + h})
}

// Bounds returns the bounding rectangle of all sides.
func (o Outlines) Bounds() curve.Rect {
	if len(o) == 0 {
		return curve.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, s := range o {
		for _, p := range []curve.Point{s.Line.P0, s.Line.P1} {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}
	}
	return curve.Rect{X0: minX, Y0: minY, X1: maxX, Y1: maxY}
}
