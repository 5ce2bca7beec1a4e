package arrow

import (
	"image/color"

	"honnef.co/go/curve"
)

// Shape is the renderable result of one Update. It is a plain value; the
// caller owns where and how it is drawn.
type Shape struct {
	Curve        curve.CubicBez
	Tip          [3]curve.Point // transformed arrow tip, apex first
	TipTransform curve.Affine   // template to canvas transform

	Source int // chosen side index in the source outlines
	Target int // chosen side index in the target outlines

	Thickness float64
	Color     color.NRGBA
	TipColor  color.NRGBA

	Midpoint curve.Point // curve midpoint, used for label placement
}

// CurvePath returns the connector stroke centre line as a path.
func (s Shape) CurvePath() curve.BezPath {
	var p curve.BezPath
	p.MoveTo(s.Curve.P0)
	p.CubicTo(s.Curve.P1, s.Curve.P2, s.Curve.P3)
	return p
}

// TipPath returns the arrow tip as a closed path.
func (s Shape) TipPath() curve.BezPath {
	var p curve.BezPath
	p.MoveTo(s.Tip[0])
	p.LineTo(s.Tip[1])
	p.LineTo(s.Tip[2])
	p.ClosePath()
	return p
}

// Bounds returns a rectangle covering the curve, its stroke and the tip.
func (s Shape) Bounds() curve.Rect {
	r := s.Curve.BoundingBox()
	half := s.Thickness / 2
	r = curve.Rect{X0: r.X0 - half, Y0: r.Y0 - half, X1: r.X1 + half, Y1: r.Y1 + half}
	for _, p := range s.Tip {
		r = r.UnionPoint(p)
	}
	return r
}
