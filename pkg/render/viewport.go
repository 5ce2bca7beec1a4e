// Diagram to canvas mapping.
// Fits the content bounds into a padded canvas, centred, with a scale cap.

// Package render draws routed diagrams as SVG, PNG or terminal cells.
package render

import (
	"math"

	"honnef.co/go/curve"

	"github.com/ha1tch/arrowkit/pkg/diagram"
)

// MaxScale limits how far small diagrams are enlarged.
const MaxScale = 1.5

// minContent keeps tiny diagrams from being scaled as if they were points.
const minContent = 100.0

// Viewport maps diagram coordinates onto a canvas.
type Viewport struct {
	Transform curve.Affine
	Scale     float64
}

// Fit returns the viewport that centres content inside a width×height
// canvas, leaving padding on every side and top extra space above.
func Fit(content curve.Rect, width, height, padding, top float64) Viewport {
	content = content.Abs()
	if w := content.Width(); w < minContent {
		c := content.Center().X
		content.X0, content.X1 = c-minContent/2, c+minContent/2
	}
	if h := content.Height(); h < minContent {
		c := content.Center().Y
		content.Y0, content.Y1 = c-minContent/2, c+minContent/2
	}

	availW := math.Max(width-2*padding, 1)
	availH := math.Max(height-2*padding-top, 1)
	s := math.Min(availW/content.Width(), availH/content.Height())
	s = math.Min(s, MaxScale)

	offX := padding + (availW-content.Width()*s)/2 - content.X0*s
	offY := padding + top + (availH-content.Height()*s)/2 - content.Y0*s
	return Viewport{
		Transform: curve.Scale(s, s).ThenTranslate(curve.Vec(offX, offY)),
		Scale:     s,
	}
}

// Point maps a diagram point to the canvas.
func (v Viewport) Point(p curve.Point) curve.Point {
	return p.Transform(v.Transform)
}

// Rect maps a diagram rectangle to the canvas.
func (v Viewport) Rect(r curve.Rect) curve.Rect {
	return v.Transform.TransformRectBoundingBox(r)
}

// Path maps a diagram path to the canvas.
func (v Viewport) Path(p curve.BezPath) curve.BezPath {
	return p.Transform(v.Transform)
}

// ContentBounds returns the area covered by nodes, connectors and labels.
func ContentBounds(d *diagram.Diagram, geoms []diagram.EdgeGeometry) curve.Rect {
	r := d.Bounds()
	for _, g := range geoms {
		if !g.OK {
			continue
		}
		r = r.Union(g.Shape.Bounds())
		if g.LabelW > 0 {
			r = r.Union(diagram.LabelBox(g.LabelAt, g.LabelW, g.LabelH))
		}
	}
	return r
}
