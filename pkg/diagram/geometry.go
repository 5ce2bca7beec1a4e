// Geometric helpers for label placement.
// Overlap measurement and collision-avoiding label placement.

package diagram

import (
	"math"

	"honnef.co/go/curve"
)

// RectOverlap returns the overlap area of two rectangles, 0 if they are
// disjoint or only touch.
func RectOverlap(a, b curve.Rect) float64 {
	return a.Abs().Intersect(b.Abs()).Area()
}

// LabelBox returns the rectangle of a w×h label centred on p.
func LabelBox(p curve.Point, w, h float64) curve.Rect {
	return curve.Rect{X0: p.X - w/2, Y0: p.Y - h/2, X1: p.X + w/2, Y1: p.Y + h/2}
}

// LabelPlacer places labels so they avoid nodes and each other.
// Every placed label becomes an obstacle for the next one.
type LabelPlacer struct {
	obstacles []curve.Rect
}

// NewLabelPlacer creates a placer with the given initial obstacles.
func NewLabelPlacer(obstacles []curve.Rect) *LabelPlacer {
	return &LabelPlacer{obstacles: append([]curve.Rect(nil), obstacles...)}
}

// Obstacles returns the current obstacle list.
func (lp *LabelPlacer) Obstacles() []curve.Rect {
	return lp.obstacles
}

func (lp *LabelPlacer) overlap(r curve.Rect) float64 {
	total := 0.0
	for _, o := range lp.obstacles {
		total += RectOverlap(r, o)
	}
	return total
}

// PlaceLabel returns the centre of a label near anchor. Candidates are
// tried above, below, right, left and then diagonally; the first clear one
// wins, otherwise the one with least overlap.
func (lp *LabelPlacer) PlaceLabel(anchor curve.Point, w, h, gap float64) curve.Point {
	dx, dy := w/2+gap, h/2+gap
	candidates := []curve.Point{
		{X: anchor.X, Y: anchor.Y - dy},
		{X: anchor.X, Y: anchor.Y + dy},
		{X: anchor.X + dx, Y: anchor.Y},
		{X: anchor.X - dx, Y: anchor.Y},
		{X: anchor.X + dx, Y: anchor.Y - dy},
		{X: anchor.X - dx, Y: anchor.Y - dy},
		{X: anchor.X + dx, Y: anchor.Y + dy},
		{X: anchor.X - dx, Y: anchor.Y + dy},
	}

	best := candidates[0]
	bestOverlap := math.MaxFloat64
	for _, p := range candidates {
		ov := lp.overlap(LabelBox(p, w, h))
		if ov == 0 {
			best = p
			break
		}
		if ov < bestOverlap {
			best, bestOverlap = p, ov
		}
	}
	lp.obstacles = append(lp.obstacles, LabelBox(best, w, h))
	return best
}

// PlaceLabelOnCurve places a label beside a curve point, offset along the
// normal of tangent. Both sides are tried before falling back to
// PlaceLabel around the point.
func (lp *LabelPlacer) PlaceLabelOnCurve(at curve.Point, tangent curve.Vec2, w, h, offset float64) curve.Point {
	if tangent.Hypot() < 1e-3 {
		return lp.PlaceLabel(at, w, h, offset)
	}
	tn := tangent.Normalize()
	perp := curve.Vec(-tn.Y, tn.X)

	// Clear the label's own extent along the normal as well as the offset.
	reach := offset + math.Abs(perp.X)*w/2 + math.Abs(perp.Y)*h/2
	for _, sign := range []float64{1, -1} {
		p := at.Translate(perp.Mul(reach * sign))
		r := LabelBox(p, w, h)
		if lp.overlap(r) == 0 {
			lp.obstacles = append(lp.obstacles, r)
			return p
		}
	}
	return lp.PlaceLabel(at, w, h, offset)
}
