// Directed cubic connector between two node outlines.
// Chooses the sides to connect, builds the Bézier and orients the arrow tip.

// Package arrow computes curved, arrow-tipped connectors between
// rectangular node outlines.
package arrow

import (
	"image/color"
	"math"

	"honnef.co/go/curve"

	"github.com/ha1tch/arrowkit/pkg/outline"
)

// Offsets from the side, as multiples of the thickness.
const (
	strokeClearance = 2.5 // tail and head of the stroke
	tipClearance    = 1.0 // apex of the arrow tip
	tipScale        = 2.0 // tip triangle side length
)

// coincident is the squared distance below which tail and head offsets
// are treated as the same point.
const coincident = 1e-18

// Options configures a connector.
type Options struct {
	Thickness float64     // stroke width, also scales the arrow tip
	Color     color.NRGBA // stroke colour of the curve
	TipColor  color.NRGBA // fill colour of the arrow tip
	T         float64     // attachment parameter along each side
}

// DefaultOptions returns the standard connector style.
func DefaultOptions() Options {
	return Options{
		Thickness: 20,
		Color:     color.NRGBA{R: 0, G: 255, B: 0, A: 128},
		TipColor:  color.NRGBA{R: 0, G: 255, B: 0, A: 255},
		T:         0.5,
	}
}

// Arrow renders connectors with a fixed style. The tip template is built
// once in New; Update only computes a transform for it.
type Arrow struct {
	opts Options
	tip  [3]curve.Point
}

// New creates an Arrow. A zero thickness or colour takes the default value;
// T is used as given.
func New(opts Options) *Arrow {
	def := DefaultOptions()
	if opts.Thickness == 0 {
		opts.Thickness = def.Thickness
	}
	if opts.Color == (color.NRGBA{}) {
		opts.Color = def.Color
	}
	if opts.TipColor == (color.NRGBA{}) {
		opts.TipColor = def.TipColor
	}

	s := opts.Thickness * tipScale
	return &Arrow{
		opts: opts,
		tip: [3]curve.Point{
			curve.Pt(0, 0),
			curve.Pt(0.5*s, -0.866025*s),
			curve.Pt(-0.5*s, -0.866025*s),
		},
	}
}

// Options returns the style the arrow was created with.
func (a *Arrow) Options() Options {
	return a.opts
}

// Template returns the untransformed arrow tip triangle. The apex is at the
// origin and the base lies on the negative y side.
func (a *Arrow) Template() [3]curve.Point {
	return a.tip
}

// TailOffset returns where the stroke starts on a source side.
func (a *Arrow) TailOffset(s outline.Side) curve.Point {
	return s.P(a.opts.T).Translate(s.UnitNormal().Mul(a.opts.Thickness * strokeClearance))
}

// HeadOffset returns where the stroke ends on a target side.
func (a *Arrow) HeadOffset(s outline.Side) curve.Point {
	return s.P(1 - a.opts.T).Translate(s.UnitNormal().Mul(a.opts.Thickness * strokeClearance))
}

// TipOffset returns where the apex of the arrow tip sits on a target side.
func (a *Arrow) TipOffset(s outline.Side) curve.Point {
	return s.P(1 - a.opts.T).Translate(s.UnitNormal().Mul(a.opts.Thickness * tipClearance))
}

// Pair is a candidate (source side, target side) combination.
type Pair struct {
	Source int     // index into the source outlines
	Target int     // index into the target outlines
	Dist2  float64 // squared distance between the side midpoints
}

// Valid reports whether connecting src to dst keeps the curve from bending
// back through either shape: the connecting vector must leave src along its
// normal and enter dst against its normal. When the tail and head offsets
// coincide the raw attachment points give the direction instead.
func (a *Arrow) Valid(src, dst outline.Side) bool {
	v := a.HeadOffset(dst).Sub(a.TailOffset(src))
	if v.Hypot2() <= coincident {
		v = dst.P(1 - a.opts.T).Sub(src.P(a.opts.T))
	}
	return v.Dot(src.Normal) > 0 && v.Dot(dst.Normal) < 0
}

// Candidates returns every valid pair of sides in source-major order.
func (a *Arrow) Candidates(src, dst outline.Outlines) []Pair {
	var pairs []Pair
	for i, s := range src {
		for j, d := range dst {
			if !a.Valid(s, d) {
				continue
			}
			pairs = append(pairs, Pair{
				Source: i,
				Target: j,
				Dist2:  s.Midpoint().DistanceSquared(d.Midpoint()),
			})
		}
	}
	return pairs
}

// Select returns the valid pair whose side midpoints are closest. Ties keep
// the earliest candidate. ok is false when no pair is valid.
func (a *Arrow) Select(src, dst outline.Outlines) (best Pair, ok bool) {
	for _, p := range a.Candidates(src, dst) {
		if !ok || p.Dist2 < best.Dist2 {
			best, ok = p, true
		}
	}
	return best, ok
}

// Update computes the connector from src to dst. ok is false when no pair
// of sides gives valid geometry (overlapping or degenerate outlines); the
// returned Shape is then zero and nothing should be drawn.
func (a *Arrow) Update(src, dst outline.Outlines) (sh Shape, ok bool) {
	pair, ok := a.Select(src, dst)
	if !ok {
		return Shape{}, false
	}
	s, d := src[pair.Source], dst[pair.Target]

	tail := a.TailOffset(s)
	head := a.HeadOffset(d)
	reach := head.Distance(tail) * 0.5

	c := curve.CubicBez{
		P0: tail,
		P1: tail.Translate(s.UnitNormal().Mul(reach)),
		P2: head.Translate(d.UnitNormal().Mul(reach)),
		P3: head,
	}

	// The template points along +y; a quarter turn past the normal angle
	// points it against the target's outward normal.
	tipAt := a.TipOffset(d)
	xf := curve.Rotate(d.NormalAngle() + math.Pi/2).ThenTranslate(curve.Vec2(tipAt))
	var tip [3]curve.Point
	for i, p := range a.tip {
		tip[i] = p.Transform(xf)
	}

	return Shape{
		Curve:        c,
		Tip:          tip,
		TipTransform: xf,
		Source:       pair.Source,
		Target:       pair.Target,
		Thickness:    a.opts.Thickness,
		Color:        a.opts.Color,
		TipColor:     a.opts.TipColor,
		Midpoint:     c.Eval(0.5),
	}, true
}
