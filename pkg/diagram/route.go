package diagram

import (
	"strconv"

	"honnef.co/go/curve"

	"github.com/ha1tch/arrowkit/internal/log"
	"github.com/ha1tch/arrowkit/pkg/arrow"
	"github.com/ha1tch/arrowkit/pkg/outline"
	"github.com/ha1tch/arrowkit/pkg/scene"
)

// LabelMetrics approximates label extents from character counts.
type LabelMetrics struct {
	CharW float64
	LineH float64
	Gap   float64 // distance between a label and the curve
}

// DefaultLabelMetrics suits a 12 unit sans-serif font.
func DefaultLabelMetrics() LabelMetrics {
	return LabelMetrics{CharW: 7, LineH: 14, Gap: 6}
}

// MetricsForFont scales DefaultLabelMetrics to a font size.
func MetricsForFont(size float64) LabelMetrics {
	if size <= 0 {
		return DefaultLabelMetrics()
	}
	return LabelMetrics{CharW: size * 0.6, LineH: size * 1.2, Gap: size / 2}
}

// Size returns the box a label of s would need.
func (m LabelMetrics) Size(s string) (w, h float64) {
	return float64(len([]rune(s))) * m.CharW, m.LineH
}

// EdgeGeometry is the routed form of one edge.
type EdgeGeometry struct {
	Index     int
	Edge      Edge
	Connector *scene.Connector
	Shape     arrow.Shape

	// Midpoint is where the connector passes halfway; the origin when OK
	// is false.
	Midpoint curve.Point
	OK       bool

	// Label centre and size. Zero when the edge has no label or no
	// connector.
	LabelAt curve.Point
	LabelW  float64
	LabelH  float64
}

// SourceSide names the chosen source side, or "" without a connector.
func (g EdgeGeometry) SourceSide() string {
	if !g.OK {
		return ""
	}
	return outline.SideName(g.Shape.Source)
}

// TargetSide names the chosen target side, or "" without a connector.
func (g EdgeGeometry) TargetSide() string {
	if !g.OK {
		return ""
	}
	return outline.SideName(g.Shape.Target)
}

// EdgeOptions resolves the connector style for e: defaults, then the
// diagram style, then the edge's own fields.
func EdgeOptions(d *Diagram, e Edge, defaults arrow.Options) arrow.Options {
	o := defaults
	alpha := o.Color.A
	if d.Style.Alpha != nil {
		alpha = AlphaByte(*d.Style.Alpha)
		o.Color.A = alpha
	}
	apply := func(col string, thickness float64, t *float64) {
		if thickness > 0 {
			o.Thickness = thickness
		}
		if t != nil {
			o.T = *t
		}
		if col == "" {
			return
		}
		c, err := ParseColor(col, alpha)
		if err != nil {
			return
		}
		o.Color = c
		o.TipColor = c
		o.TipColor.A = 255
	}
	apply(d.Style.Color, d.Style.Thickness, d.Style.T)
	apply(e.Color, e.Thickness, e.T)
	return o
}

// Route computes a connector for every edge and places edge labels at the
// connector midpoints.
func Route(d *Diagram, defaults arrow.Options) []EdgeGeometry {
	return RouteWith(d, defaults, DefaultLabelMetrics())
}

// RouteWith is Route with explicit label metrics.
func RouteWith(d *Diagram, defaults arrow.Options, m LabelMetrics) []EdgeGeometry {
	logger := log.WithComponent("route")

	outlines := make(map[string]outline.Outlines, len(d.Nodes))
	boxes := make([]curve.Rect, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		outlines[n.ID] = n.Outlines()
		boxes = append(boxes, n.Rect())
	}
	placer := NewLabelPlacer(boxes)
	arrows := make(map[arrow.Options]*arrow.Arrow)

	geoms := make([]EdgeGeometry, 0, len(d.Edges))
	for i, e := range d.Edges {
		opts := EdgeOptions(d, e, defaults)
		a, ok := arrows[opts]
		if !ok {
			a = arrow.New(opts)
			arrows[opts] = a
		}

		c := scene.NewConnector(edgeID(i, e), a)
		mid, ok := c.Update(outlines[e.From], outlines[e.To])
		g := EdgeGeometry{Index: i, Edge: e, Connector: c, Midpoint: mid, OK: ok}
		if !ok {
			logger.Debug("no connector", "edge", i, "from", e.From, "to", e.To)
			geoms = append(geoms, g)
			continue
		}
		g.Shape, _ = c.Shape()

		if e.Label != "" {
			g.LabelW, g.LabelH = m.Size(e.Label)
			tangent := curve.Vec2(g.Shape.Curve.Differentiate().Eval(0.5))
			g.LabelAt = placer.PlaceLabelOnCurve(mid, tangent, g.LabelW, g.LabelH, m.Gap+g.Shape.Thickness/2)
		}
		geoms = append(geoms, g)
	}
	return geoms
}

func edgeID(i int, e Edge) string {
	return e.From + "->" + e.To + "#" + strconv.Itoa(i)
}

// Overlapping returns the id pairs of nodes whose boxes overlap.
func (d *Diagram) Overlapping() [][2]string {
	var out [][2]string
	for i := range d.Nodes {
		for j := i + 1; j < len(d.Nodes); j++ {
			if RectOverlap(d.Nodes[i].Rect(), d.Nodes[j].Rect()) > 0 {
				out = append(out, [2]string{d.Nodes[i].ID, d.Nodes[j].ID})
			}
		}
	}
	return out
}
