package render

import (
	"fmt"
	"html"
	"image/color"
	"io"
	"strings"

	"honnef.co/go/curve"

	"github.com/ha1tch/arrowkit/pkg/diagram"
	"github.com/ha1tch/arrowkit/pkg/scene"
)

// SVGOptions controls SVG output.
type SVGOptions struct {
	Width      int     // canvas width in pixels
	Height     int     // canvas height in pixels
	Padding    float64 // space around the content
	FontSize   float64 // node label size; edge labels are two smaller
	Title      string
	Background string // fill colour, "" for white, "none" for transparent
}

// DefaultSVGOptions returns the standard canvas.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:    800,
		Height:   600,
		Padding:  40,
		FontSize: 14,
	}
}

func (o *SVGOptions) fill() {
	def := DefaultSVGOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Padding < 0 {
		o.Padding = def.Padding
	}
	if o.FontSize <= 0 {
		o.FontSize = def.FontSize
	}
	if o.Background == "" {
		o.Background = "white"
	}
}

const titleSpace = 35.0

// RenderSVG writes the diagram and its routed connectors as an SVG
// document. Nodes are drawn first, then connectors, then labels.
func RenderSVG(w io.Writer, d *diagram.Diagram, geoms []diagram.EdgeGeometry, opts SVGOptions) error {
	opts.fill()
	top := 0.0
	if opts.Title != "" {
		top = titleSpace
	}
	vp := Fit(ContentBounds(d, geoms), float64(opts.Width), float64(opts.Height), opts.Padding, top)
	labelSize := max(opts.FontSize-2, 8)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<style>
  .node { fill: white; stroke: #333; stroke-width: 2; }
  .node-label { font-family: sans-serif; font-size: %gpx; text-anchor: middle; dominant-baseline: middle; }
  .edge-label { font-family: sans-serif; font-size: %gpx; fill: #333; text-anchor: middle; dominant-baseline: middle; }
  .title { font-family: sans-serif; font-size: %gpx; font-weight: bold; text-anchor: middle; }
</style>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.FontSize, labelSize, opts.FontSize+4)

	if opts.Background != "none" {
		fmt.Fprintf(&sb, "<rect width=\"%d\" height=\"%d\" fill=\"%s\"/>\n", opts.Width, opts.Height, html.EscapeString(opts.Background))
	}
	if opts.Title != "" {
		fmt.Fprintf(&sb, "<text x=\"%d\" y=\"25\" class=\"title\">%s</text>\n", opts.Width/2, html.EscapeString(opts.Title))
	}

	for _, n := range d.Nodes {
		r := vp.Rect(n.Rect())
		fmt.Fprintf(&sb, "<rect id=\"%s\" x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"4\" class=\"node\"/>\n",
			html.EscapeString(n.ID), r.X0, r.Y0, r.Width(), r.Height())
	}

	for _, g := range geoms {
		if !g.OK {
			continue
		}
		fmt.Fprintf(&sb, "<g class=\"edge\" data-from=\"%s\" data-to=\"%s\">\n", html.EscapeString(g.Edge.From), html.EscapeString(g.Edge.To))
		g.Connector.Walk(func(n *scene.Node) bool {
			if len(n.Path) > 0 {
				writeSVGNode(&sb, vp, n)
			}
			return true
		})
		sb.WriteString("</g>\n")
	}

	for _, n := range d.Nodes {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		c := vp.Point(n.Center())
		fmt.Fprintf(&sb, "<text x=\"%.2f\" y=\"%.2f\" class=\"node-label\">%s</text>\n", c.X, c.Y, html.EscapeString(label))
	}
	for _, g := range geoms {
		if !g.OK || g.Edge.Label == "" {
			continue
		}
		p := vp.Point(g.LabelAt)
		fmt.Fprintf(&sb, "<text x=\"%.2f\" y=\"%.2f\" class=\"edge-label\">%s</text>\n", p.X, p.Y, html.EscapeString(g.Edge.Label))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeSVGNode(sb *strings.Builder, vp Viewport, n *scene.Node) {
	sb.WriteString(`<path d="`)
	curve.WriteSVG(sb, vp.Path(n.Path).Elements(), curve.SVGOptions{MaxPrecision: 2})
	sb.WriteString(`"`)
	if n.Fill != nil {
		fmt.Fprintf(sb, ` fill="%s"`, diagram.FormatColor(*n.Fill))
		writeOpacity(sb, "fill-opacity", *n.Fill)
	} else {
		sb.WriteString(` fill="none"`)
	}
	if n.Stroke != nil {
		fmt.Fprintf(sb, ` stroke="%s" stroke-width="%.2f" stroke-linecap="round"`,
			diagram.FormatColor(*n.Stroke), n.StrokeWidth*vp.Scale)
		writeOpacity(sb, "stroke-opacity", *n.Stroke)
	}
	sb.WriteString("/>\n")
}

func writeOpacity(sb *strings.Builder, attr string, c color.NRGBA) {
	if c.A == 255 {
		return
	}
	fmt.Fprintf(sb, ` %s="%.3f"`, attr, float64(c.A)/255)
}
