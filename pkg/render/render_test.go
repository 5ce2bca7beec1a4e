package render

import (
	"bytes"
	"image"
	"image/png"
	"math"
	"slices"
	"strings"
	"testing"

	"honnef.co/go/curve"

	"github.com/ha1tch/arrowkit/pkg/arrow"
	"github.com/ha1tch/arrowkit/pkg/diagram"
)

func testDiagram() (*diagram.Diagram, []diagram.EdgeGeometry) {
	d := &diagram.Diagram{
		Nodes: []diagram.Node{
			{ID: "a", Label: "Alpha", X: 0, Y: 0, W: 100, H: 50},
			{ID: "b", Label: "Beta & Co", X: 200, Y: 0, W: 100, H: 50},
			{ID: "c", X: 0, Y: 300, W: 100, H: 50},
		},
		Edges: []diagram.Edge{
			{From: "a", To: "b", Label: "next"},
			{From: "a", To: "c"},
			{From: "b", To: "b"},
		},
	}
	return d, diagram.Route(d, arrow.DefaultOptions())
}

func TestFitCentresContent(t *testing.T) {
	content := curve.Rect{X0: 0, Y0: 0, X1: 300, Y1: 50}
	vp := Fit(content, 800, 600, 40, 0)
	if vp.Scale != MaxScale {
		t.Errorf("scale = %v, want %v", vp.Scale, MaxScale)
	}
	c := vp.Point(content.Center())
	if math.Abs(c.X-400) > 1e-9 || math.Abs(c.Y-300) > 1e-9 {
		t.Errorf("centre maps to %v, want (400, 300)", c)
	}
	if p := vp.Point(curve.Pt(0, 0)); math.Abs(p.X-175) > 1e-9 || math.Abs(p.Y-262.5) > 1e-9 {
		t.Errorf("origin maps to %v", p)
	}
}

func TestFitShrinksLargeContent(t *testing.T) {
	content := curve.Rect{X0: -1000, Y0: -500, X1: 1000, Y1: 500}
	vp := Fit(content, 400, 300, 20, 30)
	r := vp.Rect(content)
	if r.X0 < 20-1e-9 || r.X1 > 380+1e-9 || r.Y0 < 50-1e-9 || r.Y1 > 280+1e-9 {
		t.Errorf("content %+v escapes the padded canvas", r)
	}
}

func TestRenderSVG(t *testing.T) {
	d, geoms := testDiagram()
	var buf bytes.Buffer
	if err := RenderSVG(&buf, d, geoms, SVGOptions{Title: "Flow <1>"}); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="800" height="600"`,
		`class="node"`,
		`fill="none" stroke="#00ff00"`,
		`stroke-opacity="0.502"`,
		`fill="#00ff00"`,
		`>Beta &amp; Co</text>`,
		`>next</text>`,
		`>Flow &lt;1&gt;</text>`,
		`</svg>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q", want)
		}
	}
	// Two routed edges, one self edge with nothing to draw.
	if n := strings.Count(out, `<g class="edge"`); n != 2 {
		t.Errorf("Expected 2 edge groups, got %d", n)
	}
	if n := strings.Count(out, "<path "); n != 4 {
		t.Errorf("Expected 4 paths, got %d", n)
	}
}

func TestRenderSVGTransparent(t *testing.T) {
	d, geoms := testDiagram()
	var buf bytes.Buffer
	if err := RenderSVG(&buf, d, geoms, SVGOptions{Background: "none"}); err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if strings.Contains(buf.String(), `fill="white"/>`) {
		t.Error("transparent background should not draw a backdrop")
	}
}

func TestRenderPNG(t *testing.T) {
	d, geoms := testDiagram()
	var buf bytes.Buffer
	opts := PNGOptions{Width: 240, Height: 200, Padding: 10, Scale: 2}
	if err := RenderPNG(&buf, d, geoms, opts); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b != image.Rect(0, 0, 240, 200) {
		t.Fatalf("bounds = %v", b)
	}

	var green, white int
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			switch {
			case g > 0xc000 && r < 0x4000 && bl < 0x4000:
				green++
			case r > 0xf000 && g > 0xf000 && bl > 0xf000:
				white++
			}
		}
	}
	if green == 0 {
		t.Error("Expected opaque green arrow tips")
	}
	if white < b.Dx()*b.Dy()/2 {
		t.Errorf("Expected a mostly white canvas, got %d white pixels", white)
	}
}

func TestCells(t *testing.T) {
	var h curve.BezPath
	h.MoveTo(curve.Pt(0.5, 0.5))
	h.LineTo(curve.Pt(5.5, 0.5))
	got := Cells(h, 0.1)
	if len(got) != 6 {
		t.Fatalf("horizontal: %v", got)
	}
	for i, p := range got {
		if p != image.Pt(i, 0) {
			t.Errorf("cell %d = %v", i, p)
		}
	}

	var diag curve.BezPath
	diag.MoveTo(curve.Pt(0, 0))
	diag.LineTo(curve.Pt(3, 3))
	want := []image.Point{{0, 0}, {1, 1}, {2, 2}, {3, 3}}
	got = Cells(diag, 0.1)
	if len(got) != len(want) {
		t.Fatalf("diagonal: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("diagonal cell %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCellsCurveIsConnected(t *testing.T) {
	var p curve.BezPath
	p.MoveTo(curve.Pt(0, 0))
	p.CubicTo(curve.Pt(10, 0), curve.Pt(10, 10), curve.Pt(20, 10))
	cells := Cells(p, 0.05)
	if cells[0] != image.Pt(0, 0) || cells[len(cells)-1] != image.Pt(20, 10) {
		t.Errorf("endpoints %v .. %v", cells[0], cells[len(cells)-1])
	}
	for i := 1; i < len(cells); i++ {
		dx, dy := abs(cells[i].X-cells[i-1].X), abs(cells[i].Y-cells[i-1].Y)
		if dx > 1 || dy > 1 {
			t.Errorf("gap between %v and %v", cells[i-1], cells[i])
		}
	}
}

func TestCellsInClipsLongSegments(t *testing.T) {
	var h curve.BezPath
	h.MoveTo(curve.Pt(-1e7, 0.5))
	h.LineTo(curve.Pt(1e7, 0.5))
	got := CellsIn(h, 0.1, image.Rect(0, 0, 5, 3))
	want := []image.Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}
	if !slices.Equal(got, want) {
		t.Errorf("clipped = %v, want %v", got, want)
	}

	var out curve.BezPath
	out.MoveTo(curve.Pt(-10, -10))
	out.LineTo(curve.Pt(-1, 20))
	if got := CellsIn(out, 0.1, image.Rect(0, 0, 5, 3)); len(got) != 0 {
		t.Errorf("outside segment gave %v", got)
	}

	var diag curve.BezPath
	diag.MoveTo(curve.Pt(0, 0))
	diag.LineTo(curve.Pt(3, 3))
	if a, b := Cells(diag, 0.1), CellsIn(diag, 0.1, image.Rect(0, 0, 10, 10)); !slices.Equal(a, b) {
		t.Errorf("inside path: Cells %v, CellsIn %v", a, b)
	}
}

func TestCellTransform(t *testing.T) {
	p := curve.Pt(100, 40).Transform(CellTransform(0, 0))
	if math.Abs(p.X-10) > 1e-12 || math.Abs(p.Y-2) > 1e-12 {
		t.Errorf("got %v, want (10, 2)", p)
	}
	p = curve.Pt(100, 40).Transform(CellTransform(1, 1))
	if math.Abs(p.X-9) > 1e-12 || math.Abs(p.Y-1) > 1e-12 {
		t.Errorf("scrolled: got %v, want (9, 1)", p)
	}
}
