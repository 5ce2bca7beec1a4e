package diagram

import (
	"errors"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"honnef.co/go/curve"

	"github.com/ha1tch/arrowkit/pkg/arrow"
)

func ptr(f float64) *float64 { return &f }

func sample() *Diagram {
	return &Diagram{
		Name: "pipeline",
		Nodes: []Node{
			{ID: "a", Label: "Source", X: 0, Y: 0, W: 100, H: 50},
			{ID: "b", Label: "Sink", X: 200, Y: 0, W: 100, H: 50},
			{ID: "c", X: 0, Y: 300, W: 100, H: 50},
		},
		Edges: []Edge{
			{From: "a", To: "b", Label: "push"},
			{From: "a", To: "c", Color: "#ff0000", Thickness: 10, T: ptr(0.25)},
			{From: "c", To: "c"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Diagram)
		valid  bool
	}{
		{"ok", func(d *Diagram) {}, true},
		{"empty id", func(d *Diagram) { d.Nodes[0].ID = "" }, false},
		{"duplicate id", func(d *Diagram) { d.Nodes[1].ID = "a" }, false},
		{"zero width", func(d *Diagram) { d.Nodes[2].W = 0 }, false},
		{"unknown source", func(d *Diagram) { d.Edges[0].From = "x" }, false},
		{"unknown target", func(d *Diagram) { d.Edges[0].To = "x" }, false},
		{"t above one", func(d *Diagram) { d.Edges[1].T = ptr(1.5) }, false},
		{"t zero", func(d *Diagram) { d.Edges[1].T = ptr(0) }, true},
		{"negative thickness", func(d *Diagram) { d.Edges[1].Thickness = -1 }, false},
		{"bad colour", func(d *Diagram) { d.Edges[1].Color = "#zzzzzz" }, false},
		{"bad style alpha", func(d *Diagram) { d.Style.Alpha = ptr(2) }, false},
		{"bad style t", func(d *Diagram) { d.Style.T = ptr(-0.1) }, false},
		{"nan width", func(d *Diagram) { d.Nodes[0].W = math.NaN() }, false},
		{"nan height", func(d *Diagram) { d.Nodes[0].H = math.NaN() }, false},
		{"infinite width", func(d *Diagram) { d.Nodes[0].W = math.Inf(1) }, false},
		{"infinite x", func(d *Diagram) { d.Nodes[1].X = math.Inf(-1) }, false},
		{"nan y", func(d *Diagram) { d.Nodes[1].Y = math.NaN() }, false},
		{"right edge overflows", func(d *Diagram) { d.Nodes[2].X, d.Nodes[2].W = math.MaxFloat64, math.MaxFloat64 }, false},
		{"nan edge t", func(d *Diagram) { d.Edges[1].T = ptr(math.NaN()) }, false},
		{"nan thickness", func(d *Diagram) { d.Edges[1].Thickness = math.NaN() }, false},
		{"infinite thickness", func(d *Diagram) { d.Style.Thickness = math.Inf(1) }, false},
		{"nan style alpha", func(d *Diagram) { d.Style.Alpha = ptr(math.NaN()) }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := sample()
			tc.mutate(d)
			err := d.Validate()
			if tc.valid && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tc.valid {
				if err == nil {
					t.Fatal("Expected validation error")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error %v does not wrap ErrInvalid", err)
				}
			}
		})
	}
}

func TestParseYAMLRejectsNonFinite(t *testing.T) {
	for _, doc := range []string{
		"nodes:\n  - {id: a, x: 0, y: 0, w: .nan, h: 10}\n",
		"nodes:\n  - {id: a, x: .inf, y: 0, w: 10, h: 10}\n",
		"nodes:\n  - {id: a, x: 0, y: -.inf, w: 10, h: 10}\n",
		"nodes:\n  - {id: a, x: 0, y: 0, w: 10, h: 10}\nstyle: {alpha: .nan}\n",
	} {
		if _, err := ParseYAML([]byte(doc)); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseYAML(%q) = %v, want ErrInvalid", doc, err)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := sample()
	d.Style = Style{Color: "#0000ff", Alpha: ptr(0.5), Thickness: 12}

	data, err := ToJSON(d, true)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	got, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	d := sample()
	data, err := ToYAML(d)
	if err != nil {
		t.Fatalf("ToYAML: %v", err)
	}
	if !strings.Contains(string(data), "from: a") {
		t.Errorf("unexpected YAML:\n%s", data)
	}
	got, err := ParseYAML(data)
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if diff := cmp.Diff(d, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseYAMLDocument(t *testing.T) {
	src := `
name: demo
style:
  color: "#336699"
  thickness: 8
nodes:
  - {id: a, x: 0, y: 0, w: 100, h: 50}
  - {id: b, x: 200, y: 0, w: 100, h: 50}
edges:
  - from: a
    to: b
    t: 0.5
`
	d, err := ParseYAML([]byte(src))
	if err != nil {
		t.Fatalf("ParseYAML: %v", err)
	}
	if d.Name != "demo" || len(d.Nodes) != 2 || len(d.Edges) != 1 {
		t.Fatalf("unexpected diagram %+v", d)
	}
	if d.Edges[0].T == nil || *d.Edges[0].T != 0.5 {
		t.Errorf("edge t = %v", d.Edges[0].T)
	}
	if d.Style.Color != "#336699" || d.Style.Thickness != 8 {
		t.Errorf("style = %+v", d.Style)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := ParseJSON([]byte(`{"nodes":[{"id":"a","w":0,"h":1}],"edges":[]}`))
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
	if _, err := ParseJSON([]byte(`{`)); err == nil {
		t.Error("Expected syntax error")
	}
	if _, err := ParseYAML([]byte("nodes: [")); err == nil {
		t.Error("Expected YAML syntax error")
	}
}

func TestReadWriteFile(t *testing.T) {
	dir := t.TempDir()
	d := sample()
	for _, name := range []string{"d.json", "d.yaml", "d.yml"} {
		path := filepath.Join(dir, name)
		if err := WriteFile(path, d); err != nil {
			t.Fatalf("WriteFile %s: %v", name, err)
		}
		got, err := ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile %s: %v", name, err)
		}
		if diff := cmp.Diff(d, got); diff != "" {
			t.Errorf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}

	if err := WriteFile(filepath.Join(dir, "d.txt"), d); err == nil {
		t.Error("Expected error for unknown extension")
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(filepath.Join(dir, "bad.json")); err == nil {
		t.Error("Expected error for malformed file")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.NRGBA
		ok   bool
	}{
		{"#00ff00", color.NRGBA{G: 255, A: 128}, true},
		{"ff8000", color.NRGBA{R: 255, G: 128, A: 128}, true},
		{"#fff", color.NRGBA{R: 255, G: 255, B: 255, A: 128}, true},
		{"#12345", color.NRGBA{}, false},
		{"#zzzzzz", color.NRGBA{}, false},
		{"green", color.NRGBA{}, false},
	}
	for _, tc := range tests {
		got, err := ParseColor(tc.in, 128)
		if (err == nil) != tc.ok {
			t.Errorf("ParseColor(%q) error = %v", tc.in, err)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if s := FormatColor(color.NRGBA{R: 0x33, G: 0x66, B: 0x99, A: 10}); s != "#336699" {
		t.Errorf("FormatColor = %s", s)
	}
}

func TestRectOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b curve.Rect
		want float64
	}{
		{"disjoint", curve.Rect{X1: 10, Y1: 10}, curve.Rect{X0: 20, Y0: 20, X1: 30, Y1: 30}, 0},
		{"touching", curve.Rect{X1: 10, Y1: 10}, curve.Rect{X0: 10, X1: 20, Y1: 10}, 0},
		{"partial", curve.Rect{X1: 10, Y1: 10}, curve.Rect{X0: 5, Y0: 5, X1: 15, Y1: 15}, 25},
		{"contained", curve.Rect{X1: 10, Y1: 10}, curve.Rect{X0: 2, Y0: 2, X1: 4, Y1: 4}, 4},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := RectOverlap(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("RectOverlap = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPlaceLabelAvoidsObstacles(t *testing.T) {
	// Block the space above the anchor; the label should move below.
	lp := NewLabelPlacer([]curve.Rect{{X0: -50, Y0: -40, X1: 50, Y1: -1}})
	p := lp.PlaceLabel(curve.Pt(0, 0), 20, 10, 2)
	if p != curve.Pt(0, 7) {
		t.Errorf("label at %v, want (0, 7)", p)
	}
	if n := len(lp.Obstacles()); n != 2 {
		t.Errorf("Expected 2 obstacles, got %d", n)
	}
}

func TestPlacedLabelsBecomeObstacles(t *testing.T) {
	lp := NewLabelPlacer(nil)
	p := lp.PlaceLabel(curve.Pt(0, 0), 20, 10, 2)
	q := lp.PlaceLabel(curve.Pt(0, 0), 20, 10, 2)
	if p != curve.Pt(0, -7) || q != curve.Pt(0, 7) {
		t.Errorf("labels at %v and %v, want above then below", p, q)
	}
}

func TestPlaceLabelOnCurve(t *testing.T) {
	lp := NewLabelPlacer(nil)
	// Horizontal tangent: the label sits directly above or below the point.
	p := lp.PlaceLabelOnCurve(curve.Pt(100, 100), curve.Vec(1, 0), 40, 10, 5)
	if math.Abs(p.X-100) > 1e-9 || math.Abs(math.Abs(p.Y-100)-10) > 1e-9 {
		t.Errorf("label at %v", p)
	}
	band := curve.Rect{X0: 80, Y0: 95, X1: 120, Y1: 105}
	if RectOverlap(LabelBox(p, 40, 10), band) > 0 {
		t.Errorf("label %v overlaps the curve band", p)
	}
}

func TestRoute(t *testing.T) {
	d := sample()
	geoms := Route(d, arrow.DefaultOptions())
	if len(geoms) != 3 {
		t.Fatalf("Expected 3 geometries, got %d", len(geoms))
	}

	ab := geoms[0]
	if !ab.OK {
		t.Fatal("a->b should route")
	}
	if ab.SourceSide() != "right" || ab.TargetSide() != "left" {
		t.Errorf("a->b sides %s -> %s", ab.SourceSide(), ab.TargetSide())
	}
	if ab.Midpoint.Distance(curve.Pt(150, 25)) > 1e-9 {
		t.Errorf("a->b midpoint %v", ab.Midpoint)
	}
	if ab.LabelW == 0 || ab.LabelAt == (curve.Point{}) {
		t.Error("a->b label was not placed")
	}
	for _, n := range d.Nodes {
		if RectOverlap(LabelBox(ab.LabelAt, ab.LabelW, ab.LabelH), n.Rect()) > 0 {
			t.Errorf("label overlaps node %s", n.ID)
		}
	}
	if len(ab.Connector.Children) != 2 {
		t.Errorf("connector has %d children", len(ab.Connector.Children))
	}

	ac := geoms[1]
	if !ac.OK || ac.SourceSide() != "bottom" || ac.TargetSide() != "top" {
		t.Errorf("a->c: ok=%v %s -> %s", ac.OK, ac.SourceSide(), ac.TargetSide())
	}
	if ac.Shape.Thickness != 10 {
		t.Errorf("a->c thickness %v", ac.Shape.Thickness)
	}
	if ac.Shape.Color != (color.NRGBA{R: 255, A: 128}) || ac.Shape.TipColor != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("a->c colours %v %v", ac.Shape.Color, ac.Shape.TipColor)
	}

	self := geoms[2]
	if self.OK || self.Midpoint != (curve.Point{}) || len(self.Connector.Children) != 0 {
		t.Errorf("self edge should have no connector: %+v", self)
	}
	if self.SourceSide() != "" {
		t.Errorf("self edge side %q", self.SourceSide())
	}
}

func TestEdgeOptions(t *testing.T) {
	d := &Diagram{Style: Style{Color: "#0000ff", Alpha: ptr(1), Thickness: 4, T: ptr(0.3)}}
	def := arrow.DefaultOptions()

	o := EdgeOptions(d, Edge{}, def)
	want := arrow.Options{
		Thickness: 4,
		Color:     color.NRGBA{B: 255, A: 255},
		TipColor:  color.NRGBA{B: 255, A: 255},
		T:         0.3,
	}
	if diff := cmp.Diff(want, o); diff != "" {
		t.Errorf("style options (-want +got):\n%s", diff)
	}

	o = EdgeOptions(d, Edge{Color: "#ff0000", Thickness: 9, T: ptr(0)}, def)
	if o.Thickness != 9 || o.T != 0 || o.Color != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("edge options %+v", o)
	}

	if o := EdgeOptions(&Diagram{}, Edge{}, def); o != def {
		t.Errorf("empty style changed defaults: %+v", o)
	}
}

func TestOverlapping(t *testing.T) {
	d := sample()
	if got := d.Overlapping(); len(got) != 0 {
		t.Errorf("unexpected overlaps %v", got)
	}
	d.Nodes[1].X = 50
	got := d.Overlapping()
	if len(got) != 1 || got[0] != [2]string{"a", "b"} {
		t.Errorf("overlaps = %v", got)
	}
}

func TestBounds(t *testing.T) {
	b := sample().Bounds()
	want := curve.Rect{X0: 0, Y0: 0, X1: 300, Y1: 350}
	if b != want {
		t.Errorf("Bounds = %+v, want %+v", b, want)
	}
}
