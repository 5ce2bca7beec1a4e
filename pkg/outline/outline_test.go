package outline

import (
	"math"
	"testing"

	"honnef.co/go/curve"
)

func TestFromRectNormals(t *testing.T) {
	o := FromBox(0, 0, 100, 50)
	if len(o) != 4 {
		t.Fatalf("Expected 4 sides, got %d", len(o))
	}

	tests := []struct {
		side   int
		normal curve.Vec2
		mid    curve.Point
	}{
		{Top, curve.Vec(0, -1), curve.Pt(50, 0)},
		{Right, curve.Vec(1, 0), curve.Pt(100, 25)},
		{Bottom, curve.Vec(0, 1), curve.Pt(50, 50)},
		{Left, curve.Vec(-1, 0), curve.Pt(0, 25)},
	}

	for _, tc := range tests {
		t.Run(SideName(tc.side), func(t *testing.T) {
			s := o[tc.side]
			if math.Abs(s.Normal.X-tc.normal.X) > 1e-12 || math.Abs(s.Normal.Y-tc.normal.Y) > 1e-12 {
				t.Errorf("normal = %v, want %v", s.Normal, tc.normal)
			}
			m := s.Midpoint()
			if m.Distance(tc.mid) > 1e-9 {
				t.Errorf("midpoint = %v, want %v", m, tc.mid)
			}
		})
	}
}

func TestNormalsPointOutward(t *testing.T) {
	r := curve.Rect{X0: 10, Y0: 20, X1: 70, Y1: 140}
	centre := r.Center()
	for i, s := range FromRect(r) {
		out := s.Midpoint().Sub(centre)
		if out.Dot(s.Normal) <= 0 {
			t.Errorf("side %s normal %v points inward", SideName(i), s.Normal)
		}
	}
}

func TestFromRectNormalisesInvertedRect(t *testing.T) {
	a := FromRect(curve.Rect{X0: 100, Y0: 50, X1: 0, Y1: 0})
	b := FromBox(0, 0, 100, 50)
	for i := range a {
		if a[i].Line != b[i].Line {
			t.Errorf("side %d: %v != %v", i, a[i].Line, b[i].Line)
		}
	}
}

func TestSideP(t *testing.T) {
	s := NewSide(curve.Pt(0, 0), curve.Pt(10, 0))
	if p := s.P(0.25); p != curve.Pt(2.5, 0) {
		t.Errorf("P(0.25) = %v", p)
	}
	if p := s.P(1); p != curve.Pt(10, 0) {
		t.Errorf("P(1) = %v", p)
	}
}

func TestNormalAngle(t *testing.T) {
	o := FromBox(0, 0, 10, 10)
	want := map[int]float64{
		Top:    -math.Pi / 2,
		Right:  0,
		Bottom: math.Pi / 2,
		Left:   math.Pi,
	}
	for side, angle := range want {
		if got := o[side].NormalAngle(); math.Abs(got-angle) > 1e-12 {
			t.Errorf("%s: angle %.4f, want %.4f", SideName(side), got, angle)
		}
	}
}

func TestDegenerateSide(t *testing.T) {
	s := NewSide(curve.Pt(5, 5), curve.Pt(5, 5))
	if !s.Degenerate() {
		t.Error("zero-length side should be degenerate")
	}
	if FromBox(0, 0, 1, 1)[Top].Degenerate() {
		t.Error("unit side should not be degenerate")
	}
}

func TestBounds(t *testing.T) {
	b := FromBox(-5, 3, 20, 7).Bounds()
	want := curve.Rect{X0: -5, Y0: 3, X1: 15, Y1: 10}
	if b != want {
		t.Errorf("Bounds = %+v, want %+v", b, want)
	}
	if (Outlines{}).Bounds() != (curve.Rect{}) {
		t.Error("empty outlines should have zero bounds")
	}
}
