package render

import (
	"image"

	"honnef.co/go/curve"
)

// Cell sizes of the terminal grid in diagram units.
const (
	CellW = 10.0
	CellH = 20.0
)

// CellTransform maps diagram units to terminal cells, shifted by a
// scroll offset in cells.
func CellTransform(scrollX, scrollY int) curve.Affine {
	return curve.Scale(1/CellW, 1/CellH).ThenTranslate(curve.Vec(float64(-scrollX), float64(-scrollY)))
}

// Cells flattens path into line segments and returns the grid cells they
// pass through, in drawing order without consecutive duplicates. The path
// must already be in cell coordinates.
func Cells(path curve.BezPath, tolerance float64) []image.Point {
	return cells(path, tolerance, nil)
}

// CellsIn is Cells limited to the cells inside clip. Segments are clipped
// before they are walked, so paths reaching far outside clip stay cheap.
func CellsIn(path curve.BezPath, tolerance float64, clip image.Rectangle) []image.Point {
	return cells(path, tolerance, &clip)
}

func cells(path curve.BezPath, tolerance float64, clip *image.Rectangle) []image.Point {
	var out []image.Point
	add := func(p image.Point) {
		if clip != nil && !p.In(*clip) {
			return
		}
		if n := len(out); n > 0 && out[n-1] == p {
			return
		}
		out = append(out, p)
	}
	segment := func(a, b curve.Point) {
		if clip != nil {
			var ok bool
			if a, b, ok = clipSegment(a, b, *clip); !ok {
				return
			}
		}
		line(a, b, add)
	}

	var pen, start curve.Point
	for el := range curve.Flatten(path.Elements(), tolerance) {
		switch el.Kind {
		case curve.MoveToKind:
			pen, start = el.P0, el.P0
			if clip == nil || inside(pen, *clip) {
				add(cellOf(pen))
			}
		case curve.LineToKind:
			segment(pen, el.P0)
			pen = el.P0
		case curve.ClosePathKind:
			segment(pen, start)
			pen = start
		}
	}
	return out
}

func inside(p curve.Point, r image.Rectangle) bool {
	return p.X >= float64(r.Min.X) && p.X <= float64(r.Max.X) &&
		p.Y >= float64(r.Min.Y) && p.Y <= float64(r.Max.Y)
}

// clipSegment clips a-b to r with the Liang-Barsky algorithm.
func clipSegment(a, b curve.Point, r image.Rectangle) (curve.Point, curve.Point, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, a.X - float64(r.Min.X)},
		{dx, float64(r.Max.X) - a.X},
		{-dy, a.Y - float64(r.Min.Y)},
		{dy, float64(r.Max.Y) - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return a, b, false
			}
			t0 = max(t0, t)
		} else {
			if t < t0 {
				return a, b, false
			}
			t1 = min(t1, t)
		}
	}
	return curve.Pt(a.X+t0*dx, a.Y+t0*dy), curve.Pt(a.X+t1*dx, a.Y+t1*dy), true
}

func cellOf(p curve.Point) image.Point {
	f := p.Floor()
	return image.Pt(int(f.X), int(f.Y))
}

// line walks the cells between a and b with Bresenham's algorithm.
func line(a, b curve.Point, add func(image.Point)) {
	p0, p1 := cellOf(a), cellOf(b)
	dx, dy := abs(p1.X-p0.X), -abs(p1.Y-p0.Y)
	sx, sy := sign(p1.X-p0.X), sign(p1.Y-p0.Y)
	err := dx + dy
	for {
		add(p0)
		if p0 == p1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			p0.X += sx
		}
		if e2 <= dx {
			err += dx
			p0.Y += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
