// Native PNG rendering for routed diagrams.
// Draws the same content as the SVG renderer with a supersampled rasteriser.

package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"slices"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
	"honnef.co/go/curve"

	"github.com/ha1tch/arrowkit/pkg/diagram"
	"github.com/ha1tch/arrowkit/pkg/scene"
)

// PNGOptions configures PNG rendering.
type PNGOptions struct {
	Width    int
	Height   int
	Padding  float64
	FontSize float64
	Title    string
	Scale    int // supersampling factor, 0 for 4
}

// DefaultPNGOptions returns the standard canvas.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{
		Width:    800,
		Height:   600,
		Padding:  40,
		FontSize: 14,
		Scale:    4,
	}
}

var (
	colorWhite  = color.NRGBA{255, 255, 255, 255}
	colorBorder = color.NRGBA{51, 51, 51, 255} // #333
)

// flattening tolerance in supersampled pixels
const rasterTolerance = 0.25

// renderContext holds the supersampled canvas and its drawing state.
type renderContext struct {
	img   *image.RGBA
	ras   *vector.Rasterizer
	face  font.Face
	small font.Face
}

func newRenderContext(img *image.RGBA, scale int, fontSize float64) (*renderContext, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face := func(size float64) (font.Face, error) {
		return opentype.NewFace(fnt, &opentype.FaceOptions{
			Size:    size * float64(scale),
			DPI:     72,
			Hinting: font.HintingNone,
		})
	}
	big, err := face(fontSize)
	if err != nil {
		return nil, err
	}
	small, err := face(max(fontSize-2, 8))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &renderContext{
		img:   img,
		ras:   vector.NewRasterizer(b.Dx(), b.Dy()),
		face:  big,
		small: small,
	}, nil
}

// RenderPNG renders the diagram at Scale times the requested size and
// downsamples the result.
func RenderPNG(w io.Writer, d *diagram.Diagram, geoms []diagram.EdgeGeometry, opts PNGOptions) error {
	def := DefaultPNGOptions()
	if opts.Width <= 0 {
		opts.Width = def.Width
	}
	if opts.Height <= 0 {
		opts.Height = def.Height
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.Padding < 0 {
		opts.Padding = def.Padding
	}
	if opts.Scale <= 0 {
		opts.Scale = def.Scale
	}

	large, err := renderImage(d, geoms, opts)
	if err != nil {
		return err
	}
	final := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Src, nil)
	return png.Encode(w, final)
}

func renderImage(d *diagram.Diagram, geoms []diagram.EdgeGeometry, opts PNGOptions) (*image.RGBA, error) {
	s := opts.Scale
	W, H := opts.Width*s, opts.Height*s
	img := image.NewRGBA(image.Rect(0, 0, W, H))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorWhite), image.Point{}, draw.Src)

	ctx, err := newRenderContext(img, s, opts.FontSize)
	if err != nil {
		return nil, err
	}

	top := 0.0
	if opts.Title != "" {
		top = titleSpace
	}
	fs := float64(s)
	vp := Fit(ContentBounds(d, geoms), float64(W), float64(H), opts.Padding*fs, top*fs)

	for _, n := range d.Nodes {
		r := vp.Rect(n.Rect())
		var p curve.BezPath
		p.MoveTo(curve.Pt(r.X0, r.Y0))
		p.LineTo(curve.Pt(r.X1, r.Y0))
		p.LineTo(curve.Pt(r.X1, r.Y1))
		p.LineTo(curve.Pt(r.X0, r.Y1))
		p.ClosePath()
		ctx.fill(p, colorWhite)
		ctx.stroke(p, 2*fs, colorBorder)
	}

	for _, g := range geoms {
		if !g.OK {
			continue
		}
		g.Connector.Walk(func(n *scene.Node) bool {
			if len(n.Path) == 0 {
				return true
			}
			p := vp.Path(n.Path)
			if n.Fill != nil {
				ctx.fill(p, *n.Fill)
			}
			if n.Stroke != nil {
				ctx.stroke(p, n.StrokeWidth*vp.Scale, *n.Stroke)
			}
			return true
		})
	}

	for _, n := range d.Nodes {
		label := n.Label
		if label == "" {
			label = n.ID
		}
		ctx.text(ctx.face, vp.Point(n.Center()), label, colorBorder)
	}
	for _, g := range geoms {
		if g.OK && g.Edge.Label != "" {
			ctx.text(ctx.small, vp.Point(g.LabelAt), g.Edge.Label, colorBorder)
		}
	}
	if opts.Title != "" {
		ctx.text(ctx.face, curve.Pt(float64(W)/2, 20*fs), opts.Title, colorBorder)
	}
	return img, nil
}

// fill rasterises a closed path with the non-zero rule. Paths with
// non-finite coordinates are skipped.
func (ctx *renderContext) fill(p curve.BezPath, c color.Color) {
	if len(p) == 0 || p.IsNaN() || p.IsInf() {
		return
	}
	b := ctx.img.Bounds()
	ctx.ras.Reset(b.Dx(), b.Dy())
	open := false
	for _, el := range p {
		switch el.Kind {
		case curve.MoveToKind:
			if open {
				ctx.ras.ClosePath()
			}
			ctx.ras.MoveTo(float32(el.P0.X), float32(el.P0.Y))
			open = true
		case curve.LineToKind:
			ctx.ras.LineTo(float32(el.P0.X), float32(el.P0.Y))
		case curve.QuadToKind:
			ctx.ras.QuadTo(float32(el.P0.X), float32(el.P0.Y), float32(el.P1.X), float32(el.P1.Y))
		case curve.CubicToKind:
			ctx.ras.CubeTo(float32(el.P0.X), float32(el.P0.Y), float32(el.P1.X), float32(el.P1.Y), float32(el.P2.X), float32(el.P2.Y))
		case curve.ClosePathKind:
			ctx.ras.ClosePath()
			open = false
		}
	}
	if open {
		ctx.ras.ClosePath()
	}
	ctx.ras.Draw(ctx.img, b, image.NewUniform(c), image.Point{})
}

// stroke expands p into an outline of the given width and fills it.
// Zero-length paths draw nothing.
func (ctx *renderContext) stroke(p curve.BezPath, width float64, c color.Color) {
	if width <= 0 || degenerate(p) {
		return
	}
	style := curve.DefaultStroke.WithWidth(width)
	ctx.fill(curve.BezPath(slices.Collect(curve.StrokePath(p.Elements(), style, curve.StrokeOpts{}, rasterTolerance))), c)
}

func degenerate(p curve.BezPath) bool {
	if len(p) == 0 {
		return true
	}
	b := p.ControlBox()
	return b.Width() == 0 && b.Height() == 0
}

// text draws s centred on p.
func (ctx *renderContext) text(face font.Face, p curve.Point, s string, c color.Color) {
	width := font.MeasureString(face, s)
	ascent := face.Metrics().Ascent
	dot := fixed.Point26_6{
		X: fixed.Int26_6(p.X*64) - width/2,
		Y: fixed.Int26_6(p.Y*64) + ascent*35/100,
	}
	dr := &font.Drawer{
		Dst:  ctx.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  dot,
	}
	dr.DrawString(s)
}
