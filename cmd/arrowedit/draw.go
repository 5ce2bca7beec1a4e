package main

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/arrowkit/pkg/diagram"
	"github.com/ha1tch/arrowkit/pkg/outline"
	"github.com/ha1tch/arrowkit/pkg/render"
	"github.com/ha1tch/arrowkit/pkg/scene"
)

// Styles
var (
	styleDefault    = tcell.StyleDefault
	styleNode       = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleNodeSel    = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorGreen)
	styleNodeSource = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLabel      = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleStatus     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	styleMsgInfo    = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleMsgError   = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
	styleMsgSuccess = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorNavy)
	styleHelp       = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleBorder     = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

// flattening tolerance in cells
const cellTolerance = 0.1

func (ed *Editor) draw() {
	ed.screen.Clear()
	w, h := ed.screen.Size()
	canvasH := h - 2 // status and help bars

	ed.drawConnectors(w, canvasH)
	for i, n := range ed.diagram.Nodes {
		ed.drawNode(i, n, w, canvasH)
	}
	ed.drawTips(w, canvasH)

	if ed.mode == ModeHelp {
		ed.drawHelp(w, h)
	}
	ed.drawStatusBar(w, h)
}

// cellBox returns a node's box in screen cells, at least 2x2.
func (ed *Editor) cellBox(n diagram.Node) (x, y, w, h int) {
	r := render.CellTransform(ed.scrollX, ed.scrollY).TransformRectBoundingBox(n.Rect())
	x, y = int(math.Floor(r.X0)), int(math.Floor(r.Y0))
	w = max(int(math.Ceil(r.X1))-x, 2)
	h = max(int(math.Ceil(r.Y1))-y, 2)
	return x, y, w, h
}

func (ed *Editor) drawNode(i int, n diagram.Node, canvasW, canvasH int) {
	x, y, w, h := ed.cellBox(n)
	style := styleNode
	switch {
	case i == ed.selected:
		style = styleNodeSel
	case ed.mode == ModeEdge && i == ed.edgeFrom:
		style = styleNodeSource
	}
	ed.drawBox(x, y, w, h, style, canvasW, canvasH)

	label := n.Label
	if label == "" {
		label = n.ID
	}
	label = truncate(label, max(w-2, 1))
	ly := y + h/2
	if h < 3 {
		ly = y
	}
	ed.drawClipped(x+(w-len([]rune(label)))/2, ly, label, style, canvasW, canvasH)
}

// drawConnectors draws every connector curve as a trail of cells in the
// edge colour.
func (ed *Editor) drawConnectors(canvasW, canvasH int) {
	ct := render.CellTransform(ed.scrollX, ed.scrollY)
	clip := image.Rect(0, 0, canvasW, canvasH)
	for _, g := range ed.geoms {
		if !g.OK {
			continue
		}
		g.Connector.Walk(func(n *scene.Node) bool {
			if n.Stroke == nil || len(n.Path) == 0 {
				return true
			}
			style := tcell.StyleDefault.Foreground(tcellColor(*n.Stroke))
			for _, c := range render.CellsIn(n.Path.Transform(ct), cellTolerance, clip) {
				ed.setCell(c.X, c.Y, '•', style, canvasW, canvasH)
			}
			return true
		})
		if g.Edge.Label != "" {
			p := g.LabelAt.Transform(ct)
			l := []rune(g.Edge.Label)
			ed.drawClipped(int(math.Floor(p.X))-len(l)/2, int(math.Floor(p.Y)), g.Edge.Label, styleLabel, canvasW, canvasH)
		}
	}
}

// drawTips marks each connector apex with an arrow pointing into the
// target side.
func (ed *Editor) drawTips(canvasW, canvasH int) {
	ct := render.CellTransform(ed.scrollX, ed.scrollY)
	for _, g := range ed.geoms {
		if !g.OK {
			continue
		}
		p := g.Shape.Tip[0].Transform(ct).Floor()
		style := tcell.StyleDefault.Foreground(tcellColor(g.Shape.TipColor))
		ed.setCell(int(p.X), int(p.Y), tipGlyph(g.Shape.Target), style, canvasW, canvasH)
	}
}

func tipGlyph(target int) rune {
	switch target {
	case outline.Top:
		return '▼'
	case outline.Right:
		return '◀'
	case outline.Bottom:
		return '▲'
	case outline.Left:
		return '▶'
	}
	return '•'
}

func tcellColor(c color.NRGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func (ed *Editor) drawBox(x, y, w, h int, style tcell.Style, canvasW, canvasH int) {
	// Corners
	ed.setCell(x, y, '┌', style, canvasW, canvasH)
	ed.setCell(x+w-1, y, '┐', style, canvasW, canvasH)
	ed.setCell(x, y+h-1, '└', style, canvasW, canvasH)
	ed.setCell(x+w-1, y+h-1, '┘', style, canvasW, canvasH)

	// Only the visible part of the box is walked.
	x0, x1 := max(x+1, 0), min(x+w-1, canvasW)
	y0, y1 := max(y+1, 0), min(y+h-1, canvasH)
	for i := x0; i < x1; i++ {
		ed.setCell(i, y, '─', style, canvasW, canvasH)
		ed.setCell(i, y+h-1, '─', style, canvasW, canvasH)
	}
	for i := y0; i < y1; i++ {
		ed.setCell(x, i, '│', style, canvasW, canvasH)
		ed.setCell(x+w-1, i, '│', style, canvasW, canvasH)
	}

	// Fill
	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col++ {
			ed.setCell(col, row, ' ', style, canvasW, canvasH)
		}
	}
}

func (ed *Editor) setCell(x, y int, r rune, style tcell.Style, canvasW, canvasH int) {
	if x < 0 || y < 0 || x >= canvasW || y >= canvasH {
		return
	}
	ed.screen.SetContent(x, y, r, nil, style)
}

func (ed *Editor) drawClipped(x, y int, s string, style tcell.Style, canvasW, canvasH int) {
	for i, r := range []rune(s) {
		ed.setCell(x+i, y, r, style, canvasW, canvasH)
	}
}

func (ed *Editor) drawString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		ed.screen.SetContent(x+i, y, r, nil, style)
	}
}

var helpLines = []string{
	"Tab / Shift+Tab   select next / previous box",
	"Arrows            move the selected box",
	"Shift+Arrows      scroll the view",
	"Mouse drag        move a box",
	"n                 new box",
	"e                 new edge from the selected box",
	"d, Del            delete the selected box",
	"Ctrl+Z / Ctrl+Y   undo / redo",
	"Ctrl+S            save",
	"q, Esc            quit",
}

func (ed *Editor) drawHelp(w, h int) {
	bw, bh := 54, len(helpLines)+4
	x, y := max((w-bw)/2, 0), max((h-bh)/2, 0)
	ed.drawBox(x, y, bw, bh, styleBorder, w, h)
	ed.drawString(x+2, y, " Help ", styleBorder.Bold(true))
	for i, l := range helpLines {
		ed.drawString(x+2, y+2+i, l, styleDefault)
	}
}

func (ed *Editor) drawStatusBar(w, h int) {
	y := h - 1

	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleStatus)
	}

	fileInfo := "[New]"
	if ed.filename != "" {
		if len(ed.filename) > 30 {
			fileInfo = filepath.Base(ed.filename)
		} else {
			fileInfo = ed.filename
		}
	}
	if ed.modified {
		fileInfo += " *"
	}
	ed.drawString(1, y, fileInfo, styleStatus)

	modeStr := ed.modeString()
	ed.drawString(w/2-len(modeStr)/2, y, modeStr, styleStatus)

	if ed.message != "" {
		style := styleMsgInfo
		switch ed.messageType {
		case MsgError:
			style = styleMsgError
		case MsgSuccess, MsgWarning:
			style = styleMsgSuccess
		}
		elapsed := time.Now().UnixMilli() - ed.messageFlashStart.Load()
		if flashes(ed.messageType) && flashInverted(elapsed) {
			style = style.Reverse(true)
		}
		ed.drawString(w-len([]rune(ed.message))-2, y, ed.message, style)
	}

	// Help bar
	y = h - 2
	for x := 0; x < w; x++ {
		ed.screen.SetContent(x, y, ' ', nil, styleDefault)
	}
	ed.drawString(1, y, ed.helpString(), styleHelp)
}

// flashInverted reports whether a flashing message is drawn inverted
// elapsed milliseconds after it was shown: normal, inverted, normal,
// inverted in 125ms phases, then normal.
func flashInverted(elapsed int64) bool {
	if elapsed < 0 || elapsed >= 500 {
		return false
	}
	phase := elapsed / 125
	return phase == 1 || phase == 3
}

func flashes(t MessageType) bool {
	switch t {
	case MsgError, MsgSuccess, MsgWarning:
		return true
	}
	return false
}

func (ed *Editor) modeString() string {
	if ed.dragging {
		return "MOVE"
	}
	switch ed.mode {
	case ModeEdge:
		return "ADD EDGE"
	case ModeHelp:
		return "HELP"
	}
	if ed.selected >= 0 && ed.selected < len(ed.diagram.Nodes) {
		n := ed.diagram.Nodes[ed.selected]
		return fmt.Sprintf("%s (%g, %g)", n.ID, n.X, n.Y)
	}
	return ""
}

func (ed *Editor) helpString() string {
	switch ed.mode {
	case ModeEdge:
		return "Tab:Target  Enter/e:Connect  Esc:Cancel"
	case ModeHelp:
		return "Any key:Close"
	}
	return "Tab:Select  Arrows:Move  n:New  e:Edge  d:Delete  Ctrl+S:Save  ?:Help  q:Quit"
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
