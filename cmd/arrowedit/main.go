// Command arrowedit is a terminal editor for connector diagrams.
// Boxes are moved with the mouse or the arrow keys and every connector is
// rerouted as soon as a box moves.
package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/arrowkit/internal/config"
	"github.com/ha1tch/arrowkit/internal/log"
	"github.com/ha1tch/arrowkit/pkg/arrow"
	"github.com/ha1tch/arrowkit/pkg/diagram"
	"github.com/ha1tch/arrowkit/pkg/render"
)

// Editor is the terminal editor state. All fields are owned by the event
// loop in run.
type Editor struct {
	screen      tcell.Screen
	diagram     *diagram.Diagram
	geoms       []diagram.EdgeGeometry
	defaults    arrow.Options
	filename    string
	modified    bool
	mode        Mode
	message     string
	messageType MessageType
	config      config.Config
	configPath  string // "" to never write the config back

	// View scroll in cells
	scrollX int
	scrollY int

	selected int // -1 = none
	edgeFrom int // source of a pending edge, -1 = none

	// Dragging state (mouse)
	dragging   bool
	dragIdx    int
	lastMouseX int
	lastMouseY int

	undoStack []Snapshot
	redoStack []Snapshot

	quitArmed bool

	// Contents of the file as last read or written, to tell external
	// changes from our own saves.
	onDisk []byte

	// Unix milliseconds when the message was shown, read by the refresh
	// goroutine.
	messageFlashStart atomic.Int64
}

// Snapshot captures the diagram for undo/redo.
type Snapshot struct {
	Nodes []diagram.Node
	Edges []diagram.Edge
}

// Mode represents editor mode
type Mode int

const (
	ModeCanvas Mode = iota
	// picking the target of a new edge
	ModeEdge
	ModeHelp
)

// MessageType for status messages
type MessageType int

const (
	MsgInfo    MessageType = iota // Informative, no flash
	MsgError                      // Errors, flash
	MsgSuccess                    // State changes, flash
	MsgWarning                    // Warnings, flash
)

const maxUndoLevels = 50

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage: arrowedit <diagram.json|diagram.yaml>")
		os.Exit(1)
	}

	// fileCfg is written back on exit, without environment overrides.
	fileCfg := config.Defaults()
	cfgPath, err := config.Path()
	if err == nil {
		c, err := config.Load(cfgPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			cfgPath = ""
		} else {
			fileCfg = c
		}
	}
	cfg := fileCfg
	config.ApplyEnv(&cfg)

	logFile, err := cfg.LogFile()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	// The console belongs to the screen, so only the log file is written.
	log.Init(log.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   logFile,
		Output: io.Discard,
	})
	defer log.Close()

	defaults, err := cfg.ArrowOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error in configuration: %v\n", err)
		os.Exit(1)
	}

	ed := newEditor(defaults)
	ed.config = fileCfg
	ed.configPath = cfgPath
	if err := ed.loadFile(os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	screen.Clear()
	ed.screen = screen

	stop, err := ed.watchFile()
	if err != nil {
		log.WithComponent("edit").Warn("file watch disabled", "err", err)
		stop = func() {}
	}
	ed.run()
	stop()

	screen.Fini()
	ed.saveConfig()
}

func newEditor(defaults arrow.Options) *Editor {
	return &Editor{
		diagram:  &diagram.Diagram{},
		defaults: defaults,
		config:   config.Defaults(),
		selected: -1,
		edgeFrom: -1,
		dragIdx:  -1,
	}
}

func (ed *Editor) run() {
	done := make(chan struct{})
	defer close(done)
	// Periodic refresh while a message is flashing.
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}
			if start := ed.messageFlashStart.Load(); start > 0 {
				elapsed := time.Now().UnixMilli() - start
				if elapsed >= 0 && elapsed < 700 {
					ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
				}
			}
		}
	}()

	for {
		ed.draw()
		ed.screen.Show()

		ev := ed.screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			return
		case *tcell.EventResize:
			ed.screen.Sync()
		case *tcell.EventKey:
			if ed.handleKey(ev) {
				return
			}
		case *tcell.EventMouse:
			ed.handleMouse(ev)
		case *tcell.EventInterrupt:
			if _, ok := ev.Data().(fileChanged); ok {
				ed.reloadFromDisk()
			}
		}
	}
}

// reroute recomputes every connector. It runs on the event loop after each
// change to the diagram.
func (ed *Editor) reroute() {
	ed.geoms = diagram.Route(ed.diagram, ed.defaults)
}

func (ed *Editor) handleKey(ev *tcell.EventKey) bool {
	if !isQuitKey(ev) {
		ed.quitArmed = false
	}

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return ed.requestQuit()
	case tcell.KeyCtrlS:
		ed.save()
		return false
	case tcell.KeyCtrlZ:
		ed.undo()
		return false
	case tcell.KeyCtrlY:
		ed.redo()
		return false
	}

	switch ed.mode {
	case ModeHelp:
		ed.mode = ModeCanvas
		return false
	case ModeEdge:
		return ed.handleEdgeKey(ev)
	}
	return ed.handleCanvasKey(ev)
}

func (ed *Editor) handleCanvasKey(ev *tcell.EventKey) bool {
	shift := ev.Modifiers()&tcell.ModShift != 0
	switch ev.Key() {
	case tcell.KeyEscape:
		if ed.selected >= 0 {
			ed.selected = -1
			return false
		}
		return ed.requestQuit()
	case tcell.KeyTab:
		ed.cycleSelection(1)
	case tcell.KeyBacktab:
		ed.cycleSelection(-1)
	case tcell.KeyUp:
		ed.arrowKey(0, -1, shift)
	case tcell.KeyDown:
		ed.arrowKey(0, 1, shift)
	case tcell.KeyLeft:
		ed.arrowKey(-1, 0, shift)
	case tcell.KeyRight:
		ed.arrowKey(1, 0, shift)
	case tcell.KeyDelete, tcell.KeyBackspace, tcell.KeyBackspace2:
		ed.deleteSelected()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return ed.requestQuit()
		case 'n':
			ed.addNode()
		case 'e':
			ed.startEdge()
		case 'd':
			ed.deleteSelected()
		case '?':
			ed.mode = ModeHelp
		}
	}
	return false
}

func (ed *Editor) handleEdgeKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		ed.edgeFrom = -1
		ed.mode = ModeCanvas
		ed.showMessage("Edge cancelled", MsgInfo)
	case tcell.KeyTab:
		ed.cycleSelection(1)
	case tcell.KeyBacktab:
		ed.cycleSelection(-1)
	case tcell.KeyEnter:
		ed.completeEdge()
	case tcell.KeyRune:
		if ev.Rune() == 'e' {
			ed.completeEdge()
		}
	}
	return false
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// requestQuit returns true when the editor may exit. Unsaved changes need
// a second request.
func (ed *Editor) requestQuit() bool {
	if !ed.modified || ed.quitArmed {
		return true
	}
	ed.quitArmed = true
	ed.showMessage("Unsaved changes, press q again to quit", MsgWarning)
	return false
}

func (ed *Editor) arrowKey(dx, dy int, shift bool) {
	if shift || ed.selected < 0 {
		ed.scrollX += dx
		ed.scrollY += dy
		return
	}
	ed.saveSnapshot()
	ed.moveNode(ed.selected, dx, dy)
}

// moveNode shifts node i by whole cells and reroutes.
func (ed *Editor) moveNode(i, dx, dy int) {
	if i < 0 || i >= len(ed.diagram.Nodes) || (dx == 0 && dy == 0) {
		return
	}
	n := &ed.diagram.Nodes[i]
	n.X += float64(dx) * render.CellW
	n.Y += float64(dy) * render.CellH
	ed.modified = true
	ed.reroute()
}

func (ed *Editor) cycleSelection(step int) {
	n := len(ed.diagram.Nodes)
	if n == 0 {
		ed.selected = -1
		return
	}
	if ed.selected < 0 {
		if step > 0 {
			ed.selected = 0
		} else {
			ed.selected = n - 1
		}
		return
	}
	ed.selected = ((ed.selected+step)%n + n) % n
}

func (ed *Editor) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	buttons := ev.Buttons()

	if ed.dragging {
		if buttons&tcell.Button1 == 0 {
			ed.dragging = false
			ed.dragIdx = -1
			return
		}
		ed.moveNode(ed.dragIdx, x-ed.lastMouseX, y-ed.lastMouseY)
		ed.lastMouseX, ed.lastMouseY = x, y
		return
	}

	if buttons&tcell.WheelUp != 0 {
		ed.scrollY--
		return
	}
	if buttons&tcell.WheelDown != 0 {
		ed.scrollY++
		return
	}

	if buttons&tcell.Button1 == 0 {
		return
	}
	i := ed.nodeAt(x, y)
	if ed.mode == ModeEdge {
		if i >= 0 {
			ed.selected = i
			ed.completeEdge()
		}
		return
	}
	ed.selected = i
	if i < 0 {
		return
	}
	ed.saveSnapshot()
	ed.dragging = true
	ed.dragIdx = i
	ed.lastMouseX, ed.lastMouseY = x, y
}

// nodeAt returns the topmost node drawn at screen cell (x, y), or -1.
func (ed *Editor) nodeAt(x, y int) int {
	for i := len(ed.diagram.Nodes) - 1; i >= 0; i-- {
		bx, by, bw, bh := ed.cellBox(ed.diagram.Nodes[i])
		if x >= bx && x < bx+bw && y >= by && y < by+bh {
			return i
		}
	}
	return -1
}

// addNode places a new node at the top-left of the view.
func (ed *Editor) addNode() {
	ed.saveSnapshot()
	id := ed.nextNodeID()
	ed.diagram.Nodes = append(ed.diagram.Nodes, diagram.Node{
		ID: id,
		X:  float64(ed.scrollX+2) * render.CellW,
		Y:  float64(ed.scrollY+1) * render.CellH,
		W:  100,
		H:  60,
	})
	ed.selected = len(ed.diagram.Nodes) - 1
	ed.modified = true
	ed.reroute()
	ed.showMessage("Added "+id, MsgSuccess)
}

func (ed *Editor) nextNodeID() string {
	for i := len(ed.diagram.Nodes) + 1; ; i++ {
		id := fmt.Sprintf("n%d", i)
		if _, ok := ed.diagram.Node(id); !ok {
			return id
		}
	}
}

func (ed *Editor) deleteSelected() {
	if ed.selected < 0 || ed.selected >= len(ed.diagram.Nodes) {
		return
	}
	ed.saveSnapshot()
	id := ed.diagram.Nodes[ed.selected].ID
	ed.diagram.Nodes = append(ed.diagram.Nodes[:ed.selected], ed.diagram.Nodes[ed.selected+1:]...)
	edges := ed.diagram.Edges[:0]
	for _, e := range ed.diagram.Edges {
		if e.From != id && e.To != id {
			edges = append(edges, e)
		}
	}
	ed.diagram.Edges = edges
	ed.selected = -1
	ed.modified = true
	ed.reroute()
	ed.showMessage("Deleted "+id, MsgSuccess)
}

func (ed *Editor) startEdge() {
	if ed.selected < 0 {
		ed.showMessage("Select a source node first", MsgWarning)
		return
	}
	ed.edgeFrom = ed.selected
	ed.mode = ModeEdge
	ed.showMessage("Edge from "+ed.diagram.Nodes[ed.selected].ID+": pick target", MsgInfo)
}

func (ed *Editor) completeEdge() {
	defer func() {
		ed.edgeFrom = -1
		ed.mode = ModeCanvas
	}()
	n := len(ed.diagram.Nodes)
	if ed.edgeFrom < 0 || ed.edgeFrom >= n || ed.selected < 0 || ed.selected >= n {
		return
	}
	from := ed.diagram.Nodes[ed.edgeFrom].ID
	to := ed.diagram.Nodes[ed.selected].ID
	if from == to {
		ed.showMessage("An edge needs two different nodes", MsgError)
		return
	}
	ed.saveSnapshot()
	ed.diagram.Edges = append(ed.diagram.Edges, diagram.Edge{From: from, To: to})
	ed.modified = true
	ed.reroute()
	msg := fmt.Sprintf("Added %s -> %s", from, to)
	if g := ed.geoms[len(ed.geoms)-1]; !g.OK {
		ed.showMessage(msg+" (boxes overlap, no connector)", MsgWarning)
		return
	}
	ed.showMessage(msg, MsgSuccess)
}

// Undo/redo

func (ed *Editor) snapshot() Snapshot {
	return Snapshot{
		Nodes: append([]diagram.Node(nil), ed.diagram.Nodes...),
		Edges: append([]diagram.Edge(nil), ed.diagram.Edges...),
	}
}

func (ed *Editor) restore(s Snapshot) {
	ed.diagram.Nodes = s.Nodes
	ed.diagram.Edges = s.Edges
	if ed.selected >= len(ed.diagram.Nodes) {
		ed.selected = -1
	}
	// The pending edge's source may be gone.
	ed.edgeFrom = -1
	if ed.mode == ModeEdge {
		ed.mode = ModeCanvas
	}
	ed.dragging = false
	ed.modified = true
	ed.reroute()
}

func (ed *Editor) saveSnapshot() {
	ed.undoStack = append(ed.undoStack, ed.snapshot())
	if len(ed.undoStack) > maxUndoLevels {
		ed.undoStack = ed.undoStack[1:]
	}
	ed.redoStack = nil
}

func (ed *Editor) undo() {
	if len(ed.undoStack) == 0 {
		ed.showMessage("Nothing to undo", MsgInfo)
		return
	}
	ed.redoStack = append(ed.redoStack, ed.snapshot())
	s := ed.undoStack[len(ed.undoStack)-1]
	ed.undoStack = ed.undoStack[:len(ed.undoStack)-1]
	ed.restore(s)
	ed.showMessage("Undo", MsgInfo)
}

func (ed *Editor) redo() {
	if len(ed.redoStack) == 0 {
		ed.showMessage("Nothing to redo", MsgInfo)
		return
	}
	ed.undoStack = append(ed.undoStack, ed.snapshot())
	s := ed.redoStack[len(ed.redoStack)-1]
	ed.redoStack = ed.redoStack[:len(ed.redoStack)-1]
	ed.restore(s)
	ed.showMessage("Redo", MsgInfo)
}

func (ed *Editor) showMessage(msg string, msgType MessageType) {
	ed.message = msg
	ed.messageType = msgType
	ed.messageFlashStart.Store(time.Now().UnixMilli())
	if ed.screen != nil {
		ed.screen.PostEvent(tcell.NewEventInterrupt(nil))
	}
}

// File operations

// loadFile opens path. A file that does not exist yet starts an empty
// diagram that is written on the first save.
func (ed *Editor) loadFile(path string) error {
	if diagram.FormatFor(path) == diagram.FormatUnknown {
		return fmt.Errorf("unsupported extension %q", filepath.Ext(path))
	}
	var d *diagram.Diagram
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d = &diagram.Diagram{Name: filepath.Base(path)}
		ed.showMessage("New file", MsgInfo)
	case err != nil:
		return err
	default:
		if d, err = diagram.Parse(data, diagram.FormatFor(path)); err != nil {
			return err
		}
	}
	ed.diagram = d
	ed.onDisk = data
	ed.filename = path
	ed.modified = false
	ed.selected = -1
	ed.undoStack, ed.redoStack = nil, nil
	ed.reroute()
	ed.rememberDir(path)
	log.WithComponent("edit").Info("opened", "file", path, "nodes", len(d.Nodes), "edges", len(d.Edges))
	return nil
}

func (ed *Editor) save() {
	if err := ed.saveFile(ed.filename); err != nil {
		ed.showMessage("Save failed: "+err.Error(), MsgError)
		return
	}
	ed.showMessage("Saved "+filepath.Base(ed.filename), MsgSuccess)
}

func (ed *Editor) saveFile(path string) error {
	if err := ed.diagram.Validate(); err != nil {
		return err
	}
	data, err := diagram.Encode(ed.diagram, diagram.FormatFor(path))
	if err == nil {
		err = os.WriteFile(path, data, 0o644)
	}
	if err != nil {
		log.WithComponent("edit").Error("save failed", "file", path, "err", err)
		return err
	}
	ed.onDisk = data
	ed.modified = false
	ed.quitArmed = false
	ed.rememberDir(path)
	log.WithComponent("edit").Info("saved", "file", path)
	return nil
}

func (ed *Editor) rememberDir(path string) {
	if abs, err := filepath.Abs(path); err == nil {
		ed.config.Editor.LastDir = filepath.Dir(abs)
	}
}

func (ed *Editor) saveConfig() {
	if ed.configPath == "" {
		return
	}
	if err := config.Save(ed.configPath, ed.config); err != nil {
		log.WithComponent("edit").Warn("config not saved", "path", ed.configPath, "err", err)
	}
}
