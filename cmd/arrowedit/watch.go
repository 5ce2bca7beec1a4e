package main

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"

	"github.com/ha1tch/arrowkit/internal/log"
	"github.com/ha1tch/arrowkit/pkg/diagram"
)

// fileChanged is posted to the event loop when the open file changes on
// disk.
type fileChanged struct {
	path string
}

// watchFile watches the directory of the open file, so that editors that
// replace the file by renaming are noticed too. Events for the file are
// posted to the screen as interrupts. The returned func stops the watcher.
func (ed *Editor) watchFile() (func(), error) {
	path, err := filepath.Abs(ed.filename)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, err
	}

	logger := log.WithComponent("watch")
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != path {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					logger.Debug("changed", "file", path, "op", ev.Op.String())
					ed.screen.PostEvent(tcell.NewEventInterrupt(fileChanged{path: path}))
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", "err", err)
			}
		}
	}()

	return func() {
		close(done)
		w.Close()
	}, nil
}

// reloadFromDisk picks up an external change to the open file. Our own
// saves leave the contents equal to onDisk and are skipped. Unsaved edits
// are never discarded.
func (ed *Editor) reloadFromDisk() {
	data, err := os.ReadFile(ed.filename)
	if err != nil || bytes.Equal(data, ed.onDisk) {
		return
	}
	logger := log.WithComponent("edit")
	if ed.modified {
		ed.onDisk = data
		ed.showMessage("File changed on disk; Ctrl+S overwrites it", MsgWarning)
		logger.Warn("external change not loaded", "file", ed.filename)
		return
	}

	d, err := diagram.Parse(data, diagram.FormatFor(ed.filename))
	if err != nil {
		// Usually a writer that has not finished; its next write retries.
		ed.showMessage("Reload failed: "+err.Error(), MsgError)
		return
	}
	ed.diagram = d
	ed.onDisk = data
	ed.selected = -1
	ed.edgeFrom = -1
	ed.dragging = false
	if ed.mode == ModeEdge {
		ed.mode = ModeCanvas
	}
	ed.undoStack, ed.redoStack = nil, nil
	ed.reroute()
	ed.showMessage("Reloaded from disk", MsgInfo)
	logger.Info("reloaded", "file", ed.filename, "nodes", len(d.Nodes), "edges", len(d.Edges))
}
