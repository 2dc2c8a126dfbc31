// Package watcher reports changes to configuration files.
//
// The directory holding each file is watched with fsnotify, so files
// replaced by rename (as most editors save) are still seen. Bursts of
// events for one file are coalesced into a single callback.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrClosed is returned by Watch after Close.
var ErrClosed = errors.New("watcher: closed")

// Operation is the kind of change seen on a file.
type Operation uint8

const (
	OpWrite Operation = iota + 1
	OpCreate
	OpRemove
	OpRename
)

func (o Operation) String() string {
	switch o {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event is one coalesced change to a watched file.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// Handler receives change events. It runs on the watcher goroutine.
type Handler func(Event)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the watcher waits for a burst of events to
// settle before calling the handler.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithErrorHandler receives errors reported by fsnotify.
func WithErrorHandler(fn func(error)) Option {
	return func(w *Watcher) {
		w.onError = fn
	}
}

// Watcher watches configuration files.
type Watcher struct {
	mu sync.Mutex

	fsw      *fsnotify.Watcher
	handler  Handler
	onError  func(error)
	debounce time.Duration

	files   map[string]bool
	dirs    map[string]bool
	pending map[string]*time.Timer

	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// New creates a watcher that calls handler for every change.
func New(handler Handler, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		handler:  handler,
		debounce: 100 * time.Millisecond,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		pending:  make(map[string]*time.Timer),
		closeCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Watch starts watching path. The file need not exist yet.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	w.files[abs] = true
	return nil
}

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for _, t := range w.pending {
		t.Stop()
	}
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.onError != nil {
				w.onError(err)
			}
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !w.files[name] {
		return
	}
	if t, ok := w.pending[name]; ok {
		t.Stop()
	}
	event := Event{Path: name, Op: op, Time: time.Now()}
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		closed := w.closed
		w.mu.Unlock()
		if !closed && w.handler != nil {
			w.handler(event)
		}
	})
}

func convertOp(op fsnotify.Op) Operation {
	switch {
	case op.Has(fsnotify.Create):
		return OpCreate
	case op.Has(fsnotify.Write):
		return OpWrite
	case op.Has(fsnotify.Remove):
		return OpRemove
	case op.Has(fsnotify.Rename):
		return OpRename
	default:
		return 0
	}
}
