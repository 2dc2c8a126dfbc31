package renderer

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modalcore/internal/input/key"
)

// Terminal is a tcell screen that supplies keys and shows frames.
type Terminal struct {
	screen tcell.Screen
	view   *View

	mu       sync.Mutex
	message  string
	onResize func(width, height int)
}

// NewTerminal creates a terminal on the controlling tty.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen wraps an existing screen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen, view: NewView(screen)}
}

// Init takes over the terminal.
func (t *Terminal) Init() error {
	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnablePaste()
	return nil
}

// Shutdown restores the terminal. Keys stops delivering afterwards.
func (t *Terminal) Shutdown() {
	t.screen.Fini()
}

// Size returns the screen size.
func (t *Terminal) Size() (width, height int) {
	return t.screen.Size()
}

// View returns the view frames are drawn with.
func (t *Terminal) View() *View {
	return t.view
}

// OnResize sets a function called with the new size on the input
// goroutine.
func (t *Terminal) OnResize(fn func(width, height int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onResize = fn
}

// Keys polls the screen on a new goroutine and delivers typed keys until
// ctx is done or the screen is shut down. Resizes redraw the last frame.
func (t *Terminal) Keys(ctx context.Context) <-chan key.Event {
	ch := make(chan key.Event, 64)
	go func() {
		defer close(ch)
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			switch e := ev.(type) {
			case *tcell.EventKey:
				k, ok := ConvertKey(e)
				if !ok {
					continue
				}
				select {
				case ch <- k:
				case <-ctx.Done():
					return
				}
			case *tcell.EventResize:
				w, h := e.Size()
				t.mu.Lock()
				fn := t.onResize
				t.mu.Unlock()
				if fn != nil {
					fn(w, h)
				}
				t.screen.Sync()
				t.view.Redraw()
			}
		}
	}()
	return ch
}

// Beep rings the terminal bell.
func (t *Terminal) Beep() {
	_ = t.screen.Beep() // not every terminal has a bell
}

// Message records msg for the next frame.
func (t *Terminal) Message(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.message = msg
}

// TakeMessage returns the message recorded since the last call.
func (t *Terminal) TakeMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	msg := t.message
	t.message = ""
	return msg
}
