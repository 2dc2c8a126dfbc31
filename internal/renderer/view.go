package renderer

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/dshills/modalcore/internal/dispatcher/handlers/cmdline"
)

// Surface is the part of a tcell.Screen a View draws on.
type Surface interface {
	Size() (width, height int)
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	ShowCursor(x, y int)
	HideCursor()
	Clear()
	Show()
}

var (
	textStyle   = tcell.StyleDefault
	tildeStyle  = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	statusStyle = tcell.StyleDefault.Reverse(true)
)

// View draws frames on a surface. Draw and Redraw may be called from
// different goroutines.
type View struct {
	mu   sync.Mutex
	s    Surface
	last Frame
}

// NewView creates a view on s.
func NewView(s Surface) *View {
	return &View{s: s}
}

// Draw shows f and keeps it for Redraw.
func (v *View) Draw(f Frame) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.last = f
	v.drawLocked()
}

// DrawCmdline redraws the last frame with the command line being typed.
func (v *View) DrawCmdline(line cmdline.Line) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.last.Cmdline = &line
	v.drawLocked()
}

// Redraw shows the last frame again, after a resize.
func (v *View) Redraw() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.drawLocked()
}

func (v *View) drawLocked() {
	f := v.last
	width, height := v.s.Size()
	if width <= 0 || height <= 0 {
		return
	}
	v.s.Clear()

	msg := strings.Split(f.Message, "\n")
	if f.Cmdline != nil {
		msg = nil
	}
	// A message of several lines covers the status row and the text
	// rows above it.
	msgRows := min(max(len(msg)-1, 0), height-1)
	textRows := max(height-2, 0)
	if msgRows > 0 {
		textRows = height - 1 - msgRows
	}
	ts := f.TabStop
	if ts <= 0 {
		ts = 8
	}

	for row := range textRows {
		if row < len(f.Lines) {
			drawText(v.s, row, f.Lines[row], f.Left, width, ts, textStyle)
			continue
		}
		v.s.SetContent(0, row, '~', nil, tildeStyle)
	}

	if statusRow := height - 2; statusRow >= 0 && msgRows == 0 {
		fill(v.s, statusRow, width, statusStyle)
		drawString(v.s, 0, statusRow, f.Status(), width, statusStyle)
	}

	cmdRow := height - 1
	if f.Cmdline != nil {
		prefix := string(f.Cmdline.FirstC)
		drawString(v.s, 0, cmdRow, prefix+f.Cmdline.Text, width, textStyle)
		x := runewidth.StringWidth(prefix + f.Cmdline.Text[:cmdCursor(f.Cmdline)])
		v.s.ShowCursor(min(x, width-1), cmdRow)
		v.s.Show()
		return
	}
	first := len(msg) - 1 - msgRows
	for i, line := range msg[first:] {
		drawString(v.s, 0, cmdRow-msgRows+i, line, width, textStyle)
	}

	row := f.Cursor.Line - f.Top
	if row >= 0 && row < textRows && row < len(f.Lines) {
		x := displayCol(f.Lines[row], f.Cursor.Col, ts) - f.Left
		if x >= 0 && x < width {
			v.s.ShowCursor(x, row)
			v.s.Show()
			return
		}
	}
	v.s.HideCursor()
	v.s.Show()
}

// cmdCursor returns the byte offset of the command-line cursor, which
// Line holds in runes.
func cmdCursor(l *cmdline.Line) int {
	n := 0
	for i := range l.Text {
		if n == l.Cursor {
			return i
		}
		n++
	}
	return len(l.Text)
}

// drawText draws a buffer line starting at display column left, with
// tabs expanded.
func drawText(s Surface, row int, line string, left, width, ts int, style tcell.Style) {
	col := 0
	for _, r := range line {
		w := runeWidth(r, col, ts)
		if r == '\t' {
			for c := col; c < col+w; c++ {
				if c >= left && c-left < width {
					s.SetContent(c-left, row, ' ', nil, style)
				}
			}
		} else if col >= left && col-left+w <= width {
			if r < 0x20 {
				r = '?'
			}
			s.SetContent(col-left, row, r, nil, style)
		}
		col += w
		if col-left >= width {
			return
		}
	}
}

// displayCol returns the display column of byte offset col in line.
func displayCol(line string, col, ts int) int {
	vcol := 0
	for i, r := range line {
		if i >= col {
			break
		}
		vcol += runeWidth(r, vcol, ts)
	}
	return vcol
}

func runeWidth(r rune, col, ts int) int {
	if r == '\t' {
		return ts - col%ts
	}
	if w := runewidth.RuneWidth(r); w > 0 {
		return w
	}
	return 1
}

func drawString(s Surface, x, y int, str string, width int, style tcell.Style) {
	for _, r := range str {
		w := max(runewidth.RuneWidth(r), 1)
		if x+w > width {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x += w
	}
}

func fill(s Surface, y, width int, style tcell.Style) {
	for x := range width {
		s.SetContent(x, y, ' ', nil, style)
	}
}
