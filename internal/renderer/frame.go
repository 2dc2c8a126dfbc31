package renderer

import (
	"fmt"
	"strings"

	"github.com/dshills/modalcore/internal/app"
	"github.com/dshills/modalcore/internal/dispatcher/handlers/cmdline"
	"github.com/dshills/modalcore/internal/engine/buffer"
)

// Frame is the content of one redraw.
type Frame struct {
	// Lines are the buffer lines from Top on, as many as fit.
	Lines []string
	// Top is the buffer line shown in the first row.
	Top int
	// Left is the first display column shown.
	Left int
	// LineCount is the number of lines in the buffer.
	LineCount int

	Cursor  buffer.Pos
	TabStop int

	Name     string
	Modified bool
	Mode     string

	// Message is shown in the command row when no command line is
	// being typed.
	Message string
	// Cmdline is the command line being typed, nil when there is none.
	Cmdline *cmdline.Line
}

// NewFrame captures ed for a screen of the given height.
func NewFrame(ed *app.Editor, height int) Frame {
	d := ed.Dispatcher()
	doc := ed.Document()
	buf := doc.Buffer

	top, _ := d.Window()
	rows := max(height-2, 1)
	return Frame{
		Lines:     buf.Lines(top, top+rows-1),
		Top:       top,
		Left:      d.LeftCol(),
		LineCount: buf.LineCount(),
		Cursor:    d.Cursor(),
		TabStop:   d.Options().TabStop,
		Name:      doc.Name,
		Modified:  doc.Modified(),
		Mode:      d.ModeName(),
	}
}

// Status returns the text of the status row.
func (f Frame) Status() string {
	var b strings.Builder
	b.WriteString(f.Name)
	if f.Modified {
		b.WriteString(" [+]")
	}
	if f.Mode != "" && f.Mode != "NORMAL" {
		fmt.Fprintf(&b, "  -- %s --", f.Mode)
	}
	fmt.Fprintf(&b, "  %d,%d", f.Cursor.Line, f.Cursor.Col+1)
	return b.String()
}
