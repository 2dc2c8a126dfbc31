package mark

import (
	"errors"
	"testing"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

func TestSetGet(t *testing.T) {
	tbl := NewTable()
	pos := buffer.Pos{Line: 3, Col: 2}
	if err := tbl.Set('a', pos); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := tbl.Get('a')
	if err != nil || got != pos {
		t.Errorf("Get('a') = %v, %v, want %v", got, err, pos)
	}

	if _, err := tbl.Get('b'); !errors.Is(err, ErrNotSet) {
		t.Errorf("Get('b') error = %v, want ErrNotSet", err)
	}
	if err := tbl.Set('!', pos); !errors.Is(err, ErrInvalidMark) {
		t.Errorf("Set('!') error = %v, want ErrInvalidMark", err)
	}

	_ = tbl.Set('`', pos)
	if got, _ := tbl.Get('\''); got != pos {
		t.Errorf("Get('\\'') = %v, want %v", got, pos)
	}
}

func TestSetVisualOrders(t *testing.T) {
	tbl := NewTable()
	tbl.SetVisual(buffer.Pos{Line: 5}, buffer.Pos{Line: 2})
	start, _ := tbl.Get('<')
	end, _ := tbl.Get('>')
	if start.Line != 2 || end.Line != 5 {
		t.Errorf("SetVisual() = %v, %v, want lines 2 and 5", start, end)
	}
}

func TestTrack(t *testing.T) {
	buf := buffer.NewBufferFromString("1\n2\n3\n4")
	tbl := NewTable()
	tbl.Track(buf)
	_ = tbl.Set('a', buffer.Pos{Line: 3})
	_ = tbl.Set('b', buffer.Pos{Line: 2})

	_ = buf.AppendLine(0, "0")
	if got, _ := tbl.Get('a'); got.Line != 4 {
		t.Errorf("after insert 'a' line = %d, want 4", got.Line)
	}

	_ = buf.DeleteLine(3)
	if _, err := tbl.Get('b'); !errors.Is(err, ErrNotSet) {
		t.Errorf("mark on deleted line: error = %v, want ErrNotSet", err)
	}
	if got, _ := tbl.Get('a'); got.Line != 3 {
		t.Errorf("after delete 'a' line = %d, want 3", got.Line)
	}
}
