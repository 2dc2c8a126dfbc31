package lua

import (
	"context"
	"fmt"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/input/key"
)

// Lines is the buffer the ed module edits.
type Lines interface {
	Line(n int) string
	LineCount() int
	AppendLine(after int, text string) error
	ReplaceLine(n int, text string) error
	DeleteLine(n int) error
}

// Journal records changes for undo.
type Journal interface {
	Save(top, bot int, cursor buffer.Pos) error
}

// Marks resolves the marks scripts ask for.
type Marks interface {
	Get(name rune) (buffer.Pos, error)
}

// Editor is the dispatcher the scripts drive.
type Editor interface {
	Cursor() buffer.Pos
	SetCursor(p buffer.Pos)
	ExecuteNormal(ctx context.Context, codes []key.Code) error
}

// UI shows messages from scripts.
type UI interface {
	Message(msg string)
}

// Deps are the collaborators of an OperatorFunc.
type Deps struct {
	State   *State
	Lines   Lines
	Journal Journal
	Marks   Marks
	UI      UI
}

// OperatorFunc calls Lua functions for "g@".
type OperatorFunc struct {
	state   *State
	lines   Lines
	journal Journal
	marks   Marks
	ui      UI
	editor  Editor

	// ctx is the context of the running call, used by ed.normal.
	ctx     context.Context
	running atomic.Bool
}

// NewOperatorFunc installs the ed module into deps.State, creating a
// state when none is given.
func NewOperatorFunc(deps Deps) *OperatorFunc {
	o := &OperatorFunc{
		state:   deps.State,
		lines:   deps.Lines,
		journal: deps.Journal,
		marks:   deps.Marks,
		ui:      deps.UI,
		ctx:     context.Background(),
	}
	if o.state == nil {
		o.state = NewState()
	}
	o.state.RegisterModule("ed", o.module())
	return o
}

// Attach connects the dispatcher used by ed.cursor and ed.normal.
func (o *OperatorFunc) Attach(ed Editor) {
	o.editor = ed
}

// State returns the Lua state the functions live in.
func (o *OperatorFunc) State() *State {
	return o.state
}

// LoadFile runs a script that defines operator functions.
func (o *OperatorFunc) LoadFile(ctx context.Context, path string) error {
	return o.state.DoFile(ctx, path)
}

// LoadString runs code that defines operator functions.
func (o *OperatorFunc) LoadString(ctx context.Context, code string) error {
	return o.state.DoString(ctx, code)
}

// Call runs the global Lua function name with the motion type.
func (o *OperatorFunc) Call(ctx context.Context, name, motion string) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrReentrant
	}
	defer o.running.Store(false)

	o.ctx = ctx
	defer func() { o.ctx = context.Background() }()

	_, err := o.state.Call(ctx, name, lua.LString(motion))
	return err
}

func (o *OperatorFunc) module() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"line":        o.luaLine,
		"lines":       o.luaLines,
		"line_count":  o.luaLineCount,
		"set_line":    o.luaSetLine,
		"append_line": o.luaAppendLine,
		"delete_line": o.luaDeleteLine,
		"mark":        o.luaMark,
		"cursor":      o.luaCursor,
		"set_cursor":  o.luaSetCursor,
		"normal":      o.luaNormal,
		"message":     o.luaMessage,
	}
}

func (o *OperatorFunc) luaLine(L *lua.LState) int {
	n := checkLine(L, 1, o.lines.LineCount())
	L.Push(lua.LString(o.lines.Line(n)))
	return 1
}

func (o *OperatorFunc) luaLines(L *lua.LState) int {
	count := o.lines.LineCount()
	first := checkLine(L, 1, count)
	last := L.OptInt(2, count)
	if last < first || last > count {
		L.ArgError(2, fmt.Sprintf("line %d out of range %d..%d", last, first, count))
	}
	lines := make([]string, 0, last-first+1)
	for n := first; n <= last; n++ {
		lines = append(lines, o.lines.Line(n))
	}
	L.Push(linesToTable(L, lines))
	return 1
}

func (o *OperatorFunc) luaLineCount(L *lua.LState) int {
	L.Push(lua.LNumber(o.lines.LineCount()))
	return 1
}

func (o *OperatorFunc) luaSetLine(L *lua.LState) int {
	n := checkLine(L, 1, o.lines.LineCount())
	text := L.CheckString(2)
	o.save(L, n-1, n+1)
	o.check(L, o.lines.ReplaceLine(n, text))
	return 0
}

func (o *OperatorFunc) luaAppendLine(L *lua.LState) int {
	after := L.CheckInt(1)
	if after < 0 || after > o.lines.LineCount() {
		L.ArgError(1, fmt.Sprintf("line %d out of range 0..%d", after, o.lines.LineCount()))
	}
	text := L.CheckString(2)
	o.save(L, after, after+1)
	o.check(L, o.lines.AppendLine(after, text))
	return 0
}

func (o *OperatorFunc) luaDeleteLine(L *lua.LState) int {
	n := checkLine(L, 1, o.lines.LineCount())
	o.save(L, n-1, n+1)
	o.check(L, o.lines.DeleteLine(n))
	return 0
}

func (o *OperatorFunc) luaMark(L *lua.LState) int {
	name := markName(L, 1)
	if o.marks == nil {
		L.Push(lua.LNil)
		return 1
	}
	pos, err := o.marks.Get(name)
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LNumber(pos.Line))
	L.Push(lua.LNumber(pos.Col))
	return 2
}

func (o *OperatorFunc) luaCursor(L *lua.LState) int {
	if o.editor == nil {
		L.RaiseError("no editor attached")
	}
	p := o.editor.Cursor()
	L.Push(lua.LNumber(p.Line))
	L.Push(lua.LNumber(p.Col))
	return 2
}

func (o *OperatorFunc) luaSetCursor(L *lua.LState) int {
	if o.editor == nil {
		L.RaiseError("no editor attached")
	}
	lnum := checkLine(L, 1, o.lines.LineCount())
	col := L.OptInt(2, 0)
	o.editor.SetCursor(buffer.Pos{Line: lnum, Col: max(col, 0)})
	return 0
}

func (o *OperatorFunc) luaNormal(L *lua.LState) int {
	if o.editor == nil {
		L.RaiseError("no editor attached")
	}
	codes, err := key.Parse(L.CheckString(1))
	if err != nil {
		L.ArgError(1, err.Error())
	}
	o.check(L, o.editor.ExecuteNormal(o.ctx, codes))
	return 0
}

func (o *OperatorFunc) luaMessage(L *lua.LState) int {
	if o.ui != nil {
		o.ui.Message(L.CheckString(1))
	}
	return 0
}

func (o *OperatorFunc) save(L *lua.LState, top, bot int) {
	if o.journal == nil {
		return
	}
	cur := buffer.Pos{Line: 1}
	if o.editor != nil {
		cur = o.editor.Cursor()
	}
	o.check(L, o.journal.Save(top, bot, cur))
}

// check raises err as a Lua error.
func (o *OperatorFunc) check(L *lua.LState, err error) {
	if err == nil {
		return
	}
	L.RaiseError("%s", err.Error())
}
