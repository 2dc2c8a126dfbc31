// Package execctx holds the records threaded through one command cycle:
// the command arguments, the pending operator and the Visual selection
// state shared between the dispatcher and the operator resolver.
package execctx

import (
	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// OpArg is the pending operator. It lives from the operator key until the
// motion that completes it has been resolved.
type OpArg struct {
	// OpType is the pending operator, OpNop when none.
	OpType vim.OpType

	// Regname is the register given with '"', 0 for none.
	Regname rune

	// MotionType is the shape of the span.
	MotionType vim.MotionType

	// MotionForce is 'v', 'V' or Ctrl-V when typed after the operator.
	MotionForce key.Code

	// UseRegOne stores a small delete in register 1 as well.
	UseRegOne bool

	// Inclusive is only meaningful for characterwise spans.
	Inclusive bool

	// EndAdjusted is set when the end was moved back from column zero.
	EndAdjusted bool

	Start buffer.Pos
	End   buffer.Pos

	// LineCount is the number of lines from Start to End.
	LineCount int

	// Empty is set for a zero-width characterwise span.
	Empty bool

	// IsVisual is set when the span came from a Visual selection.
	IsVisual bool

	// BlockMode is set for blockwise spans; StartVcol and EndVcol are then
	// the left and right virtual columns.
	BlockMode bool
	StartVcol int
	EndVcol   int

	// PrevOpCount and PrevCount0 carry counts to the next cycle.
	PrevOpCount int
	PrevCount0  int
}

// Pending reports whether an operator is waiting for a motion.
func (oa *OpArg) Pending() bool {
	return oa.OpType != vim.OpNop
}

// Clear drops the pending operator, register and motion force.
func (oa *OpArg) Clear() {
	oa.OpType = vim.OpNop
	oa.Regname = 0
	oa.MotionForce = 0
	oa.UseRegOne = false
}

// RetFlag is set by a handler to influence the rest of the cycle.
type RetFlag uint8

const (
	// CommandBusy makes the dispatcher skip its end-of-command work.
	CommandBusy RetFlag = 1 << iota

	// NoAdjustOpEnd keeps the resolver from moving an end in column zero
	// back to the previous line.
	NoAdjustOpEnd
)

// CmdArg is the per-command dispatch state. A fresh one is built for
// every cycle.
type CmdArg struct {
	// OAP is the operator state shared across cycles.
	OAP *OpArg

	// PreChar is a "g" or "z" prefix that was resolved into CmdChar.
	PreChar key.Code

	// CmdChar is the command key.
	CmdChar key.Code

	// NChar is the next key for commands that take one ("fx", "gg").
	NChar key.Code

	// ExtraChar is a third key ("gr" replace character, "ib" object).
	ExtraChar key.Code

	// NCharC1 and NCharC2 are composing characters absorbed after NChar.
	NCharC1 key.Code
	NCharC2 key.Code

	// OpCount is the count typed before the operator.
	OpCount int

	// Count0 is the count, 0 when none was typed. Count1 is never below 1.
	Count0 int
	Count1 int

	// Arg is the default argument from the command table.
	Arg int

	// RetVal holds flags set by the handler.
	RetVal RetFlag

	// SearchBuf is the pattern typed for "/" and "?".
	SearchBuf string

	// Typed is true when CmdChar came directly from the user.
	Typed bool
}

// Count returns Count1.
func (ca *CmdArg) Count() int {
	return vim.Count1(ca.Count0)
}

// Visual is the live Visual selection. Start is the fixed end; the
// cursor is the moving end.
type Visual struct {
	Active bool
	Select bool
	// Reselect is set while the selection may be restored by a later
	// operator with a count.
	Reselect bool
	// Mode is 'v', 'V' or Ctrl-V.
	Mode  key.Code
	Start buffer.Pos
}

// LastArea is the selection remembered for "gv" and the '< '> marks.
type LastArea struct {
	Valid    bool
	Mode     key.Code
	Start    buffer.Pos
	End      buffer.Pos
	Curswant int
}

// Reselect is the size of the last operated Visual area, used when
// Visual mode is started with a count.
type Reselect struct {
	Mode key.Code
	// Lines is the number of lines.
	Lines int
	// Vcol is the width in display cells, or the end column for multi-line
	// characterwise areas, or buffer.MaxCol after "$".
	Vcol int
}

// RedoVisual records the geometry of the last Visual operator so a
// repeat reproduces it at the cursor.
type RedoVisual struct {
	// Busy is set while a repeat of a Visual operator is executing.
	Busy      bool
	Mode      key.Code
	LineCount int
	Vcol      int
	Count     int
	Arg       int
}
