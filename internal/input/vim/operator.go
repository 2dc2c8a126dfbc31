package vim

import "github.com/dshills/modalcore/internal/input/key"

// OpType identifies a pending operator.
type OpType uint8

// Operator kinds. The order matches the operator table.
const (
	OpNop OpType = iota
	OpDelete
	OpYank
	OpChange
	OpLshift
	OpRshift
	OpFilter
	OpTilde
	OpIndent
	OpFormat
	OpColon
	OpUpper
	OpLower
	OpJoin
	OpJoinNS
	OpRot13
	OpReplace
	OpInsert
	OpAppend
	OpFold
	OpFoldOpen
	OpFoldOpenRec
	OpFoldClose
	OpFoldCloseRec
	OpFoldDel
	OpFoldDelRec
	OpFormat2
	OpFunction
	OpNrAdd
	OpNrSub
	opCount
)

// Operator describes an operator: the keys that invoke it and how it
// treats a characterwise motion.
type Operator struct {
	// Name is the operator identifier (e.g., "delete", "change", "yank").
	Name string

	// Char1 and Char2 are the keys that start the operator. Char2 is
	// NUL for single-key operators ("d") and set for two-key ones ("gu").
	Char1, Char2 key.Code

	// Lines marks operators that always act on whole lines.
	Lines bool

	// ChangesText indicates if this operator modifies the buffer.
	ChangesText bool
}

var operators = [opCount]Operator{
	OpNop:          {Name: "nop"},
	OpDelete:       {Name: "delete", Char1: 'd', ChangesText: true},
	OpYank:         {Name: "yank", Char1: 'y'},
	OpChange:       {Name: "change", Char1: 'c', ChangesText: true},
	OpLshift:       {Name: "shiftLeft", Char1: '<', Lines: true, ChangesText: true},
	OpRshift:       {Name: "shiftRight", Char1: '>', Lines: true, ChangesText: true},
	OpFilter:       {Name: "filter", Char1: '!', Lines: true, ChangesText: true},
	OpTilde:        {Name: "toggleCase", Char1: 'g', Char2: '~', ChangesText: true},
	OpIndent:       {Name: "indent", Char1: '=', Lines: true, ChangesText: true},
	OpFormat:       {Name: "format", Char1: 'g', Char2: 'q', Lines: true, ChangesText: true},
	OpColon:        {Name: "colon", Char1: ':', Lines: true},
	OpUpper:        {Name: "upper", Char1: 'g', Char2: 'U', ChangesText: true},
	OpLower:        {Name: "lower", Char1: 'g', Char2: 'u', ChangesText: true},
	OpJoin:         {Name: "join", Char1: 'J', Lines: true, ChangesText: true},
	OpJoinNS:       {Name: "joinNoSpace", Char1: 'g', Char2: 'J', Lines: true, ChangesText: true},
	OpRot13:        {Name: "rot13", Char1: 'g', Char2: '?', ChangesText: true},
	OpReplace:      {Name: "replace", Char1: 'r', ChangesText: true},
	OpInsert:       {Name: "insert", Char1: 'I', ChangesText: true},
	OpAppend:       {Name: "append", Char1: 'A', ChangesText: true},
	OpFold:         {Name: "foldCreate", Char1: 'z', Char2: 'f', Lines: true},
	OpFoldOpen:     {Name: "foldOpen", Char1: 'z', Char2: 'o', Lines: true},
	OpFoldOpenRec:  {Name: "foldOpenRecursive", Char1: 'z', Char2: 'O', Lines: true},
	OpFoldClose:    {Name: "foldClose", Char1: 'z', Char2: 'c', Lines: true},
	OpFoldCloseRec: {Name: "foldCloseRecursive", Char1: 'z', Char2: 'C', Lines: true},
	OpFoldDel:      {Name: "foldDelete", Char1: 'z', Char2: 'd', Lines: true},
	OpFoldDelRec:   {Name: "foldDeleteRecursive", Char1: 'z', Char2: 'D', Lines: true},
	OpFormat2:      {Name: "formatKeepCursor", Char1: 'g', Char2: 'w', Lines: true, ChangesText: true},
	OpFunction:     {Name: "function", Char1: 'g', Char2: '@'},
	OpNrAdd:        {Name: "increment", Char1: key.CtrlA, ChangesText: true},
	OpNrSub:        {Name: "decrement", Char1: key.CtrlX, ChangesText: true},
}

// Info returns the operator table entry for op.
func (op OpType) Info() Operator {
	if op >= opCount {
		return operators[OpNop]
	}
	return operators[op]
}

// String returns the operator name.
func (op OpType) String() string {
	return op.Info().Name
}

// Chars returns the keys that start op.
func (op OpType) Chars() (key.Code, key.Code) {
	info := op.Info()
	return info.Char1, info.Char2
}

// OnLines reports whether op always acts on whole lines.
func (op OpType) OnLines() bool {
	return op.Info().Lines
}

// ChangesText reports whether op modifies the buffer.
func (op OpType) ChangesText() bool {
	return op.Info().ChangesText
}

// IsFold reports whether op is one of the fold operators.
func (op OpType) IsFold() bool {
	return op >= OpFold && op <= OpFoldDelRec
}

// GetOpType returns the operator started by c1 (and c2 for two-key
// operators). "r" and "~" map to their Visual-mode operators. Unknown
// keys yield OpNop.
func GetOpType(c1, c2 key.Code) OpType {
	switch c1 {
	case 'r':
		return OpReplace
	case '~':
		return OpTilde
	case 'g':
		if c2 == key.CtrlA {
			return OpNrAdd
		}
		if c2 == key.CtrlX {
			return OpNrSub
		}
	case 'z':
		if c2 == 'y' {
			return OpYank
		}
	}
	for i := OpType(1); i < opCount; i++ {
		info := operators[i]
		if info.Char1 == c1 && info.Char2 == c2 {
			return i
		}
	}
	return OpNop
}
