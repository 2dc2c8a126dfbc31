package dispatcher

import "github.com/dshills/modalcore/internal/input/key"

// Kind is the family of a command. Every kind has one case in execute.
type Kind uint8

const (
	KindError Kind = iota
	KindIgnore
	KindNop
	KindAddSub
	KindPage
	KindHalfPage
	KindScrollLine
	KindCtrlG
	KindCtrlH
	KindDown
	KindUp
	KindLeft
	KindRight
	KindClear
	KindRedo
	KindUndo
	KindUndoLine
	KindWindow
	KindEsc
	KindNormal
	KindIdent
	KindRegname
	KindDollar
	KindPercent
	KindOptrans
	KindGomark
	KindBrace
	KindCsearch
	KindDot
	KindSearch
	KindNext
	KindBeginLine
	KindColon
	KindOperator
	KindAt
	KindEdit
	KindBckWord
	KindWordCmd
	KindAbbrev
	KindGoto
	KindScreenLine
	KindJoin
	KindOpen
	KindPut
	KindReplace
	KindReplaceMode
	KindSubst
	KindBrackets
	KindLineop
	KindGCmd
	KindZCmd
	KindMark
	KindRecord
	KindTilde
	KindFindPar
	KindPipe
	KindVisual
	KindHome
	KindEnd
	KindQuit
	KindCursorHold
	kindCount
)

var kindNames = [kindCount]string{
	KindError:       "error",
	KindIgnore:      "ignore",
	KindNop:         "nop",
	KindAddSub:      "addsub",
	KindPage:        "page",
	KindHalfPage:    "halfpage",
	KindScrollLine:  "scrollline",
	KindCtrlG:       "fileinfo",
	KindCtrlH:       "ctrlh",
	KindDown:        "down",
	KindUp:          "up",
	KindLeft:        "left",
	KindRight:       "right",
	KindClear:       "clear",
	KindRedo:        "redo",
	KindUndo:        "undo",
	KindUndoLine:    "undoline",
	KindWindow:      "window",
	KindEsc:         "esc",
	KindNormal:      "normal",
	KindIdent:       "ident",
	KindRegname:     "regname",
	KindDollar:      "dollar",
	KindPercent:     "percent",
	KindOptrans:     "optrans",
	KindGomark:      "gomark",
	KindBrace:       "brace",
	KindCsearch:     "csearch",
	KindDot:         "dot",
	KindSearch:      "search",
	KindNext:        "next",
	KindBeginLine:   "beginline",
	KindColon:       "colon",
	KindOperator:    "operator",
	KindAt:          "at",
	KindEdit:        "edit",
	KindBckWord:     "bckword",
	KindWordCmd:     "wordcmd",
	KindAbbrev:      "abbrev",
	KindGoto:        "goto",
	KindScreenLine:  "screenline",
	KindJoin:        "join",
	KindOpen:        "open",
	KindPut:         "put",
	KindReplace:     "replace",
	KindReplaceMode: "replacemode",
	KindSubst:       "subst",
	KindBrackets:    "brackets",
	KindLineop:      "lineop",
	KindGCmd:        "gcmd",
	KindZCmd:        "zcmd",
	KindMark:        "mark",
	KindRecord:      "record",
	KindTilde:       "tilde",
	KindFindPar:     "findpar",
	KindPipe:        "pipe",
	KindVisual:      "visual",
	KindHome:        "home",
	KindEnd:         "end",
	KindQuit:        "quit",
	KindCursorHold:  "cursorhold",
}

func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}
	return kindNames[k]
}

// Arguments for the commands that take one.
const (
	argBackward = 0
	argForward  = 1

	// beginline flags.
	blWhite = 1
	blSol   = 2
	blFix   = 4
)

const (
	nch    = FlagNeedsChar
	nchNop = FlagNeedsChar | FlagCharNoOp
	nchAlw = FlagNeedsChar | FlagCharAlways
	lang   = FlagCharIsText
	ss     = FlagStartSel
	sss    = FlagStartSelShift
	sts    = FlagStopSel
	rl     = FlagRightLeft
	keep   = FlagKeepReg
	ncw    = FlagNotInSubEditor
)

// Commands is the Normal mode command table.
var Commands = []CommandSpec{
	{key.NUL, KindError, 0, 0},
	{key.CtrlA, KindAddSub, 0, 0},
	{key.CtrlB, KindPage, sts, argBackward},
	{key.CtrlC, KindEsc, 0, 1},
	{key.CtrlD, KindHalfPage, 0, 0},
	{key.CtrlE, KindScrollLine, 0, 1},
	{key.CtrlF, KindPage, sts, argForward},
	{key.CtrlG, KindCtrlG, 0, 0},
	{key.CtrlH, KindCtrlH, 0, 0},
	{key.Tab, KindError, 0, 0},
	{key.NL, KindDown, 0, 0},
	{key.CtrlK, KindError, 0, 0},
	{key.CtrlL, KindClear, 0, 0},
	{key.CR, KindDown, 0, 1},
	{key.CtrlN, KindDown, sts, 0},
	{key.CtrlO, KindError, 0, 0},
	{key.CtrlP, KindUp, sts, 0},
	{key.CtrlQ, KindVisual, 0, 0},
	{key.CtrlR, KindRedo, 0, 0},
	{key.CtrlS, KindIgnore, 0, 0},
	{key.CtrlT, KindError, ncw, 0},
	{key.CtrlU, KindHalfPage, 0, 0},
	{key.CtrlV, KindVisual, 0, 0},
	{key.CtrlW, KindWindow, 0, 0},
	{key.CtrlX, KindAddSub, 0, 0},
	{key.CtrlY, KindScrollLine, 0, 0},
	{key.CtrlZ, KindError, 0, 0},
	{key.Esc, KindEsc, 0, 0},
	{key.CtrlBSL, KindNormal, nchAlw, 0},
	{key.CtrlRSB, KindError, ncw, 0},
	{key.CtrlHat, KindError, ncw, 0},
	{key.CtrlUndr, KindError, 0, 0},
	{' ', KindRight, 0, 0},
	{'!', KindOperator, 0, 0},
	{'"', KindRegname, nchNop | keep, 0},
	{'#', KindIdent, 0, 0},
	{'$', KindDollar, 0, 0},
	{'%', KindPercent, 0, 0},
	{'&', KindOptrans, 0, 0},
	{'\'', KindGomark, nchAlw, 1},
	{'(', KindBrace, 0, argBackward},
	{')', KindBrace, 0, argForward},
	{'*', KindIdent, 0, 0},
	{'+', KindDown, 0, 1},
	{',', KindCsearch, 0, 1},
	{'-', KindUp, 0, 1},
	{'.', KindDot, keep, 0},
	{'/', KindSearch, 0, 0},
	{'0', KindBeginLine, 0, 0},
	{'1', KindIgnore, 0, 0},
	{'2', KindIgnore, 0, 0},
	{'3', KindIgnore, 0, 0},
	{'4', KindIgnore, 0, 0},
	{'5', KindIgnore, 0, 0},
	{'6', KindIgnore, 0, 0},
	{'7', KindIgnore, 0, 0},
	{'8', KindIgnore, 0, 0},
	{'9', KindIgnore, 0, 0},
	{':', KindColon, 0, 0},
	{';', KindCsearch, 0, 0},
	{'<', KindOperator, rl, 0},
	{'=', KindOperator, 0, 0},
	{'>', KindOperator, rl, 0},
	{'?', KindSearch, 0, 0},
	{'@', KindAt, nchNop, 0},
	{'A', KindEdit, 0, 0},
	{'B', KindBckWord, 0, 1},
	{'C', KindAbbrev, keep, 0},
	{'D', KindAbbrev, keep, 0},
	{'E', KindWordCmd, 0, 1},
	{'F', KindCsearch, nchAlw | lang, argBackward},
	{'G', KindGoto, 0, 1},
	{'H', KindScreenLine, 0, 0},
	{'I', KindEdit, 0, 0},
	{'J', KindJoin, 0, 0},
	{'K', KindIdent, 0, 0},
	{'L', KindScreenLine, 0, 0},
	{'M', KindScreenLine, 0, 0},
	{'N', KindNext, 0, 1},
	{'O', KindOpen, 0, 0},
	{'P', KindPut, 0, 0},
	{'Q', KindError, ncw, 0},
	{'R', KindReplaceMode, 0, 0},
	{'S', KindSubst, keep, 0},
	{'T', KindCsearch, nchAlw | lang, argBackward},
	{'U', KindUndoLine, 0, 0},
	{'V', KindVisual, 0, 0},
	{'W', KindWordCmd, 0, 1},
	{'X', KindAbbrev, keep, 0},
	{'Y', KindAbbrev, keep, 0},
	{'Z', KindQuit, nchNop | ncw, 0},
	{'[', KindBrackets, nchAlw, argBackward},
	{'\\', KindError, 0, 0},
	{']', KindBrackets, nchAlw, argForward},
	{'^', KindBeginLine, 0, blWhite | blFix},
	{'_', KindLineop, 0, 0},
	{'`', KindGomark, nchAlw, 0},
	{'a', KindEdit, nch, 0},
	{'b', KindBckWord, 0, 0},
	{'c', KindOperator, 0, 0},
	{'d', KindOperator, 0, 0},
	{'e', KindWordCmd, 0, 0},
	{'f', KindCsearch, nchAlw | lang, argForward},
	{'g', KindGCmd, nchAlw, 0},
	{'h', KindLeft, rl, 0},
	{'i', KindEdit, nch, 0},
	{'j', KindDown, 0, 0},
	{'k', KindUp, 0, 0},
	{'l', KindRight, rl, 0},
	{'m', KindMark, nchNop, 0},
	{'n', KindNext, 0, 0},
	{'o', KindOpen, 0, 0},
	{'p', KindPut, 0, 0},
	{'q', KindRecord, nch, 0},
	{'r', KindReplace, nchNop | lang, 0},
	{'s', KindSubst, keep, 0},
	{'t', KindCsearch, nchAlw | lang, argForward},
	{'u', KindUndo, 0, 0},
	{'v', KindVisual, 0, 0},
	{'w', KindWordCmd, 0, 0},
	{'x', KindAbbrev, keep, 0},
	{'y', KindOperator, 0, 0},
	{'z', KindZCmd, nchAlw, 0},
	{'{', KindFindPar, 0, argBackward},
	{'|', KindPipe, 0, 0},
	{'}', KindFindPar, 0, argForward},
	{'~', KindTilde, 0, 0},

	{key.Up, KindUp, sss | sts, 0},
	{key.ShiftUp, KindPage, ss, argBackward},
	{key.Down, KindDown, sss | sts, 0},
	{key.ShiftDown, KindPage, ss, argForward},
	{key.Left, KindLeft, sss | sts | rl, 0},
	{key.ShiftLeft, KindBckWord, ss | rl, 0},
	{key.CtrlLeft, KindBckWord, sss | rl | sts, 1},
	{key.Right, KindRight, sss | sts | rl, 0},
	{key.ShiftRight, KindWordCmd, ss | rl, 0},
	{key.CtrlRight, KindWordCmd, sss | rl | sts, 1},
	{key.PageUp, KindPage, sss | sts, argBackward},
	{key.KPageUp, KindPage, sss | sts, argBackward},
	{key.PageDown, KindPage, sss | sts, argForward},
	{key.KPageDown, KindPage, sss | sts, argForward},
	{key.End, KindEnd, sss | sts, 0},
	{key.KEnd, KindEnd, sss | sts, 0},
	{key.ShiftEnd, KindEnd, ss, 0},
	{key.CtrlEnd, KindEnd, sss | sts, 1},
	{key.Home, KindHome, sss | sts, 0},
	{key.KHome, KindHome, sss | sts, 0},
	{key.ShiftHome, KindHome, ss, 0},
	{key.CtrlHome, KindGoto, sss | sts, 0},
	{key.Del, KindAbbrev, 0, 0},
	{key.KDel, KindAbbrev, 0, 0},
	{key.Undo, KindUndo, 0, 0},
	{key.Help, KindError, ncw, 0},
	{key.Insert, KindEdit, 0, 0},
	{key.KInsert, KindEdit, 0, 0},
	{key.BS, KindCtrlH, 0, 0},
	{key.Ignore, KindIgnore, keep, 0},
	{key.Nop, KindNop, 0, 0},
	{key.CursorHold, KindCursorHold, keep, 0},
}

// DefaultRegistry is the index over Commands.
var DefaultRegistry = MustRegistry(Commands)
