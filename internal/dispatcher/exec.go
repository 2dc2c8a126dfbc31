package dispatcher

import (
	"context"
	"fmt"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
)

// execute runs the handler of spec. A returned error fails the command;
// handlers that only beep report through d.beep and return nil.
func (d *Dispatcher) execute(ctx context.Context, spec CommandSpec, ca *execctx.CmdArg) error {
	switch spec.Kind {
	case KindError:
		return fmt.Errorf("%w: %s", execctx.ErrUnknownCommand, ca.CmdChar)
	case KindIgnore:
		return nil
	case KindNop:
		return nil
	case KindAddSub:
		return d.nvAddSub(ca)
	case KindPage:
		return d.nvPage(ca)
	case KindHalfPage:
		return d.nvHalfPage(ca)
	case KindScrollLine:
		return d.nvScrollLine(ca)
	case KindCtrlG:
		return d.nvCtrlG(ca)
	case KindCtrlH:
		return d.nvCtrlH(ca)
	case KindDown:
		return d.nvDown(ca)
	case KindUp:
		return d.nvUp(ca)
	case KindLeft:
		return d.nvLeft(ca)
	case KindRight:
		return d.nvRight(ca)
	case KindClear:
		return d.checkClearOpQ()
	case KindRedo:
		return d.nvRedo(ca)
	case KindUndo:
		return d.nvUndo(ca)
	case KindUndoLine:
		return d.nvUndoLine(ca)
	case KindWindow:
		return d.nvWindow(ctx, ca)
	case KindEsc:
		return d.nvEsc(ca)
	case KindNormal:
		return d.nvNormal(ca)
	case KindIdent:
		return d.nvIdent(ctx, ca)
	case KindRegname:
		return d.nvRegname(ca)
	case KindDollar:
		return d.nvDollar(ca)
	case KindPercent:
		return d.nvPercent(ca)
	case KindOptrans:
		return d.nvOptrans(ca)
	case KindGomark:
		return d.nvGomark(ca)
	case KindBrace:
		return d.nvBrace(ca)
	case KindCsearch:
		return d.nvCsearch(ca)
	case KindDot:
		return d.nvDot(ca)
	case KindSearch:
		return d.nvSearch(ctx, ca)
	case KindNext:
		return d.nvNext(ca)
	case KindBeginLine:
		return d.nvBeginLine(ca)
	case KindColon:
		return d.nvColon(ctx, ca)
	case KindOperator:
		return d.nvOperator(ca)
	case KindAt:
		return d.nvAt(ca)
	case KindEdit:
		return d.nvEdit(ctx, ca)
	case KindBckWord:
		return d.nvBckWord(ca)
	case KindWordCmd:
		return d.nvWordCmd(ca)
	case KindAbbrev:
		return d.nvAbbrev(ca)
	case KindGoto:
		return d.nvGoto(ca)
	case KindScreenLine:
		return d.nvScreenLine(ca)
	case KindJoin:
		return d.nvJoin(ca)
	case KindOpen:
		return d.nvOpen(ctx, ca)
	case KindPut:
		return d.nvPut(ctx, ca)
	case KindReplace:
		return d.nvReplace(ctx, ca)
	case KindReplaceMode:
		return d.nvReplaceMode(ctx, ca)
	case KindSubst:
		return d.nvSubst(ca)
	case KindBrackets:
		return d.nvBrackets(ctx, ca)
	case KindLineop:
		return d.nvLineop(ca)
	case KindGCmd:
		return d.nvGCmd(ctx, ca)
	case KindZCmd:
		return d.nvZCmd(ctx, ca)
	case KindMark:
		return d.nvMark(ca)
	case KindRecord:
		return d.nvRecord(ca)
	case KindTilde:
		return d.nvTilde(ca)
	case KindFindPar:
		return d.nvFindPar(ca)
	case KindPipe:
		return d.nvPipe(ca)
	case KindVisual:
		return d.nvVisual(ca)
	case KindHome:
		return d.nvHome(ca)
	case KindEnd:
		return d.nvEnd(ca)
	case KindQuit:
		return d.nvQuit(ctx, ca)
	case KindCursorHold:
		ca.RetVal |= execctx.CommandBusy
		return nil
	}
	return fmt.Errorf("%w: kind %s", execctx.ErrUnknownCommand, spec.Kind)
}
