package dispatcher

import (
	"context"

	"github.com/dshills/modalcore/internal/dispatcher/execctx"
	"github.com/dshills/modalcore/internal/engine/charclass"
	"github.com/dshills/modalcore/internal/input/key"
	"github.com/dshills/modalcore/internal/input/vim"
)

// acquireState is the step reached while reading the keys that follow a
// command.
type acquireState uint8

const (
	// awaitSecond reads NChar: the character of "fx" or the second key
	// of "gg".
	awaitSecond acquireState = iota
	// awaitThird reads ExtraChar after "gr", "g'", "g`" and "g Ctrl-\".
	awaitThird
	// awaitDigraph reads the two characters after Ctrl-K.
	awaitDigraph
	acquireDone
)

// needsMoreChars reports whether the command takes a second key now.
func (d *Dispatcher) needsMoreChars(ca *execctx.CmdArg, flags Flags) bool {
	if flags&FlagNeedsChar == 0 {
		return false
	}
	switch {
	case flags&FlagCharNoOp != 0 && !d.oap.Pending():
		return true
	case flags&FlagCharAlways != 0:
		return true
	case ca.CmdChar == 'q' && !d.oap.Pending() && d.recording == 0 && d.executing == 0:
		return true
	case (ca.CmdChar == 'a' || ca.CmdChar == 'i') && (d.oap.Pending() || d.visual.Active):
		return true
	}
	return false
}

// moreChars reads the second and, for some "g" commands, third key. It
// returns the spec to execute, which becomes the Ctrl-\ command when
// Ctrl-\ Ctrl-N or Ctrl-\ Ctrl-G was typed instead.
func (d *Dispatcher) moreChars(ctx context.Context, ca *execctx.CmdArg, spec CommandSpec) (CommandSpec, error) {
	var (
		slot *key.Code
		repl bool // the key is read as if in Replace mode
		lit  bool // the key is taken literally
	)

	state := awaitSecond
	for state != acquireDone {
		switch state {
		case awaitSecond:
			ev, err := d.keys.Next(ctx)
			if err != nil {
				return spec, err
			}
			if ca.CmdChar == 'g' {
				ca.NChar = d.adjustLang(ev.Code, true)
				switch ca.NChar {
				case 'r':
					repl = true
					state = awaitThird
				case '\'', '`', key.CtrlBSL:
					lit = true
					state = awaitThird
				default:
					state = acquireDone
				}
				continue
			}
			ca.NChar = ev.Code
			slot = &ca.NChar
			repl = ca.CmdChar == 'r'
			state = d.afterChar(ca, spec, slot, lit)

		case awaitThird:
			ev, err := d.keys.Next(ctx)
			if err != nil {
				return spec, err
			}
			ca.ExtraChar = ev.Code
			slot = &ca.ExtraChar
			state = d.afterChar(ca, spec, slot, lit)

		case awaitDigraph:
			c, err := d.readDigraph(ctx)
			if err != nil {
				return spec, err
			}
			if c != key.NUL {
				*slot = c
			}
			state = acquireDone
		}
	}
	if slot == nil {
		return spec, nil
	}

	lang := repl || spec.Flags&FlagCharIsText != 0
	if !lit {
		*slot = d.adjustLang(*slot, !lang)
	}

	switch {
	case slot == &ca.ExtraChar && ca.NChar == key.CtrlBSL && (ca.ExtraChar == key.CtrlN || ca.ExtraChar == key.CtrlG):
		ca.CmdChar = key.CtrlBSL
		ca.NChar = ca.ExtraChar
		spec, _ = d.registry.Lookup(ca.CmdChar)
	case *slot == key.CtrlBSL:
		// Only a key that is already there is looked at; "f Ctrl-\"
		// followed by anything else keeps the Ctrl-\.
		if _, ok := d.keys.Peek(); ok {
			ev, err := d.keys.Next(ctx)
			if err != nil {
				return spec, err
			}
			if ev.Code == key.CtrlN || ev.Code == key.CtrlG {
				ca.CmdChar = key.CtrlBSL
				ca.NChar = ev.Code
				spec, _ = d.registry.Lookup(ca.CmdChar)
			} else {
				d.keys.Unget(ev)
			}
		}
	}

	if lang {
		d.absorbComposing(ctx, ca)
	}
	return spec, nil
}

// afterChar decides whether a key read into slot starts a digraph.
func (d *Dispatcher) afterChar(ca *execctx.CmdArg, spec CommandSpec, slot *key.Code, lit bool) acquireState {
	if lit || *slot != key.CtrlK || d.opts.HasCpo('D') {
		return acquireDone
	}
	if spec.Flags&FlagCharIsText != 0 || slot == &ca.ExtraChar {
		return awaitDigraph
	}
	return acquireDone
}

// readDigraph reads the two characters of a digraph. NUL is returned when
// it was abandoned with Esc; a special key is returned as it is.
func (d *Dispatcher) readDigraph(ctx context.Context) (key.Code, error) {
	ev, err := d.keys.Next(ctx)
	if err != nil {
		return key.NUL, err
	}
	c := ev.Code
	if c == key.Esc {
		return key.NUL, nil
	}
	if c.IsSpecial() {
		return c, nil
	}
	ev, err = d.keys.Next(ctx)
	if err != nil {
		return key.NUL, err
	}
	if ev.Code == key.Esc {
		return key.NUL, nil
	}
	r, _ := key.Digraph(c, ev.Code)
	return r, nil
}

// absorbComposing takes composing characters that are already waiting
// after a text character. It never blocks.
func (d *Dispatcher) absorbComposing(ctx context.Context, ca *execctx.CmdArg) {
	for {
		ev, ok := d.keys.Peek()
		if !ok || ev.Code < 0x100 {
			return
		}
		if !charclass.IsComposing(rune(ev.Code)) {
			return
		}
		if _, err := d.keys.Next(ctx); err != nil {
			return
		}
		if ca.NCharC1 == 0 {
			ca.NCharC1 = ev.Code
		} else {
			ca.NCharC2 = ev.Code
		}
	}
}

// opTypeOf is the operator started by the command in ca.
func opTypeOf(ca *execctx.CmdArg) vim.OpType {
	if ca.CmdChar == 'g' || ca.CmdChar == 'z' {
		return vim.GetOpType(ca.CmdChar, ca.NChar)
	}
	return vim.GetOpType(ca.CmdChar, key.NUL)
}
