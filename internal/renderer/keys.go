package renderer

import (
	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modalcore/internal/input/key"
)

// specialKeys maps tcell keys that have no character code.
var specialKeys = map[tcell.Key]key.Code{
	tcell.KeyUp:     key.Up,
	tcell.KeyDown:   key.Down,
	tcell.KeyLeft:   key.Left,
	tcell.KeyRight:  key.Right,
	tcell.KeyHome:   key.Home,
	tcell.KeyEnd:    key.End,
	tcell.KeyPgUp:   key.PageUp,
	tcell.KeyPgDn:   key.PageDown,
	tcell.KeyInsert: key.Insert,
	tcell.KeyDelete: key.Del,
	tcell.KeyHelp:   key.Help,
}

// shifted and control variants of the cursor keys.
var (
	shiftKeys = map[key.Code]key.Code{
		key.Up:    key.ShiftUp,
		key.Down:  key.ShiftDown,
		key.Left:  key.ShiftLeft,
		key.Right: key.ShiftRight,
		key.Home:  key.ShiftHome,
		key.End:   key.ShiftEnd,
	}
	ctrlKeys = map[key.Code]key.Code{
		key.Left:  key.CtrlLeft,
		key.Right: key.CtrlRight,
		key.Home:  key.CtrlHome,
		key.End:   key.CtrlEnd,
	}
)

// ConvertKey turns a tcell key event into a typed key event. It reports
// false for keys the editor has no code for, such as function keys.
func ConvertKey(ev *tcell.EventKey) (key.Event, bool) {
	k := ev.Key()
	mods := convertMod(ev.Modifiers())

	switch {
	case k == tcell.KeyRune:
		r := ev.Rune()
		if r == 0 {
			return key.NewEvent(key.Zero, key.ModNone), true
		}
		if mods.Has(key.ModAlt) {
			return key.NewEvent(key.Code(r), key.ModAlt), true
		}
		return key.NewEvent(key.Code(r), key.ModNone), true

	case k == tcell.KeyBackspace2:
		return key.NewEvent(key.BS, key.ModNone), true

	case k == tcell.KeyNUL:
		return key.NewEvent(key.Zero, key.ModNone), true

	case k < tcell.KeyRune:
		// Control characters, Enter, Tab and Esc carry their character
		// code.
		return key.NewEvent(key.Code(k), key.ModNone), true
	}

	code, ok := specialKeys[k]
	if !ok {
		return key.Event{}, false
	}
	switch {
	case mods.Has(key.ModShift):
		if c, ok := shiftKeys[code]; ok {
			return key.NewEvent(c, key.ModNone), true
		}
	case mods.Has(key.ModCtrl):
		if c, ok := ctrlKeys[code]; ok {
			return key.NewEvent(c, key.ModNone), true
		}
	}
	return key.NewEvent(code, mods), true
}

func convertMod(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods |= key.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		mods |= key.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		mods |= key.ModAlt
	}
	if m&tcell.ModMeta != 0 {
		mods |= key.ModMeta
	}
	return mods
}
