// Package history provides the undo journal for the command dispatcher.
//
// Every edit must be announced with Save before the buffer is touched.
// Saves made during one dispatch cycle collect into a single pending
// entry; Sync closes that entry at the start of the next cycle, so one
// command (including any text typed in the insert sub-editor it started)
// undoes as one unit.
//
// # Entries
//
// An Entry records the buffer content before the change, the outermost
// line range announced to Save, and the cursor at the time. Entries are
// identified by a UUID so log lines from different layers can be matched.
//
//	h := history.NewHistory(buf, 1000)
//	_ = h.Save(1, 3, cursor) // about to change line 2
//	_ = buf.ReplaceLine(2, "new")
//	h.Sync()
//	pos, _ := h.Undo(1)      // line 2 restored, pos is on line 2
//
// # Groups
//
// BeginGroup suspends Sync so nested command execution (":normal", a Lua
// operator function) lands in the enclosing entry. EndGroup resumes it.
//
// # Line undo
//
// UndoLine implements "U": it restores the most recently changed line to
// the state it had before the first of a run of changes to it. The restore
// is itself an entry, so "u" undoes a "U".
package history
