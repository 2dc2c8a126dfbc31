// Package operator applies operators to spans of text.
//
// The operator resolver turns an operator key plus a motion, a text
// object or a Visual selection into an execctx.OpArg. The Handler in this
// package takes that span and edits the buffer, writes registers and
// journals the change for undo. Each method returns where the cursor
// goes afterwards; the dispatcher decides whether Insert mode follows.
//
// # Span Shapes
//
// Characterwise spans run from Start to End, with End included when
// Inclusive is set. Linewise spans cover whole lines. Blockwise spans
// cover the screen columns StartVcol through EndVcol on every line; a
// tab cut by a block edge is split into spaces.
//
// # Operators
//
//   - Delete, Change, Yank: "d", "c", "y" with the usual register rules
//   - Shift: "<" and ">" by 'shiftwidth', optionally rounded
//   - Reindent: "=" without 'equalprg'
//   - ChangeCase: "g~", "gu", "gU", "g?"
//   - JoinSpan and Join: "J" and "gJ"
//   - Format: "gq" and "gw" to 'textwidth'
//   - ReplaceSpan: "r" in Visual mode
//   - AddSub and AddSubAt: Ctrl-A and Ctrl-X on decimal, hex, binary,
//     octal and alphabetic numbers
//   - Put: "p", "P", "gp", "gP" for all register types
//   - StartBlockEdit and FinishBlockEdit: blockwise "I", "A" and "c"
//
// ColonCommand builds the command line for ":", "!" and the external
// program forms of "=" and "gq".
package operator
