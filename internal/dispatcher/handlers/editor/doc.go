// Package editor is the Insert and Replace mode sub-editor.
//
// The dispatcher hands control to an Editor for the commands that enter
// Insert mode ("i", "a", "o", "c", "s", "R" and friends). Run reads keys
// from the same typeahead the dispatcher uses until Esc, Ctrl-C or
// Ctrl-\ Ctrl-N ends the session, then returns where the cursor goes and
// the keys that reproduce the insertion for ".".
//
// # Keys
//
//   - printable characters are inserted, or replace the character under
//     the cursor in Replace mode
//   - <CR> splits the line, keeping the indent with 'autoindent'
//   - <BS>, Ctrl-W and Ctrl-U delete within the inserted text
//   - <Del> deletes the character under the cursor
//   - <Tab> inserts a tab or spaces with 'expandtab'
//   - Ctrl-T and Ctrl-D change the indent by 'shiftwidth'
//   - Ctrl-V inserts the next key literally, Ctrl-K a digraph
//   - Ctrl-R {register} inserts a register
//   - cursor keys move the insert point and start a new recording
//
// A count given to the command repeats the typed text when the session
// ends with Esc. For "o" and "O" every repetition goes on a new line.
package editor
