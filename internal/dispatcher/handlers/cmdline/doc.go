// Package cmdline reads command lines typed after ":", "/" and "?" and
// executes a small set of Ex commands.
//
// The Reader edits the line in place with the usual command-line keys
// (Backspace, Ctrl-W, Ctrl-U, Ctrl-V, Ctrl-R and the cursor keys) and
// keeps a history per kind of line: one for Ex commands and one shared by
// both search directions.
//
// The Executor understands line ranges (".", "$", "%", numbers, marks and
// "+N"/"-N" offsets) and the commands the Normal mode operators rely on:
//
//	:[range]d[elete] [x]       delete lines into register x
//	:[range]y[ank] [x]         yank lines
//	:[range]s[ubstitute]/p/r/[flags]
//	:[range]&[&]               repeat the last substitute
//	:[range]!cmd               filter lines through a shell command
//	:!cmd                      run a shell command
//	:[range]norm[al][!] keys   run Normal mode commands
//	:se[t] args                change options
//	:w[rite] [file], :q[uit][!], :x[it], :wq
//	:reg[isters], :di[splay]
//
// Anything else is reported as ErrNotEditorCommand.
package cmdline
