// Package renderer draws an editor on a terminal with tcell.
//
// A Frame is a copy of everything one redraw needs: the visible lines,
// the cursor, the status line and the command line. The editor loop
// builds a Frame after every command and hands it to View.Draw. Resizes
// arrive on the input goroutine and redraw the last Frame.
//
// Layout, from the top:
//
//	text rows      height-2 rows of buffer text, '~' past the end
//	status row     file name, [+], mode, cursor position
//	command row    the command line being typed, or the last message
//
// A multi-line message takes as many rows above the command row as it
// needs.
package renderer
