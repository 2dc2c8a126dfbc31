// Package lua runs operator functions written in Lua.
//
// "g@" calls the function named by 'operatorfunc' with "char", "line" or
// "block". The function finds the text it operates on through the "["
// and "]" marks and edits the buffer with the ed module:
//
//	function upper(motion)
//	    local first = ed.mark("[")
//	    local last = ed.mark("]")
//	    for n = first, last do
//	        ed.set_line(n, string.upper(ed.line(n)))
//	    end
//	end
//
// The ed module provides:
//
//	ed.line(n)              text of line n
//	ed.lines(first, last)   table of lines
//	ed.line_count()
//	ed.set_line(n, text)
//	ed.append_line(after, text)
//	ed.delete_line(n)
//	ed.mark(name)           line and column, nil when not set
//	ed.cursor()             line and column
//	ed.set_cursor(line, col)
//	ed.normal(keys)         run Normal mode commands, in <C-x> notation
//	ed.message(text)
//
// Columns are byte offsets starting at zero; lines start at one.
//
// # State
//
// Scripts run in a State with only the base, table, string and math
// libraries. dofile, loadfile, load and require are removed, and print
// goes to the state's output function instead of stdout. Every call runs
// under a deadline so a script that loops forever is stopped.
package lua
