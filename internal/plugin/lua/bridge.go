package lua

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// linesToTable converts lines to a Lua sequence.
func linesToTable(L *lua.LState, lines []string) *lua.LTable {
	t := L.CreateTable(len(lines), 0)
	for _, s := range lines {
		t.Append(lua.LString(s))
	}
	return t
}

// checkLine reads argument n as a line number in 1..count.
func checkLine(L *lua.LState, n, count int) int {
	lnum := L.CheckInt(n)
	if lnum < 1 || lnum > count {
		L.ArgError(n, fmt.Sprintf("line %d out of range 1..%d", lnum, count))
	}
	return lnum
}

// markName reads argument n as a single character mark name.
func markName(L *lua.LState, n int) rune {
	s := L.CheckString(n)
	r := []rune(s)
	if len(r) != 1 {
		L.ArgError(n, "mark name must be one character")
	}
	return r[0]
}
