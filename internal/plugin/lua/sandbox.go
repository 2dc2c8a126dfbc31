package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// unsafeGlobals can load code from disk or from strings and so escape the
// sandbox.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "require", "module"}

// installSandbox removes the unsafe globals and routes print to out.
func installSandbox(L *lua.LState, out func(string)) {
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		out(strings.Join(parts, "\t"))
		return 0
	}))
}
