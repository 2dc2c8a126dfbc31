// Package plugin finds the Lua scripts that define operator functions
// and loads them at startup.
//
// A script is either a single file "name.lua" or a directory "name"
// holding "init.lua". Scripts are searched for in:
//
//	~/.config/modalcore/lua/
//	.modalcore/lua/           (relative to the working directory)
//
// When two paths hold a script of the same name the first one wins.
// Scripts load in name order.
package plugin
