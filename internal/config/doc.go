// Package config holds the editor options the command dispatcher
// consults and loads them from files and the environment.
//
// # Layers
//
// Options are built in three layers, later ones overriding earlier:
//
//  1. DefaultOptions, the Vim defaults
//  2. the config file, TOML or YAML by extension
//  3. MODALCORE_* environment variables
//
// Keys are option names or their short forms, so "sw = 4" and
// "shiftwidth = 4" are the same. The log level and the Lua script sit in
// the "log" and "lua" tables:
//
//	shiftwidth = 4
//	cpoptions = "aABceFsy"
//
//	[log]
//	level = "debug"
//
// # Run-time Changes
//
// Options.Set takes the argument forms of ":set": "name", "noname",
// "invname", "name!", "name&", "name=value", "name+=value",
// "name-=value" and "name^=value". Options.Get formats the value for
// "name?".
//
// Config.Watch reloads the file when it changes. The reloaded options
// wait in Config until TakeReload is called, which the editor does
// between dispatch cycles.
package config
