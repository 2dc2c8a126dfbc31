// Package app assembles an editor from the modalcore packages and runs
// its command loop.
//
// New builds the components in dependency order: configuration, the
// document and its buffer, undo history, marks, search, folds,
// registers, the command line, the Lua operator functions and finally
// the dispatcher. Run reads commands until ":q", the end of the keys or
// cancellation. Options reloaded from the config file are applied
// between commands.
//
//	ed, err := app.New(app.Options{File: "notes.txt", Keys: source})
//	if err != nil {
//	    return err
//	}
//	defer ed.Close()
//	return ed.Run(ctx)
package app
