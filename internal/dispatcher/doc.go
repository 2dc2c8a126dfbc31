// Package dispatcher runs Normal and Visual mode: it reads one command at a
// time from the typeahead, looks it up in the command table and executes
// it, resolving a pending operator once its motion is known.
//
// # Architecture
//
// One call to DispatchOne is one command cycle:
//
//  1. A register name and a count are collected ("\"a", "3").
//  2. The command key is looked up in the Registry. Keys within the
//     direct range are found by index, keys above it by binary search.
//  3. Commands that need a second character ("f", "r", "m", "g", "z",
//     "Ctrl-W") read it, with 'langmap' and digraphs applied.
//  4. The command runs. An operator ("d", "c", "y", ...) only records
//     itself in the OpArg and waits for the next cycle.
//  5. When an operator is pending and the command was a motion, the
//     resolver computes the span (linewise, charwise or blockwise,
//     inclusive or exclusive, with the "o_v" forcing) and applies the
//     operator.
//  6. Post-dispatch hooks and metrics see the Result of the cycle.
//
// Failed commands beep, drop the pending operator and flush stuffed keys
// so a failing macro stops; LastError keeps the reason.
//
// # Collaborators
//
// Everything outside the loop comes in through Deps: the key source, line
// storage, the undo journal, search, folds, marks, Insert mode, the
// command line and the "g@" operator function. Keys, Lines and Registers
// are required; the others fall back to in-memory implementations.
//
// # Usage
//
//	buf := buffer.NewBufferFromString(text)
//	d, err := dispatcher.New(dispatcher.Deps{
//	    Keys:      typeahead.NewBuffer(source),
//	    Lines:     buf,
//	    Journal:   history.NewHistory(buf, 0),
//	    Registers: vim.NewRegisterStore(),
//	}, dispatcher.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	err = d.Run(ctx) // nil after ":q", io.EOF when the keys run out
//
// # Hooks
//
// Post-dispatch hooks observe every cycle:
//
//	d.RegisterPostHook(dispatcher.PostDispatchFunc(func(r *dispatcher.Result) {
//	    log.Printf("%s took %v", r.Code, r.Duration)
//	}))
package dispatcher
