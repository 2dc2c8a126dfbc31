package cmdline

// Handler is a Reader and an Executor working on the same registers,
// ready to be used as the command line of a dispatcher.
type Handler struct {
	*Reader
	*Executor
}

// New creates a handler.
func New(deps Deps) *Handler {
	ex := NewExecutor(deps)
	return &Handler{
		Reader:   NewReader(ex.regs),
		Executor: ex,
	}
}
