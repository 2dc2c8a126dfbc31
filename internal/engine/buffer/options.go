package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithName sets the buffer name.
func WithName(name string) Option {
	return func(b *Buffer) {
		b.name = name
	}
}

// WithReadOnly creates the buffer with edits disabled.
func WithReadOnly() Option {
	return func(b *Buffer) {
		b.modifiable = false
	}
}
