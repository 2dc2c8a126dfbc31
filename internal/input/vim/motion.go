package vim

// MotionType defines how a motion affects text selection.
type MotionType uint8

const (
	// MotionCharwise selects characters (e.g., w, e, f).
	MotionCharwise MotionType = iota

	// MotionLinewise selects entire lines (e.g., j, k, G).
	MotionLinewise

	// MotionBlockwise selects a rectangular block (Ctrl-V visual).
	MotionBlockwise
)

// String returns the motion type name.
func (m MotionType) String() string {
	switch m {
	case MotionCharwise:
		return "charwise"
	case MotionLinewise:
		return "linewise"
	case MotionBlockwise:
		return "blockwise"
	default:
		return "unknown"
	}
}
