// Package key defines the input codes consumed by the command dispatcher.
//
// A Code is either a character (zero or positive, including the ASCII
// control characters) or a special key (negative). Special keys are spread
// well above the character range in magnitude, so a table keyed by the
// magnitude of a code never confuses the two.
//
// # Notation
//
// Key sequences are written in Vim notation:
//
//   - Plain characters stand for themselves: "3dw", "gUiw"
//   - Control characters: "<C-v>", "<C-\>", "<Esc>", "<CR>", "<Nul>"
//   - Special keys: "<Left>", "<S-Right>", "<C-End>", "<Del>", "<kDel>"
//   - A literal '<' is written "<lt>"
//
// Parse turns such a string into codes and Format turns codes back into it.
package key
