// Package buffer provides the line store the command dispatcher edits.
//
// Lines are numbered from 1 and never contain a line terminator. A buffer
// always holds at least one line; deleting the last remaining line leaves
// a single empty line behind.
//
// The package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Line-oriented edits: AppendLine, ReplaceLine, DeleteLine
//   - Change listeners so marks and folds can follow inserted and
//     deleted lines
//   - Read-only snapshots used by the undo journal
//   - Modifiable and locked flags consulted before structural edits
//
// Basic usage:
//
//	buf := buffer.NewBufferFromString("alpha\nbeta")
//	_ = buf.AppendLine(1, "between")  // alpha, between, beta
//	_ = buf.DeleteLine(3)             // alpha, between
//
// Positions are expressed as Pos values: a 1-based line and a 0-based byte
// column within that line.
package buffer
