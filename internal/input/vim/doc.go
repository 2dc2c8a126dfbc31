// Package vim holds the small value types shared by the command
// dispatcher: the count accumulator, the operator table, motion types and
// the register store.
//
// # Counts
//
// A count is typed before a command ("3j") and again after an operator
// ("d2w"). CountState accumulates digits and Merge multiplies the two, so
// "2d3w" acts on six words. Counts saturate at MaxCount.
//
// # Operators
//
// GetOpType maps the keys of an operator ("d", "gu", "zf") to an OpType.
// OnLines reports operators that always round a characterwise span out to
// whole lines.
//
// # Registers
//
// RegisterStore keeps named, numbered and special registers. Yank and
// Delete apply the numbered-register rules: yanks go to "0", multi-line
// deletes shift "1" through "9", small deletes land in "-".
package vim
