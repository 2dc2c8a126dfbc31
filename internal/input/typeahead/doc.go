// Package typeahead supplies keys to the command dispatcher.
//
// A Buffer sits in front of a Source (a script, a terminal) and adds the
// queues the dispatcher needs:
//
//   - stuffed keys, queued by the program itself (":" ranges, dot-repeat,
//     Select-mode replacement); these are delivered first and are never
//     counted as typed
//   - pushed-back keys from Unget
//   - a non-blocking Peek used to absorb composing characters
//
// Keys the user typed can be recorded into a register with StartRecording.
package typeahead
