// Package cursor implements the motion and text object algorithms used
// by the command dispatcher.
//
// The algorithms work on a Text, a read-only view of the buffer lines
// plus a character classifier. Positions are buffer.Pos values: 1-based
// lines and 0-based byte columns. A column equal to the line length is
// the end of the line; several motions pass through it.
//
// # Word Motions
//
//   - FwdWord (w, W): to the start of the next word
//   - BckWord (b, B): to the start of the previous word
//   - EndWord (e, E): to the end of the word
//   - BckendWord (ge, gE): to the end of the previous word
//
// A word is a run of characters of the same class; blanks and the end of
// a line separate words. With bigword set, every non-blank character has
// the same class.
//
// # Paragraphs, Sentences and Sections
//
// FindPar moves over paragraphs ({, }) and sections ([[, ]], [], ][).
// FindSent moves over sentences ((, )).
//
// # Text Objects
//
// The object functions (Word, Sentence, Paragraph, Block, Quote, Tag)
// take the current Selection and return the area to operate on.
package cursor
