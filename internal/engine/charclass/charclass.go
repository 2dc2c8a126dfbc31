// Package charclass answers the character questions the command
// dispatcher asks: is this a word character, is it blank, how many bytes
// and screen cells does it take, and does it combine with the character
// before it.
package charclass

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidKeyword is returned for a malformed 'iskeyword' value.
var ErrInvalidKeyword = errors.New("charclass: invalid iskeyword")

// DefaultIsKeyword is Vim's default 'iskeyword'.
const DefaultIsKeyword = "@,48-57,_,192-255"

// Character classes used by word motions.
const (
	ClassBlank = 0
	ClassPunct = 1
	ClassWord  = 2
	classHan   = 0x4e00
	classKana  = 0x30a0
	classHang  = 0xac00
)

// Info is the classification of a single character.
type Info struct {
	IsWord    bool
	IsBlank   bool
	ByteWidth int
	Cells     int
	Class     int
}

// Classifier classifies characters according to 'iskeyword' and computes
// virtual columns according to 'tabstop'.
type Classifier struct {
	word    [256]bool
	tabstop int
}

// New creates a Classifier. An empty iskeyword uses DefaultIsKeyword.
func New(iskeyword string, tabstop int) (*Classifier, error) {
	if iskeyword == "" {
		iskeyword = DefaultIsKeyword
	}
	if tabstop <= 0 {
		tabstop = 8
	}
	c := &Classifier{tabstop: tabstop}
	if err := c.parseKeyword(iskeyword); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns a Classifier with Vim's defaults.
func Default() *Classifier {
	c, err := New(DefaultIsKeyword, 8)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Classifier) parseKeyword(spec string) error {
	for _, part := range strings.Split(spec, ",") {
		if part == "" {
			continue
		}
		exclude := false
		if len(part) > 1 && part[0] == '^' {
			exclude = true
			part = part[1:]
		}
		if part == "@" {
			for i := 0; i < 256; i++ {
				if unicode.IsLetter(rune(i)) {
					c.word[i] = !exclude
				}
			}
			continue
		}
		lo, hi, err := parseRange(part)
		if err != nil {
			return err
		}
		for i := lo; i <= hi; i++ {
			c.word[i] = !exclude
		}
	}
	return nil
}

func parseRange(part string) (int, int, error) {
	if part == "@-@" {
		return '@', '@', nil
	}
	loS, hiS, isRange := strings.Cut(part, "-")
	if isRange && loS == "" {
		// "-" on its own is the minus character.
		return '-', '-', nil
	}
	lo, err := parseKeywordChar(loS)
	if err != nil {
		return 0, 0, err
	}
	hi := lo
	if isRange {
		if hi, err = parseKeywordChar(hiS); err != nil {
			return 0, 0, err
		}
	}
	if lo > hi || hi > 255 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidKeyword, part)
	}
	return lo, hi, nil
}

func parseKeywordChar(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError || r > 255 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidKeyword, s)
	}
	return int(r), nil
}

// Tabstop returns the tab width used for virtual columns.
func (c *Classifier) Tabstop() int {
	return c.tabstop
}

// IsBlank reports whether r is a space or a tab.
func IsBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

// IsWord reports whether r is a keyword character.
func (c *Classifier) IsWord(r rune) bool {
	if r < 0 {
		return false
	}
	if r < 256 {
		return c.word[r]
	}
	return c.Class(r) >= ClassWord
}

// Class returns the word-motion class of r: 0 for blanks (including the
// end of a line), 1 for punctuation and 2 or more for word characters.
// Different scripts get different classes so "w" stops between them.
func (c *Classifier) Class(r rune) int {
	if r == 0 || IsBlank(r) {
		return ClassBlank
	}
	if r < 256 {
		if c.word[r] {
			return ClassWord
		}
		if r == 0xa0 {
			return ClassBlank
		}
		return ClassPunct
	}
	switch {
	case unicode.IsSpace(r):
		return ClassBlank
	case unicode.Is(unicode.Han, r):
		return classHan
	case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
		return classKana
	case unicode.Is(unicode.Hangul, r):
		return classHang
	case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsMark(r):
		return ClassWord
	}
	return ClassPunct
}

// Classify returns all facts about r.
func (c *Classifier) Classify(r rune) Info {
	return Info{
		IsWord:    c.IsWord(r),
		IsBlank:   IsBlank(r),
		ByteWidth: utf8.RuneLen(r),
		Cells:     Cells(r),
		Class:     c.Class(r),
	}
}

// Cells returns the screen cells r occupies, not counting tabs. Control
// characters are shown as ^X and take two cells.
func Cells(r rune) int {
	if r < 0x20 || r == 0x7f {
		return 2
	}
	if w := runewidth.RuneWidth(r); w > 0 {
		return w
	}
	if IsComposing(r) {
		return 0
	}
	return 1
}

// IsComposing reports whether r combines with the preceding character.
func IsComposing(r rune) bool {
	if r < 0x300 {
		return false
	}
	if unicode.Is(unicode.Mn, r) || unicode.Is(unicode.Me, r) {
		return true
	}
	return norm.NFD.PropertiesString(string(r)).CCC() != 0
}
