package cursor

import (
	"strings"

	"github.com/dshills/modalcore/internal/engine/buffer"
	"github.com/dshills/modalcore/internal/engine/charclass"
)

// Visual mode characters as used by Selection.Mode and Object.Mode.
const (
	ModeChar  rune = 'v'
	ModeLine  rune = 'V'
	ModeBlock rune = 0x16
)

// Selection is the state a text object starts from.
type Selection struct {
	// Active is set in Visual mode; Start is then the fixed end.
	Active bool
	Mode   rune
	Start  buffer.Pos
	Cursor buffer.Pos
	// Exclusive is set when 'selection' is "exclusive".
	Exclusive bool
}

func (s Selection) single() bool {
	return !s.Active || s.Start == s.Cursor
}

// Object is the area a text object selects. In Visual mode Start is the
// new fixed end and End the new cursor; for an operator they are the
// span, with Inclusive and Linewise describing its shape.
type Object struct {
	Start     buffer.Pos
	End       buffer.Pos
	Inclusive bool
	Linewise  bool
	// Mode is the Visual mode to switch to, 0 to keep the current one.
	Mode rune
}

// Word selects count words ("iw", "aw", "iW", "aW").
func (t *Text) Word(sel Selection, count int, include, bigword bool) (Object, error) {
	cur := sel.Cursor
	visStart := sel.Start
	var startPos buffer.Pos
	includeWhite := false
	inclusive := true
	var err error

	if sel.Active && sel.Exclusive && sel.Start.Before(cur) {
		t.Dec(&cur)
	}

	if sel.single() {
		t.backInLine(&cur, bigword)
		startPos = cur
		if (t.cls(cur, bigword) == 0) == include {
			if cur, err = t.EndWord(cur, 1, bigword, true, true); err != nil {
				return Object{}, err
			}
		} else {
			cur, _ = t.FwdWord(cur, 1, bigword, true)
			if cur.Col == 0 {
				t.Decl(&cur)
			} else {
				t.oneLeft(&cur)
			}
			includeWhite = include
		}
		visStart = startPos
		count--
	}

	for ; count > 0; count-- {
		inclusive = true
		if sel.Active && cur.Before(visStart) {
			if t.Decl(&cur) == -1 {
				return Object{}, ErrFailed
			}
			if include != (t.cls(cur, bigword) != 0) {
				if cur, err = t.BckWord(cur, 1, bigword, true); err != nil {
					return Object{}, err
				}
			} else {
				if cur, err = t.BckendWord(cur, 1, bigword, true); err != nil {
					return Object{}, err
				}
				t.Incl(&cur)
			}
			continue
		}
		if t.Incl(&cur) == -1 {
			return Object{}, ErrFailed
		}
		if include != (t.cls(cur, bigword) == 0) {
			cur, err = t.FwdWord(cur, 1, bigword, true)
			if err != nil && count > 1 {
				return Object{}, err
			}
			if !t.oneLeft(&cur) {
				inclusive = false
			}
		} else if cur, err = t.EndWord(cur, 1, bigword, true, true); err != nil {
			return Object{}, err
		}
	}

	if includeWhite && (t.cls(cur, bigword) != 0 || (cur.Col == 0 && !inclusive)) {
		// no trailing white: take the white before the word instead,
		// but never the indent
		pos := startPos
		if t.oneLeft(&pos) {
			t.backInLine(&pos, bigword)
			if t.cls(pos, bigword) == 0 && pos.Col > 0 {
				visStart = pos
			}
		}
	}

	obj := Object{Start: visStart, End: cur, Inclusive: inclusive}
	if sel.Active {
		if sel.Exclusive && inclusive && !cur.Before(visStart) {
			t.Inc(&obj.End)
		}
		if sel.Mode == ModeLine {
			obj.Mode = ModeChar
		}
	}
	return obj, nil
}

// Sentence selects count sentences ("is", "as").
func (t *Text) Sentence(sel Selection, count int, include, joinSpaces bool) (Object, error) {
	if !sel.single() {
		cur := sel.Cursor
		if cur.Before(sel.Start) {
			p, err := t.FindSent(cur, Backward, count, joinSpaces)
			if err != nil {
				return Object{}, err
			}
			return Object{Start: sel.Start, End: p, Inclusive: true}, nil
		}
		t.Incl(&cur)
		cur = t.findSentForward(cur, count, charclass.IsBlank(t.Gchar(cur)), joinSpaces)
		if sel.Exclusive {
			t.Inc(&cur)
		}
		return Object{Start: sel.Start, End: cur, Inclusive: true}, nil
	}

	startPos := sel.Cursor
	pos := startPos
	cur, _ := t.FindSent(sel.Cursor, Forward, 1, joinSpaces)

	for charclass.IsBlank(t.Gchar(pos)) {
		if t.Incl(&pos) == -1 {
			break
		}
	}
	startBlank := pos == cur
	if startBlank {
		t.findFirstBlank(&startPos)
	} else {
		cur, _ = t.FindSent(cur, Backward, 1, joinSpaces)
		startPos = cur
	}

	ncount := count
	if include {
		ncount = count * 2
	} else if startBlank {
		ncount--
	}
	if ncount > 0 {
		cur = t.findSentForward(cur, ncount, true, joinSpaces)
	} else {
		t.Decl(&cur)
	}

	if include {
		if startBlank {
			t.findFirstBlank(&cur)
			if charclass.IsBlank(t.Gchar(cur)) {
				t.Decl(&cur)
			}
		} else if !charclass.IsBlank(t.Gchar(cur)) {
			t.findFirstBlank(&startPos)
		}
	}

	obj := Object{Start: startPos, End: cur}
	if sel.Active {
		if sel.Exclusive {
			t.Inc(&obj.End)
		}
		obj.Inclusive = true
		obj.Mode = ModeChar
		return obj, nil
	}
	// include the line break after the sentence, if there is one
	obj.Inclusive = t.Incl(&obj.End) == -1
	return obj, nil
}

// Paragraph selects count paragraphs ("ip", "ap"). The result is
// linewise.
func (t *Text) Paragraph(sel Selection, count int, include bool) (Object, error) {
	n := t.LineCount()
	startLnum := sel.Cursor.Line

	if sel.Active && startLnum != sel.Start.Line {
		return t.extendParagraph(sel, count, include)
	}

	whiteInFront := t.LineWhite(startLnum)
	for startLnum > 1 {
		if whiteInFront {
			if !t.LineWhite(startLnum - 1) {
				break
			}
		} else if t.LineWhite(startLnum-1) || t.StartPS(startLnum, 0, false) {
			break
		}
		startLnum--
	}

	endLnum := startLnum
	for endLnum <= n && t.LineWhite(endLnum) {
		endLnum++
	}
	endLnum--

	i := count
	if !include && whiteInFront {
		i--
	}
	doWhite := false
	for ; i > 0; i-- {
		if endLnum == n {
			return Object{}, ErrFailed
		}
		if !include {
			doWhite = t.LineWhite(endLnum + 1)
		}
		if include || !doWhite {
			endLnum++
			for endLnum < n && !t.LineWhite(endLnum+1) && !t.StartPS(endLnum+1, 0, false) {
				endLnum++
			}
		}
		if i == 1 && whiteInFront && include {
			break
		}
		if include || doWhite {
			for endLnum < n && t.LineWhite(endLnum+1) {
				endLnum++
			}
		}
	}

	if !whiteInFront && !t.LineWhite(endLnum) && include {
		for startLnum > 1 && t.LineWhite(startLnum-1) {
			startLnum--
		}
	}

	obj := Object{
		Start:    buffer.Pos{Line: startLnum},
		End:      buffer.Pos{Line: endLnum},
		Linewise: true,
	}
	if sel.Active {
		obj.Mode = ModeLine
	}
	return obj, nil
}

func (t *Text) extendParagraph(sel Selection, count int, include bool) (Object, error) {
	n := t.LineCount()
	startLnum := sel.Cursor.Line
	dir := Forward
	limit := n
	if startLnum < sel.Start.Line {
		dir, limit = Backward, 1
	}
	var err error
	for i := count; i > 0; i-- {
		if startLnum == limit {
			err = ErrFailed
			break
		}
		prevWhite := -1
		for pass := 0; pass < 2; pass++ {
			startLnum += dir
			white := 0
			if t.LineWhite(startLnum) {
				white = 1
			}
			if prevWhite == white {
				startLnum -= dir
				break
			}
			for startLnum != limit {
				next := t.LineWhite(startLnum + dir)
				edge := startLnum
				if dir > 0 {
					edge++
				}
				if (white == 1) != next || (white == 0 && t.StartPS(edge, 0, false)) {
					break
				}
				startLnum += dir
			}
			if !include || startLnum == limit {
				break
			}
			prevWhite = white
		}
	}
	return Object{Start: sel.Start, End: buffer.Pos{Line: startLnum}, Linewise: true}, err
}

// Block selects the count'th enclosing block delimited by open and
// close ("i(", "a{", "ib", ...).
func (t *Text) Block(sel Selection, count int, include bool, open, close rune) (Object, error) {
	cur := sel.Cursor
	oldStart, oldEnd := cur, cur

	if sel.single() {
		if open == '{' {
			for t.InIndent(cur, 1) {
				if t.Inc(&cur) != 0 {
					break
				}
			}
		}
		if t.Gchar(cur) == open {
			cur.Col += len(string(open))
		}
	} else if sel.Start.Before(cur) {
		oldStart = sel.Start
		cur = sel.Start
	} else {
		oldEnd = sel.Start
	}

	var startPos buffer.Pos
	found := false
	for ; count > 0; count-- {
		p, err := t.FindUnmatched(cur, open, close, Backward, 1)
		if err != nil {
			break
		}
		cur, startPos, found = p, p, true
	}
	if !found {
		return Object{}, ErrFailed
	}
	endPos, err := t.FindUnmatched(startPos, open, close, Forward, 1)
	if err != nil {
		return Object{}, err
	}
	cur = endPos

	sol := false
	for !include {
		t.Incl(&startPos)
		sol = cur.Col == 0
		t.Decl(&cur)
		for t.InIndent(cur, 1) {
			sol = true
			if t.Decl(&cur) != 0 {
				break
			}
		}
		if !startPos.Before(oldStart) && !oldEnd.Before(cur) && startPos != cur && sel.Active {
			// the area did not grow: go to the next enclosing block
			p := oldStart
			t.Decl(&p)
			sp, err := t.FindUnmatched(p, open, close, Backward, 1)
			if err != nil {
				return Object{}, err
			}
			ep, err := t.FindUnmatched(sp, open, close, Forward, 1)
			if err != nil {
				return Object{}, err
			}
			startPos, cur = sp, ep
			continue
		}
		break
	}

	if sel.Active {
		if sel.Exclusive {
			t.Inc(&cur)
		}
		if sol && t.Gchar(cur) != 0 {
			t.Inc(&cur)
		}
		return Object{Start: startPos, End: cur, Inclusive: true, Mode: ModeChar}, nil
	}

	obj := Object{Start: startPos, End: cur}
	switch {
	case sol:
		t.Incl(&obj.End)
	case !cur.Before(startPos):
		obj.Inclusive = true
	default:
		// nothing between the delimiters
		obj.End = startPos
	}
	return obj, nil
}

// Quote selects a quoted string on the cursor line ("i\"", "a'").
// Characters in escape make the next character literal.
func (t *Text) Quote(sel Selection, count int, include bool, quote rune, escape string) (Object, error) {
	line := t.Line(sel.Cursor.Line)
	first := sel.Cursor.Col
	if !sel.single() && sel.Start.Line == sel.Cursor.Line && sel.Start.Col < first {
		first = sel.Start.Col
	}
	q := string(quote)

	var colStart, colEnd int
	if strings.HasPrefix(line[min(first, len(line)):], q) {
		// on a quote: find out from the start of the line whether it
		// opens or closes a string
		colStart = 0
		for {
			colStart = findNextQuote(line, colStart, q, "")
			if colStart < 0 || colStart > first {
				return Object{}, ErrFailed
			}
			colEnd = findNextQuote(line, colStart+1, q, escape)
			if colEnd < 0 {
				return Object{}, ErrFailed
			}
			if colStart <= first && first <= colEnd {
				break
			}
			colStart = colEnd + 1
		}
	} else {
		colStart = findPrevQuote(line, first, q, escape)
		if !strings.HasPrefix(line[colStart:], q) {
			colStart = findNextQuote(line, colStart, q, "")
			if colStart < 0 {
				return Object{}, ErrFailed
			}
		}
		colEnd = findNextQuote(line, colStart+1, q, escape)
		if colEnd < 0 {
			return Object{}, ErrFailed
		}
	}

	if include {
		if colEnd+1 < len(line) && charclass.IsBlank(rune(line[colEnd+1])) {
			for colEnd+1 < len(line) && charclass.IsBlank(rune(line[colEnd+1])) {
				colEnd++
			}
		} else {
			for colStart > 0 && charclass.IsBlank(rune(line[colStart-1])) {
				colStart--
			}
		}
	}

	if !include && count < 2 {
		colStart += len(q)
	}
	lnum := sel.Cursor.Line
	obj := Object{Start: buffer.Pos{Line: lnum, Col: colStart}, End: buffer.Pos{Line: lnum, Col: colEnd}}
	inclusive := false
	if include || count > 1 {
		if t.Inc(&obj.End) == 2 {
			inclusive = true
		}
	}
	if sel.Active {
		if !sel.Exclusive {
			t.Dec(&obj.End)
		}
		obj.Inclusive = true
		obj.Mode = ModeChar
		return obj, nil
	}
	obj.Inclusive = inclusive
	return obj, nil
}

func findNextQuote(line string, col int, q, escape string) int {
	for col < len(line) {
		c := line[col]
		if escape != "" && strings.IndexByte(escape, c) >= 0 {
			col++
		} else if strings.HasPrefix(line[col:], q) {
			return col
		}
		col += max(charclass.CharLen(line, col), 1)
	}
	return -1
}

func findPrevQuote(line string, col int, q, escape string) int {
	for col > 0 {
		col = charclass.PrevCharStart(line, col)
		n := 0
		if escape != "" {
			for col-n > 0 && strings.IndexByte(escape, line[col-n-1]) >= 0 {
				n++
			}
		}
		if n&1 == 1 {
			col -= n
		} else if strings.HasPrefix(line[col:], q) {
			break
		}
	}
	return col
}

// tag is one "<name ...>" or "</name>" found in the text.
type tag struct {
	name       string
	closing    bool
	start, end int // offsets of '<' and one past '>'
}

// Tag selects the count'th enclosing XML/HTML element ("it", "at").
func (t *Text) Tag(sel Selection, count int, include bool) (Object, error) {
	text, offsets := t.joined()
	cur := offsetOf(offsets, sel.Cursor)

	type pair struct{ open, close tag }
	var stack []tag
	var enclosing []pair
	for _, tg := range scanTags(text) {
		if !tg.closing {
			stack = append(stack, tg)
			continue
		}
		for i := len(stack) - 1; i >= 0; i-- {
			if stack[i].name != tg.name {
				continue
			}
			open := stack[i]
			stack = stack[:i]
			if open.start <= cur && cur < tg.end {
				enclosing = append(enclosing, pair{open, tg})
			}
			break
		}
	}
	// enclosing is ordered innermost first
	if count > len(enclosing) {
		return Object{}, ErrFailed
	}
	p := enclosing[count-1]

	var start, end int
	if include {
		start, end = p.open.start, p.close.end
	} else {
		start, end = p.open.end, p.close.start
	}
	obj := Object{Start: posOf(offsets, start), End: posOf(offsets, end)}
	if sel.Active {
		if end > start && !sel.Exclusive {
			obj.End = posOf(offsets, prevOffset(text, end))
		}
		obj.Inclusive = true
		obj.Mode = ModeChar
	}
	return obj, nil
}

func scanTags(text string) []tag {
	var tags []tag
	for i := 0; i < len(text); i++ {
		if text[i] != '<' {
			continue
		}
		j := i + 1
		closing := false
		if j < len(text) && text[j] == '/' {
			closing = true
			j++
		}
		k := j
		for k < len(text) && !strings.ContainsRune(" \t\n/>", rune(text[k])) {
			k++
		}
		if k == j {
			continue
		}
		gt := strings.IndexByte(text[k:], '>')
		if gt < 0 {
			break
		}
		end := k + gt + 1
		if !closing && text[end-2] == '/' {
			i = end - 1
			continue
		}
		tags = append(tags, tag{name: text[j:k], closing: closing, start: i, end: end})
		i = end - 1
	}
	return tags
}

// joined returns the buffer as one string and the offset of each line.
func (t *Text) joined() (string, []int) {
	var b strings.Builder
	n := t.LineCount()
	offsets := make([]int, n+1)
	for lnum := 1; lnum <= n; lnum++ {
		offsets[lnum] = b.Len()
		b.WriteString(t.Line(lnum))
		b.WriteByte('\n')
	}
	return b.String(), offsets
}

func offsetOf(offsets []int, p buffer.Pos) int {
	if p.Line < 1 || p.Line >= len(offsets) {
		return 0
	}
	return offsets[p.Line] + p.Col
}

func posOf(offsets []int, off int) buffer.Pos {
	lnum := 1
	for lnum+1 < len(offsets) && offsets[lnum+1] <= off {
		lnum++
	}
	return buffer.Pos{Line: lnum, Col: off - offsets[lnum]}
}

func prevOffset(text string, off int) int {
	if off <= 0 {
		return 0
	}
	if text[off-1] == '\n' {
		return off - 1
	}
	return charclass.PrevCharStart(text, off)
}
