package vim

import (
	"errors"
	"strings"
	"sync"
	"unicode"
)

// Register errors.
var (
	ErrInvalidRegister = errors.New("vim: invalid register")
	ErrReadOnlyReg     = errors.New("vim: register is read-only")
	ErrEmptyRegister   = errors.New("vim: register is empty")
)

// Register is one named storage location for text. Lines hold the text
// without line terminators; a charwise register of "ab\ncd" has two lines.
type Register struct {
	// Name is the register character.
	Name rune

	// Lines holds the text content.
	Lines []string

	// Type records how the text was yanked and how it is put.
	Type MotionType

	// Width is the widest line in display cells, for blockwise registers.
	Width int
}

// Text returns the register content joined with newlines. A linewise
// register ends with a newline.
func (r Register) Text() string {
	s := strings.Join(r.Lines, "\n")
	if r.Type == MotionLinewise && len(r.Lines) > 0 {
		s += "\n"
	}
	return s
}

// Empty reports whether the register holds nothing.
func (r Register) Empty() bool {
	return len(r.Lines) == 0
}

func (r Register) clone() Register {
	r.Lines = append([]string(nil), r.Lines...)
	return r
}

// ClipboardProvider abstracts system clipboard access.
type ClipboardProvider interface {
	// Get returns the current clipboard content.
	Get() (string, error)

	// Set sets the clipboard content.
	Set(content string) error
}

// RegisterStore manages all registers.
type RegisterStore struct {
	mu        sync.RWMutex
	registers map[rune]Register

	// previous is the register the unnamed register currently refers to.
	previous rune

	clipboard ClipboardProvider
}

// NewRegisterStore creates a new register store.
func NewRegisterStore() *RegisterStore {
	return &RegisterStore{
		registers: make(map[rune]Register),
		previous:  '0',
	}
}

// SetClipboard sets the clipboard provider used for "+" and "*".
func (rs *RegisterStore) SetClipboard(clipboard ClipboardProvider) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.clipboard = clipboard
}

// IsValidRegister reports whether name can be used with '"'. When
// writing is true the read-only registers are rejected.
func IsValidRegister(name rune, writing bool) bool {
	switch {
	case name == '"':
		return true
	case name >= 'a' && name <= 'z', name >= 'A' && name <= 'Z':
		return true
	case name >= '0' && name <= '9':
		return true
	case name == '-', name == '_', name == '+', name == '*':
		return true
	case name == '.', name == ':', name == '/', name == '%':
		return !writing
	}
	return false
}

// Get returns a copy of the register name. The unnamed register resolves
// to the register last written.
func (rs *RegisterStore) Get(name rune) (Register, error) {
	if !IsValidRegister(name, false) {
		return Register{}, ErrInvalidRegister
	}
	name = unicode.ToLower(name)
	if name == '_' {
		return Register{Name: '_'}, nil
	}

	rs.mu.RLock()
	clipboard := rs.clipboard
	if name == '"' {
		name = rs.previous
	}
	reg, ok := rs.registers[name]
	rs.mu.RUnlock()

	if (name == '+' || name == '*') && clipboard != nil {
		content, err := clipboard.Get()
		if err != nil {
			return Register{}, err
		}
		return fromClipboard(name, content), nil
	}
	if !ok {
		return Register{Name: name}, nil
	}
	return reg.clone(), nil
}

func fromClipboard(name rune, content string) Register {
	reg := Register{Name: name, Type: MotionCharwise}
	if strings.HasSuffix(content, "\n") {
		reg.Type = MotionLinewise
		content = strings.TrimSuffix(content, "\n")
	}
	reg.Lines = strings.Split(content, "\n")
	return reg
}

// Set stores lines in register name. An uppercase name appends to the
// lowercase register. Writing "_" discards the text.
func (rs *RegisterStore) Set(name rune, lines []string, typ MotionType, width int) error {
	if !IsValidRegister(name, true) {
		if IsValidRegister(name, false) {
			return ErrReadOnlyReg
		}
		return ErrInvalidRegister
	}
	if name == '_' {
		return nil
	}
	reg := Register{Name: unicode.ToLower(name), Lines: append([]string(nil), lines...), Type: typ, Width: width}

	rs.mu.Lock()
	clipboard := rs.clipboard
	if name == '"' {
		name = '0'
		reg.Name = '0'
	}
	if unicode.IsUpper(name) {
		reg = rs.appendLocked(reg)
	}
	rs.registers[reg.Name] = reg
	rs.previous = reg.Name
	rs.mu.Unlock()

	if (reg.Name == '+' || reg.Name == '*') && clipboard != nil {
		return clipboard.Set(reg.Text())
	}
	return nil
}

// appendLocked merges reg into the existing register of the same name.
// Appending linewise text, or appending to a linewise register, adds
// lines; otherwise the first new line joins the last old one.
func (rs *RegisterStore) appendLocked(reg Register) Register {
	old, ok := rs.registers[reg.Name]
	if !ok || old.Empty() {
		return reg
	}
	out := old.clone()
	if reg.Type == MotionLinewise || old.Type == MotionLinewise {
		out.Lines = append(out.Lines, reg.Lines...)
		out.Type = MotionLinewise
	} else {
		last := len(out.Lines) - 1
		out.Lines[last] += reg.Lines[0]
		out.Lines = append(out.Lines, reg.Lines[1:]...)
	}
	out.Width = max(out.Width, reg.Width)
	return out
}

// Yank stores yanked text. With no register given it goes to "0".
func (rs *RegisterStore) Yank(name rune, lines []string, typ MotionType, width int) error {
	if name == 0 || name == '"' {
		name = '0'
	}
	return rs.Set(name, lines, typ, width)
}

// Delete stores deleted text.
//
// A named register receives the text first. A delete of whole lines, of
// more than one line, or with useRegOne then shifts "1".."8" down to
// "2".."9" and stores into "1". Any other delete without a named register
// goes to the small delete register "-".
func (rs *RegisterStore) Delete(name rune, lines []string, typ MotionType, width int, useRegOne bool) error {
	if name == '_' {
		return nil
	}
	named := name != 0 && name != '"'
	if named {
		if err := rs.Set(name, lines, typ, width); err != nil {
			return err
		}
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if typ == MotionLinewise || len(lines) > 1 || useRegOne {
		for i := '9'; i > '1'; i-- {
			if prev, ok := rs.registers[i-1]; ok {
				prev.Name = i
				rs.registers[i] = prev
			} else {
				delete(rs.registers, i)
			}
		}
		rs.registers['1'] = Register{Name: '1', Lines: append([]string(nil), lines...), Type: typ, Width: width}
		if !named {
			rs.previous = '1'
		}
		return nil
	}
	if !named {
		rs.registers['-'] = Register{Name: '-', Lines: append([]string(nil), lines...), Type: typ, Width: width}
		rs.previous = '-'
	}
	return nil
}

// SetReadOnly updates one of the read-only registers ".", ":", "/" or "%".
func (rs *RegisterStore) SetReadOnly(name rune, text string) {
	switch name {
	case '.', ':', '/', '%':
	default:
		return
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.registers[name] = Register{Name: name, Lines: strings.Split(text, "\n"), Type: MotionCharwise}
}
