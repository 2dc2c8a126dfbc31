package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dshills/modalcore/internal/config/loader"
)

// Options are the editor options.
type Options struct {
	CPOptions   string
	Selection   string
	SelectMode  string
	KeyModel    string
	StartOfLine bool
	TildeOp     bool

	ShiftWidth int
	ShiftRound bool
	TabStop    int
	ExpandTab  bool
	TextWidth  int
	AutoIndent bool
	JoinSpaces bool

	RightLeft  bool
	IsKeyword  string
	WhichWrap  string
	LangMap    string
	MatchPairs string
	NrFormats  string

	OperatorFunc string
	EqualPrg     string
	FormatPrg    string

	SideScrollOff int

	WrapScan   bool
	IgnoreCase bool
	SmartCase  bool
	Clipboard  string
	UndoLevels int

	LogLevel  string
	LuaScript string
}

// DefaultOptions returns the Vim defaults.
func DefaultOptions() Options {
	return Options{
		CPOptions:   "aABceFs",
		Selection:   "inclusive",
		StartOfLine: true,
		ShiftWidth:  8,
		TabStop:     8,
		IsKeyword:   "@,48-57,_,192-255",
		WhichWrap:   "b,s",
		MatchPairs:  "(:),{:},[:]",
		NrFormats:   "bin,hex",
		WrapScan:    true,
		UndoLevels:  1000,
		LogLevel:    "info",
	}
}

// HasCpo reports whether flag is in 'cpoptions'.
func (o *Options) HasCpo(flag byte) bool {
	return strings.IndexByte(o.CPOptions, flag) >= 0
}

// HasFlag reports whether a comma separated option such as 'keymodel'
// or 'selectmode' contains item.
func HasFlag(list, item string) bool {
	for _, f := range strings.Split(list, ",") {
		if f == item {
			return true
		}
	}
	return false
}

type optKind uint8

const (
	boolOpt optKind = iota
	numOpt
	strOpt
)

// optDef describes one option: its names and where it lives in Options.
type optDef struct {
	name  string
	short string
	kind  optKind
	// commaList options take "+=" and "-=" as list edits; flag lists
	// such as 'cpoptions' take them as character edits.
	commaList bool
	b         func(*Options) *bool
	n         func(*Options) *int
	s         func(*Options) *string
	check     func(string) error
}

func oneOf(values ...string) func(string) error {
	return func(v string) error {
		for _, want := range values {
			if v == want {
				return nil
			}
		}
		return fmt.Errorf("%w: %q, want one of %s", ErrInvalidValue, v, strings.Join(values, ", "))
	}
}

var optDefs = []optDef{
	{name: "autoindent", short: "ai", kind: boolOpt, b: func(o *Options) *bool { return &o.AutoIndent }},
	{name: "clipboard", short: "cb", kind: strOpt, commaList: true, s: func(o *Options) *string { return &o.Clipboard }},
	{name: "cpoptions", short: "cpo", kind: strOpt, s: func(o *Options) *string { return &o.CPOptions }},
	{name: "equalprg", short: "ep", kind: strOpt, s: func(o *Options) *string { return &o.EqualPrg }},
	{name: "expandtab", short: "et", kind: boolOpt, b: func(o *Options) *bool { return &o.ExpandTab }},
	{name: "formatprg", short: "fp", kind: strOpt, s: func(o *Options) *string { return &o.FormatPrg }},
	{name: "ignorecase", short: "ic", kind: boolOpt, b: func(o *Options) *bool { return &o.IgnoreCase }},
	{name: "iskeyword", short: "isk", kind: strOpt, commaList: true, s: func(o *Options) *string { return &o.IsKeyword }},
	{name: "joinspaces", short: "js", kind: boolOpt, b: func(o *Options) *bool { return &o.JoinSpaces }},
	{name: "keymodel", short: "km", kind: strOpt, commaList: true, s: func(o *Options) *string { return &o.KeyModel }},
	{name: "langmap", short: "lmap", kind: strOpt, commaList: true, s: func(o *Options) *string { return &o.LangMap }},
	{name: "log.level", kind: strOpt, s: func(o *Options) *string { return &o.LogLevel },
		check: oneOf("debug", "info", "warn", "error")},
	{name: "lua.script", kind: strOpt, s: func(o *Options) *string { return &o.LuaScript }},
	{name: "matchpairs", short: "mps", kind: strOpt, commaList: true, s: func(o *Options) *string { return &o.MatchPairs }},
	{name: "nrformats", short: "nf", kind: strOpt, commaList: true, s: func(o *Options) *string { return &o.NrFormats }},
	{name: "operatorfunc", short: "opfunc", kind: strOpt, s: func(o *Options) *string { return &o.OperatorFunc }},
	{name: "rightleft", short: "rl", kind: boolOpt, b: func(o *Options) *bool { return &o.RightLeft }},
	{name: "selection", short: "sel", kind: strOpt, s: func(o *Options) *string { return &o.Selection },
		check: oneOf("inclusive", "exclusive", "old")},
	{name: "selectmode", short: "slm", kind: strOpt, commaList: true, s: func(o *Options) *string { return &o.SelectMode }},
	{name: "shiftround", short: "sr", kind: boolOpt, b: func(o *Options) *bool { return &o.ShiftRound }},
	{name: "shiftwidth", short: "sw", kind: numOpt, n: func(o *Options) *int { return &o.ShiftWidth }},
	{name: "sidescrolloff", short: "siso", kind: numOpt, n: func(o *Options) *int { return &o.SideScrollOff }},
	{name: "smartcase", short: "scs", kind: boolOpt, b: func(o *Options) *bool { return &o.SmartCase }},
	{name: "startofline", short: "sol", kind: boolOpt, b: func(o *Options) *bool { return &o.StartOfLine }},
	{name: "tabstop", short: "ts", kind: numOpt, n: func(o *Options) *int { return &o.TabStop },
		check: func(v string) error {
			if n, _ := strconv.Atoi(v); n <= 0 {
				return fmt.Errorf("%w: tabstop must be positive", ErrInvalidValue)
			}
			return nil
		}},
	{name: "textwidth", short: "tw", kind: numOpt, n: func(o *Options) *int { return &o.TextWidth }},
	{name: "tildeop", short: "top", kind: boolOpt, b: func(o *Options) *bool { return &o.TildeOp }},
	{name: "undolevels", short: "ul", kind: numOpt, n: func(o *Options) *int { return &o.UndoLevels }},
	{name: "whichwrap", short: "ww", kind: strOpt, commaList: true, s: func(o *Options) *string { return &o.WhichWrap }},
	{name: "wrapscan", short: "ws", kind: boolOpt, b: func(o *Options) *bool { return &o.WrapScan }},
}

func lookupOpt(name string) (*optDef, bool) {
	for i := range optDefs {
		d := &optDefs[i]
		if d.name == name || (d.short != "" && d.short == name) {
			return d, true
		}
	}
	return nil, false
}

// Names returns the full option names in sorted order.
func Names() []string {
	names := make([]string, 0, len(optDefs))
	for _, d := range optDefs {
		names = append(names, d.name)
	}
	sort.Strings(names)
	return names
}

// Get formats the value of an option the way ":set name?" shows it.
func (o *Options) Get(name string) (string, error) {
	d, ok := lookupOpt(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	switch d.kind {
	case boolOpt:
		if *d.b(o) {
			return "  " + d.name, nil
		}
		return "no" + d.name, nil
	case numOpt:
		return fmt.Sprintf("  %s=%d", d.name, *d.n(o)), nil
	default:
		return fmt.Sprintf("  %s=%s", d.name, *d.s(o)), nil
	}
}

// Set applies one ":set" argument.
func (o *Options) Set(arg string) error {
	if arg == "" {
		return fmt.Errorf("%w: empty", ErrInvalidArgument)
	}
	name, op, value := splitSetArg(arg)

	if op == "" || op == "!" || op == "&" {
		if d, ok := lookupOpt(name); ok {
			return o.setFlag(d, op, false)
		}
		if d, ok := lookupOpt(strings.TrimPrefix(name, "no")); ok && strings.HasPrefix(name, "no") {
			if op != "" {
				return fmt.Errorf("%w: %s", ErrInvalidArgument, arg)
			}
			return o.setBool(d, false)
		}
		if d, ok := lookupOpt(strings.TrimPrefix(name, "inv")); ok && strings.HasPrefix(name, "inv") {
			if op != "" {
				return fmt.Errorf("%w: %s", ErrInvalidArgument, arg)
			}
			return o.setFlag(d, "!", true)
		}
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	d, ok := lookupOpt(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	if d.kind == boolOpt {
		return fmt.Errorf("%w: %s takes no value", ErrInvalidArgument, d.name)
	}
	if d.kind == numOpt {
		return o.setNumber(d, op, value)
	}
	return o.setString(d, op, value)
}

// splitSetArg splits "sw+=4" into "sw", "+=", "4". The operator is one
// of "", "!", "&", "=", ":", "+=", "-=" and "^=".
func splitSetArg(arg string) (name, op, value string) {
	i := 0
	for i < len(arg) && (isNameChar(arg[i])) {
		i++
	}
	name, rest := arg[:i], arg[i:]
	switch {
	case rest == "":
		return name, "", ""
	case rest == "!" || rest == "&":
		return name, rest, ""
	case strings.HasPrefix(rest, "+="), strings.HasPrefix(rest, "-="), strings.HasPrefix(rest, "^="):
		return name, rest[:2], rest[2:]
	case rest[0] == '=' || rest[0] == ':':
		return name, "=", rest[1:]
	}
	return arg, "", ""
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c == '.'
}

func (o *Options) setFlag(d *optDef, op string, inv bool) error {
	if op == "&" {
		def := DefaultOptions()
		switch d.kind {
		case boolOpt:
			*d.b(o) = *d.b(&def)
		case numOpt:
			*d.n(o) = *d.n(&def)
		default:
			*d.s(o) = *d.s(&def)
		}
		return nil
	}
	if d.kind != boolOpt {
		return fmt.Errorf("%w: %s is not a toggle", ErrInvalidArgument, d.name)
	}
	if op == "!" || inv {
		*d.b(o) = !*d.b(o)
		return nil
	}
	return o.setBool(d, true)
}

func (o *Options) setBool(d *optDef, v bool) error {
	if d.kind != boolOpt {
		return fmt.Errorf("%w: %s is not a toggle", ErrInvalidArgument, d.name)
	}
	*d.b(o) = v
	return nil
}

func (o *Options) setNumber(d *optDef, op, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%w: %s=%s", ErrInvalidValue, d.name, value)
	}
	cur := *d.n(o)
	switch op {
	case "+=":
		n = cur + n
	case "-=":
		n = cur - n
	case "^=":
		n = cur * n
	}
	if n < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, d.name)
	}
	if d.check != nil {
		if err := d.check(strconv.Itoa(n)); err != nil {
			return err
		}
	}
	*d.n(o) = n
	return nil
}

func (o *Options) setString(d *optDef, op, value string) error {
	cur := *d.s(o)
	switch op {
	case "+=":
		if d.commaList && cur != "" && value != "" {
			value = cur + "," + value
		} else {
			value = cur + value
		}
	case "^=":
		if d.commaList && cur != "" && value != "" {
			value = value + "," + cur
		} else {
			value = value + cur
		}
	case "-=":
		value = removeValue(cur, value, d.commaList)
	}
	if d.check != nil {
		if err := d.check(value); err != nil {
			return err
		}
	}
	*d.s(o) = value
	return nil
}

func removeValue(cur, value string, commaList bool) string {
	if !commaList {
		if strings.Contains(cur, value) {
			return strings.Replace(cur, value, "", 1)
		}
		// Flag lists drop each flag on its own.
		for i := 0; i < len(value); i++ {
			cur = strings.ReplaceAll(cur, value[i:i+1], "")
		}
		return cur
	}
	items := strings.Split(cur, ",")
	out := items[:0]
	removed := false
	for _, it := range items {
		if it == value && !removed {
			removed = true
			continue
		}
		out = append(out, it)
	}
	return strings.Join(out, ",")
}

// Apply sets options from a loaded configuration map. Nested tables
// give dotted names. Unknown names and bad values are collected and
// returned together; the valid entries are still applied.
func (o *Options) Apply(values map[string]any) error {
	var errs []error
	for name, v := range loader.Flatten(values) {
		if err := o.applyValue(name, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (o *Options) applyValue(name string, v any) error {
	d, ok := lookupOpt(strings.ToLower(name))
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}
	switch d.kind {
	case boolOpt:
		switch x := v.(type) {
		case bool:
			*d.b(o) = x
		case int64:
			*d.b(o) = x != 0
		case int:
			*d.b(o) = x != 0
		default:
			return fmt.Errorf("%w: %s wants a boolean, got %v", ErrInvalidValue, d.name, v)
		}
		return nil
	case numOpt:
		var n int
		switch x := v.(type) {
		case int:
			n = x
		case int64:
			n = int(x)
		case float64:
			n = int(x)
		case string:
			return o.setNumber(d, "=", x)
		default:
			return fmt.Errorf("%w: %s wants a number, got %v", ErrInvalidValue, d.name, v)
		}
		return o.setNumber(d, "=", strconv.Itoa(n))
	default:
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprint(v)
		}
		return o.setString(d, "=", s)
	}
}
