package config

import (
	"errors"
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.CPOptions != "aABceFs" {
		t.Errorf("CPOptions = %q, want aABceFs", o.CPOptions)
	}
	if o.Selection != "inclusive" {
		t.Errorf("Selection = %q, want inclusive", o.Selection)
	}
	if o.ShiftWidth != 8 || o.TabStop != 8 {
		t.Errorf("ShiftWidth, TabStop = %d, %d, want 8, 8", o.ShiftWidth, o.TabStop)
	}
	if !o.StartOfLine {
		t.Error("StartOfLine = false, want true")
	}
	if !o.HasCpo('c') || o.HasCpo('y') {
		t.Errorf("HasCpo on %q is wrong", o.CPOptions)
	}
}

func TestOptions_Set(t *testing.T) {
	tests := []struct {
		arg   string
		check func(Options) bool
	}{
		{"sw=4", func(o Options) bool { return o.ShiftWidth == 4 }},
		{"shiftwidth:2", func(o Options) bool { return o.ShiftWidth == 2 }},
		{"sw+=2", func(o Options) bool { return o.ShiftWidth == 10 }},
		{"sw-=3", func(o Options) bool { return o.ShiftWidth == 5 }},
		{"sw^=2", func(o Options) bool { return o.ShiftWidth == 16 }},
		{"et", func(o Options) bool { return o.ExpandTab }},
		{"nosol", func(o Options) bool { return !o.StartOfLine }},
		{"invws", func(o Options) bool { return !o.WrapScan }},
		{"wrapscan!", func(o Options) bool { return !o.WrapScan }},
		{"cpo+=y", func(o Options) bool { return o.CPOptions == "aABceFsy" }},
		{"cpo-=c", func(o Options) bool { return o.CPOptions == "aABeFs" }},
		{"nf+=alpha", func(o Options) bool { return o.NrFormats == "bin,hex,alpha" }},
		{"nf-=bin", func(o Options) bool { return o.NrFormats == "hex" }},
		{"nf^=octal", func(o Options) bool { return o.NrFormats == "octal,bin,hex" }},
		{"sel=exclusive", func(o Options) bool { return o.Selection == "exclusive" }},
		{"opfunc=MyOp", func(o Options) bool { return o.OperatorFunc == "MyOp" }},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			o := DefaultOptions()
			if err := o.Set(tt.arg); err != nil {
				t.Fatalf("Set(%q) error = %v", tt.arg, err)
			}
			if !tt.check(o) {
				t.Errorf("Set(%q) gave %+v", tt.arg, o)
			}
		})
	}
}

func TestOptions_SetReset(t *testing.T) {
	o := DefaultOptions()
	_ = o.Set("sw=3")
	if err := o.Set("sw&"); err != nil {
		t.Fatalf("Set(sw&) error = %v", err)
	}
	if o.ShiftWidth != 8 {
		t.Errorf("ShiftWidth = %d, want 8", o.ShiftWidth)
	}
}

func TestOptions_SetErrors(t *testing.T) {
	tests := []struct {
		arg  string
		want error
	}{
		{"", ErrInvalidArgument},
		{"bogus", ErrUnknownOption},
		{"nobogus", ErrUnknownOption},
		{"bogus=1", ErrUnknownOption},
		{"sw=x", ErrInvalidValue},
		{"sw-=100", ErrInvalidValue},
		{"ts=0", ErrInvalidValue},
		{"sel=sideways", ErrInvalidValue},
		{"et=1", ErrInvalidArgument},
		{"nosw", ErrInvalidArgument},
		{"sw!", ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			o := DefaultOptions()
			if err := o.Set(tt.arg); !errors.Is(err, tt.want) {
				t.Errorf("Set(%q) error = %v, want %v", tt.arg, err, tt.want)
			}
		})
	}
}

func TestOptions_Get(t *testing.T) {
	o := DefaultOptions()
	tests := []struct {
		name string
		want string
	}{
		{"sw", "  shiftwidth=8"},
		{"sol", "  startofline"},
		{"et", "noexpandtab"},
		{"cpo", "  cpoptions=aABceFs"},
	}
	for _, tt := range tests {
		got, err := o.Get(tt.name)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
	if _, err := o.Get("bogus"); !errors.Is(err, ErrUnknownOption) {
		t.Errorf("Get(bogus) error = %v, want ErrUnknownOption", err)
	}
}

func TestOptions_Apply(t *testing.T) {
	o := DefaultOptions()
	err := o.Apply(map[string]any{
		"sw":        int64(4),
		"expandtab": true,
		"ai":        int64(1),
		"log":       map[string]any{"level": "debug"},
		"lua":       map[string]any{"script": "ops.lua"},
		"tabstop":   "x",
		"nothing":   1,
	})
	if !errors.Is(err, ErrInvalidValue) || !errors.Is(err, ErrUnknownOption) {
		t.Errorf("Apply() error = %v, want both ErrInvalidValue and ErrUnknownOption", err)
	}
	if o.ShiftWidth != 4 || !o.ExpandTab || !o.AutoIndent {
		t.Errorf("Apply() = %+v", o)
	}
	if o.LogLevel != "debug" || o.LuaScript != "ops.lua" {
		t.Errorf("LogLevel, LuaScript = %q, %q", o.LogLevel, o.LuaScript)
	}
	if o.TabStop != 8 {
		t.Errorf("TabStop = %d, want 8", o.TabStop)
	}
}

func TestHasFlag(t *testing.T) {
	if !HasFlag("startsel,stopsel", "stopsel") {
		t.Error("HasFlag(startsel,stopsel, stopsel) = false")
	}
	if HasFlag("startsel", "stop") {
		t.Error("HasFlag(startsel, stop) = true")
	}
}
