package dispatcher_test

import (
	"errors"
	"testing"

	"pgregory.net/rapid"

	"github.com/dshills/modalcore/internal/dispatcher"
	"github.com/dshills/modalcore/internal/input/key"
)

func TestDefaultRegistry(t *testing.T) {
	r := dispatcher.DefaultRegistry
	if got, want := r.Count(), len(dispatcher.Commands); got != want {
		t.Errorf("Count() = %d, want %d", got, want)
	}
	if got := r.Direct(); got != '~' {
		t.Errorf("Direct() = %d, want %d", got, '~')
	}
	for _, spec := range dispatcher.Commands {
		got, ok := r.Lookup(spec.Code)
		if !ok || got != spec {
			t.Errorf("Lookup(%s) = %+v, %v, want %+v", spec.Code, got, ok, spec)
		}
	}
}

func TestLookupMisses(t *testing.T) {
	r := dispatcher.DefaultRegistry
	for _, c := range []key.Code{0x7f, 0xe4, 0x100, 0x1F600, key.Code(-100000)} {
		if spec, ok := r.Lookup(c); ok {
			t.Errorf("Lookup(%d) = %+v, want no command", c, spec)
		}
	}
}

func TestLookupMatchesLinearSearch(t *testing.T) {
	known := make(map[key.Code]dispatcher.CommandSpec, len(dispatcher.Commands))
	for _, spec := range dispatcher.Commands {
		known[spec.Code] = spec
	}
	rapid.Check(t, func(rt *rapid.T) {
		c := key.Code(rapid.Int32Range(-0x10100, 0x200).Draw(rt, "code"))
		want, wantOK := known[c]
		got, ok := dispatcher.DefaultRegistry.Lookup(c)
		if ok != wantOK || got != want {
			rt.Fatalf("Lookup(%d) = %+v, %v, want %+v, %v", c, got, ok, want, wantOK)
		}
	})
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := dispatcher.NewRegistry([]dispatcher.CommandSpec{
		{Code: 'x', Kind: dispatcher.KindAbbrev},
		{Code: 'j', Kind: dispatcher.KindDown},
		{Code: 'x', Kind: dispatcher.KindError},
	})
	if !errors.Is(err, dispatcher.ErrDuplicateCommand) {
		t.Errorf("NewRegistry() error = %v, want ErrDuplicateCommand", err)
	}
}

func TestRegistryWithoutDirectRange(t *testing.T) {
	r, err := dispatcher.NewRegistry([]dispatcher.CommandSpec{
		{Code: 'j', Kind: dispatcher.KindDown},
		{Code: key.Up, Kind: dispatcher.KindUp},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	if r.Direct() != -1 {
		t.Errorf("Direct() = %d, want -1", r.Direct())
	}
	if spec, ok := r.Lookup(key.Up); !ok || spec.Kind != dispatcher.KindUp {
		t.Errorf("Lookup(Up) = %+v, %v", spec, ok)
	}
	if _, ok := r.Lookup('k'); ok {
		t.Error("Lookup(k) found a command")
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind dispatcher.Kind
		want string
	}{
		{dispatcher.KindGCmd, "gcmd"},
		{dispatcher.KindOperator, "operator"},
		{dispatcher.KindCtrlG, "fileinfo"},
		{dispatcher.Kind(250), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
