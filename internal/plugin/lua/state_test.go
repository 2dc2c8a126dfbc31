package lua

import (
	"context"
	"errors"
	"testing"
	"time"

	lua "github.com/yuin/gopher-lua"
)

func TestStateCall(t *testing.T) {
	s := NewState()
	defer s.Close()
	ctx := context.Background()

	if err := s.DoString(ctx, `function add(a, b) return a + b, "done" end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	got, err := s.Call(ctx, "add", lua.LNumber(2), lua.LNumber(3))
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	if len(got) != 2 || got[0] != lua.LNumber(5) || got[1] != lua.LString("done") {
		t.Errorf("Call() = %v, want [5 done]", got)
	}
	if top := s.L.GetTop(); top != 0 {
		t.Errorf("stack top after Call() = %d, want 0", top)
	}
}

func TestStateCallErrors(t *testing.T) {
	s := NewState()
	defer s.Close()
	ctx := context.Background()

	if err := s.DoString(ctx, `value = 1; function boom() error("boom") end`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if _, err := s.Call(ctx, "value"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(value) error = %v, want ErrNotFunction", err)
	}
	if _, err := s.Call(ctx, "missing"); !errors.Is(err, ErrNotFunction) {
		t.Errorf("Call(missing) error = %v, want ErrNotFunction", err)
	}
	if _, err := s.Call(ctx, "boom"); err == nil {
		t.Error("Call(boom) error = nil, want error")
	}
	if err := s.DoString(ctx, "this is not lua"); err == nil {
		t.Error("DoString() syntax error = nil, want error")
	}
}

func TestStateSandbox(t *testing.T) {
	s := NewState()
	defer s.Close()
	ctx := context.Background()

	tests := []string{"dofile", "loadfile", "load", "loadstring", "require", "io", "os", "debug", "package"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			if v := s.L.GetGlobal(name); v != lua.LNil {
				t.Errorf("global %s = %v, want nil", name, v)
			}
		})
	}

	if err := s.DoString(ctx, `x = string.upper("a") .. math.floor(1.5) .. table.concat({"b", "c"})`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if got := s.L.GetGlobal("x"); got != lua.LString("A1bc") {
		t.Errorf("x = %v, want A1bc", got)
	}
}

func TestStatePrint(t *testing.T) {
	var out []string
	s := NewState(WithPrint(func(msg string) { out = append(out, msg) }))
	defer s.Close()

	if err := s.DoString(context.Background(), `print("a", 1, true) print()`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if len(out) != 2 || out[0] != "a\t1\ttrue" || out[1] != "" {
		t.Errorf("print output = %q, want [\"a\\t1\\ttrue\" \"\"]", out)
	}
}

func TestStateTimeout(t *testing.T) {
	s := NewState(WithExecutionTimeout(50 * time.Millisecond))
	defer s.Close()

	start := time.Now()
	err := s.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, ErrExecutionTimeout) {
		t.Errorf("DoString() error = %v, want ErrExecutionTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("DoString() took %v", elapsed)
	}

	// The state stays usable.
	if err := s.DoString(context.Background(), `y = 1`); err != nil {
		t.Errorf("DoString() after timeout error = %v", err)
	}
}

func TestStateClosed(t *testing.T) {
	s := NewState()
	s.Close()
	s.Close()

	if err := s.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("DoString() error = %v, want ErrStateClosed", err)
	}
	if _, err := s.Call(context.Background(), "f"); !errors.Is(err, ErrStateClosed) {
		t.Errorf("Call() error = %v, want ErrStateClosed", err)
	}
}
