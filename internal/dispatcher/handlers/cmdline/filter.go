package cmdline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	osexec "os/exec"
	"strings"

	"github.com/dshills/modalcore/internal/engine/buffer"
)

// Shell runs external commands for ":!" and filters.
type Shell interface {
	// Run executes cmd with input on its standard input and returns what
	// it wrote to standard output.
	Run(ctx context.Context, cmd string, input string) (string, error)
}

// ExecShell runs commands with a system shell.
type ExecShell struct {
	// Path is the shell; when empty $SHELL or /bin/sh is used.
	Path string
	// Args come before the command, "-c" by default.
	Args []string
	// Dir is the working directory.
	Dir string
}

// Run implements Shell.
func (s ExecShell) Run(ctx context.Context, cmd string, input string) (string, error) {
	shell := s.Path
	if shell == "" {
		if shell = os.Getenv("SHELL"); shell == "" {
			shell = "/bin/sh"
		}
	}
	args := s.Args
	if len(args) == 0 {
		args = []string{"-c"}
	}

	c := osexec.CommandContext(ctx, shell, append(append([]string(nil), args...), cmd)...)
	c.Dir = s.Dir
	c.Stdin = strings.NewReader(input)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return stdout.String(), fmt.Errorf("%w: %s: %s", ErrShell, cmd, msg)
	}
	return stdout.String(), nil
}

// expandBang replaces each "!" in cmd with the previous command, "\!"
// with a plain "!".
func expandBang(cmd, prev string) (string, error) {
	if !strings.Contains(cmd, "!") {
		return cmd, nil
	}
	var b strings.Builder
	for i := 0; i < len(cmd); i++ {
		switch {
		case cmd[i] == '\\' && i+1 < len(cmd) && cmd[i+1] == '!':
			b.WriteByte('!')
			i++
		case cmd[i] == '!':
			if prev == "" {
				return "", fmt.Errorf("%w: no previous command", ErrShell)
			}
			b.WriteString(prev)
		default:
			b.WriteByte(cmd[i])
		}
	}
	return b.String(), nil
}

// bang handles ":!cmd" and ":{range}!cmd".
func (e *Executor) bang(ctx context.Context, r Range, arg string) error {
	cmd, err := expandBang(strings.TrimSpace(arg), e.lastBang)
	if err != nil {
		return err
	}
	if cmd == "" {
		return fmt.Errorf("%w: empty command", ErrShell)
	}
	e.lastBang = cmd
	e.log.Debug("shell: %s", cmd)

	if r.Addresses == 0 {
		out, err := e.shell.Run(ctx, cmd, "")
		if out != "" {
			e.ui.Message(strings.TrimRight(out, "\n"))
		}
		return err
	}
	return e.filter(ctx, r, cmd)
}

// filter sends the lines of r through cmd and replaces them with its
// output. The cursor goes to the first new line.
func (e *Executor) filter(ctx context.Context, r Range, cmd string) error {
	start := max(r.Start, 1)
	var in strings.Builder
	for n := start; n <= r.End; n++ {
		in.WriteString(e.lines.Line(n))
		in.WriteByte('\n')
	}
	out, err := e.shell.Run(ctx, cmd, in.String())
	if err != nil {
		return err
	}

	var repl []string
	if out != "" {
		repl = strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	}
	if err := e.save(start, r.End); err != nil {
		return err
	}
	if err := e.replaceLines(start, r.End, repl); err != nil {
		return err
	}
	last := max(start+len(repl)-1, start)
	last = min(last, e.lines.LineCount())
	e.marks.SetChange(buffer.Pos{Line: start}, buffer.Pos{Line: last})
	e.gotoLine(min(start, e.lines.LineCount()))
	if n := r.End - start + 1; n > 2 {
		e.ui.Message(fmt.Sprintf("%d lines filtered", n))
	}
	return nil
}
