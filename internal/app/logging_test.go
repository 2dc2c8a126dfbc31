package app

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"Warning", LogLevelWarn},
		{"error", LogLevelError},
		{"unknown", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf, Prefix: "test"})

	log.WithFields(map[string]any{"b": 2, "a": "x"}).Info("count %d", 3)

	re := regexp.MustCompile(`^\d{4}-\d\d-\d\dT\d\d:\d\d:\d\d\.\d{3} \[INFO\] test: count 3 \{a=x, b=2\}\n$`)
	if !re.MatchString(buf.String()) {
		t.Errorf("output = %q", buf.String())
	}
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf})

	log.Debug("debug")
	log.Info("info")
	log.Warn("warn")
	log.Error("error")

	out := buf.String()
	for _, s := range []string{"[DEBUG]", "[INFO]"} {
		if strings.Contains(out, s) {
			t.Errorf("output contains %s below the level", s)
		}
	}
	for _, s := range []string{"[WARN] warn", "[ERROR] error"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q", s)
		}
	}
}

func TestLoggerDerived(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})
	child := log.WithComponent("dispatcher")

	log.SetLevel(LogLevelDebug)
	child.Debug("cycle")
	if !strings.Contains(buf.String(), "[DEBUG] cycle {component=dispatcher}") {
		t.Errorf("output = %q, want the derived logger to follow SetLevel", buf.String())
	}
	if len(log.fields) != 0 {
		t.Error("WithComponent changed the parent's fields")
	}

	buf.Reset()
	log.Disable()
	child.Error("dropped")
	if buf.Len() != 0 {
		t.Errorf("output after Disable = %q", buf.String())
	}
	log.Enable()
	child.Error("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("output after Enable = %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	NullLogger.Error("nothing %d", 1)
	NullLogger.WithField("k", "v").Info("nothing")
}

func TestSetLogger(t *testing.T) {
	old := GetLogger()
	defer SetLogger(old)

	l := NewLogger(LoggerConfig{})
	SetLogger(l)
	if GetLogger() != l {
		t.Error("GetLogger() did not return the logger from SetLogger")
	}
}
