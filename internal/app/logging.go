package app

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// LogLevel is the severity of a log message.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// String returns the upper-case level name.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a level name. Unknown names give LogLevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return LogLevelDebug
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// LoggerConfig configures a Logger.
type LoggerConfig struct {
	// Level is the lowest level written.
	Level LogLevel
	// Output defaults to os.Stderr.
	Output io.Writer
	// Prefix is written before every message.
	Prefix string
}

// DefaultLoggerConfig logs Info and above to stderr.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LogLevelInfo,
		Output: os.Stderr,
		Prefix: "modalcore",
	}
}

// sink is shared by a logger and the loggers derived from it, so
// SetLevel and SetOutput affect all of them.
type sink struct {
	mu       sync.Mutex
	level    LogLevel
	output   io.Writer
	disabled bool
}

// Logger writes leveled messages in the form
//
//	2006-01-02T15:04:05.000 [LEVEL] prefix: message {key=value, ...}
//
// Fields are written in key order.
type Logger struct {
	sink   *sink
	prefix string
	fields map[string]any
}

// NewLogger creates a logger.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{
		sink:   &sink{level: cfg.Level, output: cfg.Output},
		prefix: cfg.Prefix,
	}
}

// WithField returns a logger that adds key=value to every message.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a logger that adds fields to every message.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)
	return &Logger{sink: l.sink, prefix: l.prefix, fields: merged}
}

// WithComponent sets the component field.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the lowest level written.
func (l *Logger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// SetOutput redirects the output.
func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.output = w
}

// Disable stops all output until Enable.
func (l *Logger) Disable() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.disabled = true
}

// Enable resumes output.
func (l *Logger) Enable() {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.disabled = false
}

// Debug logs at debug level. Args are applied to format with Sprintf.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LogLevelDebug, format, args...)
}

// Info logs at info level.
func (l *Logger) Info(format string, args ...any) {
	l.log(LogLevelInfo, format, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LogLevelWarn, format, args...)
}

// Error logs at error level.
func (l *Logger) Error(format string, args ...any) {
	l.log(LogLevelError, format, args...)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if l.sink.disabled || level < l.sink.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05.000"))
	fmt.Fprintf(&b, " [%s] ", level)
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)
	if len(l.fields) > 0 {
		b.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(l.fields)) {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, l.fields[k])
		}
		b.WriteString("}")
	}
	b.WriteString("\n")
	_, _ = io.WriteString(l.sink.output, b.String())
}

// NullLogger discards everything.
var NullLogger = &Logger{sink: &sink{disabled: true, output: io.Discard}}

var (
	appLogger   *Logger
	appLoggerMu sync.Mutex
)

// GetLogger returns the process-wide logger, creating a default one on
// first use.
func GetLogger() *Logger {
	appLoggerMu.Lock()
	defer appLoggerMu.Unlock()
	if appLogger == nil {
		appLogger = NewLogger(DefaultLoggerConfig())
	}
	return appLogger
}

// SetLogger replaces the process-wide logger.
func SetLogger(l *Logger) {
	appLoggerMu.Lock()
	defer appLoggerMu.Unlock()
	appLogger = l
}
