// Package logging provides the leveled, structured logger used by the
// cascade command-line tools. Library packages return errors instead of
// logging; only the tools talk to this package.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// Level represents a logging severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level. The empty string means Info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Level(0), fmt.Errorf("unsupported log level %q", s)
	}
}

// Field is one structured key/value pair.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for building a Field.
func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger writes leveled entries as text or JSON lines.
type Logger struct {
	level      Level
	json       bool
	fields     []Field
	underlying *log.Logger
}

// New constructs a Logger writing to out at the given level.
func New(level Level, jsonFormat bool, out io.Writer) *Logger {
	return &Logger{
		level:      level,
		json:       jsonFormat,
		underlying: log.New(out, "", log.LstdFlags),
	}
}

// With returns a logger that attaches fields to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	combined := make([]Field, 0, len(l.fields)+len(fields))
	combined = append(combined, l.fields...)
	combined = append(combined, fields...)
	return &Logger{
		level:      l.level,
		json:       l.json,
		fields:     combined,
		underlying: l.underlying,
	}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(Debug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(Info, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(Warn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(Error, msg, fields) }

func (l *Logger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	all := append(append([]Field{}, l.fields...), fields...)
	if l.json {
		l.logJSON(level, msg, all)
		return
	}
	l.logText(level, msg, all)
}

func (l *Logger) logText(level Level, msg string, fields []Field) {
	if len(fields) == 0 {
		l.underlying.Printf("[%s] %s", level, msg)
		return
	}
	var b strings.Builder
	for i, f := range fields {
		if f.Key == "" {
			continue
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", f.Key, f.Value)
	}
	l.underlying.Printf("[%s] %s %s", level, msg, b.String())
}

func (l *Logger) logJSON(level Level, msg string, fields []Field) {
	payload := map[string]any{
		"time":  time.Now().Format(time.RFC3339Nano),
		"level": level.String(),
		"msg":   msg,
	}
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		payload[f.Key] = f.Value
	}
	data, err := json.Marshal(payload)
	if err != nil {
		l.underlying.Printf("[ERROR] marshal log payload failed: %v", err)
		return
	}
	l.underlying.Print(string(data))
}
