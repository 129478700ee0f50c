package gopublisher

import (
	"fmt"
	"log"
	"strings"
)

// Logger is the optional debug channel of the decoder.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

// Field is one structured key/value pair of a log entry.
type Field interface {
	Key() string
	Value() interface{}
}

type stringField struct{ key, val string }

func (f stringField) Key() string        { return f.key }
func (f stringField) Value() interface{} { return f.val }

type intField struct {
	key string
	val int
}

func (f intField) Key() string        { return f.key }
func (f intField) Value() interface{} { return f.val }

type int64Field struct {
	key string
	val int64
}

func (f int64Field) Key() string        { return f.key }
func (f int64Field) Value() interface{} { return f.val }

type hexField struct {
	key string
	val uint32
}

func (f hexField) Key() string        { return f.key }
func (f hexField) Value() interface{} { return fmt.Sprintf("%#x", f.val) }

type errorField struct {
	key string
	err error
}

func (f errorField) Key() string        { return f.key }
func (f errorField) Value() interface{} { return f.err }

func String(key, value string) Field        { return stringField{key, value} }
func Int(key string, value int) Field       { return intField{key, value} }
func Int64(key string, value int64) Field   { return int64Field{key, value} }
func Uint32(key string, value uint32) Field { return hexField{key, value} }
func Err(err error) Field                   { return errorField{"error", err} }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...Field) {}
func (NopLogger) Info(string, ...Field)  {}
func (NopLogger) Warn(string, ...Field)  {}
func (NopLogger) Error(string, ...Field) {}
func (NopLogger) With(...Field) Logger   { return NopLogger{} }

// LogLevel filters the entries of a StdLogger.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// StdLogger writes "LEVEL msg key=value ..." lines to a *log.Logger.
type StdLogger struct {
	out    *log.Logger
	level  LogLevel
	fields []Field
}

// NewStdLogger adapts out; entries below level are dropped.
func NewStdLogger(out *log.Logger, level LogLevel) *StdLogger {
	return &StdLogger{out: out, level: level}
}

func (l *StdLogger) log(level LogLevel, msg string, fields []Field) {
	if level < l.level || l.out == nil {
		return
	}
	var b strings.Builder
	b.WriteString(levelNames[level])
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range append(l.fields[:len(l.fields):len(l.fields)], fields...) {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	l.out.Print(b.String())
}

func (l *StdLogger) Debug(msg string, fields ...Field) { l.log(LevelDebug, msg, fields) }
func (l *StdLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *StdLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *StdLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

// With returns a logger that prefixes every entry with fields.
func (l *StdLogger) With(fields ...Field) Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &StdLogger{out: l.out, level: l.level, fields: merged}
}
