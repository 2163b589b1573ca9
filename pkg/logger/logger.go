// Package logger provides a small structured logging interface over slog.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	callerSkipFrames = 3 // getCaller -> log -> logging method -> actual caller

	keySource    = "source"
	keyRequestID = "request_id"
)

// Logger defines the logging interface.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	Named(name string) Logger
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// Field constructors.
func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val any) Field                { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

type requestIDKey struct{}

// WithRequestID returns a context whose log lines carry id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// slogLogger implements Logger using slog.
type slogLogger struct {
	logger *slog.Logger
}

func (l *slogLogger) Named(name string) Logger {
	return &slogLogger{logger: l.logger.With(slog.String("logger", name))}
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.logger.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+2)
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	if id := RequestID(ctx); id != "" {
		attrs = append(attrs, slog.String(keyRequestID, id))
	}
	attrs = append(attrs, slog.String(keySource, getCaller()))
	l.logger.LogAttrs(ctx, level, msg, attrs...)
}

// Option configures Init.
type Option func(*options)

type options struct {
	format string
	out    io.Writer
}

// WithFormat selects "text" (default) or "json" output.
func WithFormat(format string) Option {
	return func(o *options) { o.format = strings.ToLower(strings.TrimSpace(format)) }
}

// WithOutput redirects log output; stdout by default.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.out = w
		}
	}
}

var (
	mu       sync.RWMutex
	global   Logger
	levelVar slog.LevelVar
)

// Init initializes the global logger at info level.
func Init(opts ...Option) error {
	o := options{format: "text", out: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	levelVar.Set(slog.LevelInfo)
	ho := &slog.HandlerOptions{Level: &levelVar}
	var h slog.Handler
	switch o.format {
	case "", "text":
		h = slog.NewTextHandler(o.out, ho)
	case "json":
		h = slog.NewJSONHandler(o.out, ho)
	default:
		return fmt.Errorf("unknown log format: %s", o.format)
	}

	mu.Lock()
	global = &slogLogger{logger: slog.New(h)}
	mu.Unlock()
	return nil
}

// getCaller returns the caller location as relative/path/file.go:line.
func getCaller() string {
	_, file, line, ok := runtime.Caller(callerSkipFrames)
	if !ok {
		return "unknown:0"
	}
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	relPath, err := filepath.Rel(cwd, file)
	if err != nil {
		return fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}
	return fmt.Sprintf("%s:%d", relPath, line)
}

// Get returns the global logger.
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		panic("logger not initialized. Call logger.Init() first")
	}
	return global
}

// Named creates a named logger.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync flushes buffered log entries.
func Sync() error {
	// slog does not buffer; nothing to flush
	return nil
}

// SetLevel updates the current logging level for the global logger handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString parses and sets the logging level.
// Accepts: debug, info, warn/warning, error (case-insensitive).
func SetLevelString(level string) error {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		SetLevel(slog.LevelDebug)
	case "", "info":
		SetLevel(slog.LevelInfo)
	case "warn", "warning":
		SetLevel(slog.LevelWarn)
	case "error":
		SetLevel(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %s", level)
	}
	return nil
}
