package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger with key/value convenience methods
type Logger struct {
	zl     zerolog.Logger
	fields map[string]interface{}
}

var global = NewDevelopment()

// NewProduction creates a JSON logger at info level on stdout
func NewProduction() *Logger {
	return NewWithWriter(os.Stdout, zerolog.InfoLevel)
}

// NewDevelopment creates a console logger at debug level on stdout
func NewDevelopment() *Logger {
	return NewWithWriter(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}, zerolog.DebugLevel)
}

// NewWithWriter creates a logger writing to w at the given level
func NewWithWriter(w io.Writer, level zerolog.Level) *Logger {
	return &Logger{
		zl:     zerolog.New(w).Level(level).With().Timestamp().Logger(),
		fields: make(map[string]interface{}),
	}
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop(), fields: make(map[string]interface{})}
}

// SetGlobal replaces the process-wide logger
func SetGlobal(logger *Logger) {
	if logger != nil {
		global = logger
	}
}

// Global returns the process-wide logger
func Global() *Logger {
	return global
}

func (l *Logger) emit(e *zerolog.Event, msg string, kv []interface{}) {
	for k, v := range l.fields {
		e.Interface(k, v)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		if err, isErr := kv[i+1].(error); isErr {
			e.Str(key, err.Error())
			continue
		}
		e.Interface(key, kv[i+1])
	}
	e.Msg(msg)
}

// Debug logs at debug level
func (l *Logger) Debug(msg string, kv ...interface{}) { l.emit(l.zl.Debug(), msg, kv) }

// Info logs at info level
func (l *Logger) Info(msg string, kv ...interface{}) { l.emit(l.zl.Info(), msg, kv) }

// Warn logs at warn level
func (l *Logger) Warn(msg string, kv ...interface{}) { l.emit(l.zl.Warn(), msg, kv) }

// Error logs at error level
func (l *Logger) Error(msg string, kv ...interface{}) { l.emit(l.zl.Error(), msg, kv) }

// Fatal logs and exits the process
func (l *Logger) Fatal(msg string, kv ...interface{}) { l.emit(l.zl.Fatal(), msg, kv) }

// With returns a child logger carrying additional fields
func (l *Logger) With(kv ...interface{}) *Logger {
	fields := make(map[string]interface{}, len(l.fields)+len(kv)/2)
	for k, v := range l.fields {
		fields[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fields[key] = kv[i+1]
		}
	}
	return &Logger{zl: l.zl, fields: fields}
}

// Component is shorthand for With("component", name)
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

// WithContext returns a logger enriched with the request-scoped fields in ctx
func (l *Logger) WithContext(ctx context.Context) *Logger {
	kv := contextFields(ctx)
	if len(kv) == 0 {
		return l
	}
	return l.With(kv...)
}

// Debug logs with the global logger
func Debug(msg string, kv ...interface{}) { global.Debug(msg, kv...) }

// Info logs with the global logger
func Info(msg string, kv ...interface{}) { global.Info(msg, kv...) }

// Warn logs with the global logger
func Warn(msg string, kv ...interface{}) { global.Warn(msg, kv...) }

// Error logs with the global logger
func Error(msg string, kv ...interface{}) { global.Error(msg, kv...) }

// Fatal logs with the global logger and exits
func Fatal(msg string, kv ...interface{}) { global.Fatal(msg, kv...) }
