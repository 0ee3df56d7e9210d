package logging

import (
	"context"
	"maps"
)

const rootModule = "satonic"

// Logger is the leveled logging contract used across the console. It mirrors
// github.com/goliatone/go-logger so the glog provider needs no extra shims.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithFields(fields map[string]any) Logger
	WithContext(ctx context.Context) Logger
}

// Provider hands out named loggers.
type Provider interface {
	GetLogger(name string) Logger
}

// ModuleLogger returns a logger scoped to module, or a no-op logger when no
// provider is configured.
func ModuleLogger(provider Provider, module string) Logger {
	if module == "" {
		module = rootModule
	} else {
		module = rootModule + "." + module
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return logger.WithFields(map[string]any{"module": module})
}

// WithFields attaches a copy of fields to logger. Nil loggers and empty maps
// are passed through.
func WithFields(logger Logger, fields map[string]any) Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return logger.WithFields(copied)
}

// NoOp returns a logger that drops every entry.
func NoOp() Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) Logger   { return n }
func (n noopLogger) WithContext(context.Context) Logger { return n }
