package logging

import (
	"context"
	"fmt"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// GlogConfig captures the go-logger options exposed through configuration.
type GlogConfig struct {
	Level     string
	Format    string
	AddSource bool
}

// GlogProvider backs the console loggers with go-logger.
type GlogProvider struct {
	root *glog.BaseLogger
}

// NewGlogProvider constructs a provider from cfg.
func NewGlogProvider(cfg GlogConfig) (*GlogProvider, error) {
	options := []glog.Option{}

	if level := normalizeLevel(cfg.Level); level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	return &GlogProvider{root: glog.NewLogger(options...)}, nil
}

// GetLogger returns a named child logger.
func (p *GlogProvider) GetLogger(name string) Logger {
	if p == nil {
		return NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return wrapGlog(p.root)
	}
	return wrapGlog(p.root.GetLogger(name))
}

func wrapGlog(inner glog.Logger) Logger {
	if inner == nil {
		return NoOp()
	}
	return &glogAdapter{inner: inner}
}

type glogAdapter struct {
	inner glog.Logger
}

func (l *glogAdapter) Trace(msg string, args ...any) { l.inner.Trace(msg, args...) }
func (l *glogAdapter) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *glogAdapter) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *glogAdapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *glogAdapter) Error(msg string, args ...any) { l.inner.Error(msg, args...) }
func (l *glogAdapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, args...) }

func (l *glogAdapter) WithFields(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}
	if with, ok := l.inner.(glog.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		return wrapGlog(with.WithFields(copied))
	}
	return l
}

func (l *glogAdapter) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		return l
	}
	return wrapGlog(l.inner.WithContext(ctx))
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return glog.Trace
	case "debug":
		return glog.Debug
	case "info":
		return glog.Info
	case "warn", "warning":
		return glog.Warn
	case "error":
		return glog.Error
	case "fatal":
		return glog.Fatal
	default:
		return ""
	}
}
