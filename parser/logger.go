package parser

import (
	"cmp"
	"context"
	"log/slog"
)

// Logger is the interface oascontract uses for structured logging.
//
// It mirrors the shape of log/slog: attrs are alternating key-value pairs.
//
//	logger.Debug("routed request", "path", "/pets/42", "template", "/pets/{petId}")
//
// The contract builder, validation engine and HTTP adapter all accept a
// Logger through their functional options. The default is NopLogger.
//
// # Usage with log/slog
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	logger := parser.NewSlogAdapter(slog.New(handler))
//
//	c, err := contract.New(doc, contract.WithLogger(logger))
type Logger interface {
	// Debug logs at debug level.
	Debug(msg string, attrs ...any)

	// Info logs at info level.
	Info(msg string, attrs ...any)

	// Warn logs at warn level.
	Warn(msg string, attrs ...any)

	// Error logs at error level.
	Error(msg string, attrs ...any)

	// With returns a Logger that prepends attrs to every record.
	With(attrs ...any) Logger
}

// NopLogger discards all output.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any) {}
func (NopLogger) Warn(string, ...any) {}
func (NopLogger) Error(string, ...any) {}
func (n NopLogger) With(...any) Logger { return n }

var _ Logger = NopLogger{}

// SlogAdapter forwards records to a *slog.Logger.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter adapts logger, or slog.Default() when logger is nil.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: cmp.Or(logger, slog.Default())}
}

func (s *SlogAdapter) log(level slog.Level, msg string, attrs []any) {
	ctx := context.Background()
	if !s.logger.Enabled(ctx, level) {
		return
	}
	s.logger.Log(ctx, level, msg, attrs...)
}

func (s *SlogAdapter) Debug(msg string, attrs ...any) { s.log(slog.LevelDebug, msg, attrs) }
func (s *SlogAdapter) Info(msg string, attrs ...any) { s.log(slog.LevelInfo, msg, attrs) }
func (s *SlogAdapter) Warn(msg string, attrs ...any) { s.log(slog.LevelWarn, msg, attrs) }
func (s *SlogAdapter) Error(msg string, attrs ...any) { s.log(slog.LevelError, msg, attrs) }

func (s *SlogAdapter) With(attrs ...any) Logger {
	return &SlogAdapter{logger: s.logger.With(attrs...)}
}

var _ Logger = (*SlogAdapter)(nil)

// Component returns l tagged with a "component" attribute, or NopLogger
// when l is nil. Packages use it so records can be filtered by origin.
func Component(l Logger, name string) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l.With("component", name)
}
