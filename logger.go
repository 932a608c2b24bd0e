package wikiflow

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with wikiflow-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithKey adds a partition key field to the logger.
func (l *Logger) WithKey(key string) *Logger {
	return &Logger{
		Logger: l.Logger.With("key", key),
	}
}

// WithOp adds an operator field to the logger.
func (l *Logger) WithOp(op string) *Logger {
	return &Logger{
		Logger: l.Logger.With("op", op),
	}
}

// WithBackend adds the evaluating backend ("local" or "cluster").
func (l *Logger) WithBackend(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("backend", name),
	}
}

// LogPartition logs the outcome of a partitioning run.
func (l *Logger) LogPartition(ctx context.Context, statements int64, keys int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "partitioning failed",
			"statements", statements,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "partitioning completed",
			"statements", statements,
			"partitions", keys,
		)
	}
}

// LogEvaluate logs the evaluation of a plan root.
func (l *Logger) LogEvaluate(ctx context.Context, op string, elements int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "evaluation failed",
			"op", op,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "evaluation completed",
			"op", op,
			"elements", elements,
			"duration", d,
		)
	}
}

// LogClose logs shutdown.
func (l *Logger) LogClose(ctx context.Context, err error) {
	if err != nil {
		l.ErrorContext(ctx, "close failed", "error", err)
	} else {
		l.DebugContext(ctx, "closed")
	}
}
