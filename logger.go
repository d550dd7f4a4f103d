package vecflow

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with vecflow-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithSessionID adds a session_id field to the logger.
func (l *Logger) WithSessionID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("session_id", id),
	}
}

// WithPlan adds a plan (root node name) field to the logger.
func (l *Logger) WithPlan(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("plan", name),
	}
}

// LogExecution logs the start of a plan execution.
func (l *Logger) LogExecution(ctx context.Context, plan string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "execution failed",
			"plan", plan,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "execution started",
			"plan", plan,
		)
	}
}

// LogAnalyze logs a completed analyze run.
func (l *Logger) LogAnalyze(ctx context.Context, plan string, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "analyze failed",
			"plan", plan,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "analyze completed",
			"plan", plan,
			"duration", duration,
		)
	}
}
