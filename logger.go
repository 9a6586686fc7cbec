package geodist

import (
	"context"
	"log/slog"
	"math"
	"os"
)

// Logger wraps slog.Logger with geodist-specific context.
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
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithFormula adds a formula field to the logger.
func (l *Logger) WithFormula(f Formula) *Logger {
	return &Logger{
		Logger: l.Logger.With("formula", f.String()),
	}
}

// WithCount adds a count field to the logger.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{
		Logger: l.Logger.With("count", count),
	}
}

// LogCompute logs a single distance computation.
func (l *Logger) LogCompute(ctx context.Context, f Formula, args int, result float64) {
	if math.IsNaN(result) {
		l.WarnContext(ctx, "computation produced NaN",
			"formula", f.String(),
			"args", args,
		)
	} else {
		l.DebugContext(ctx, "computation completed",
			"formula", f.String(),
			"args", args,
			"result", result,
		)
	}
}

// LogBatch logs a batch computation.
func (l *Logger) LogBatch(ctx context.Context, f Formula, count, nan int) {
	if nan > 0 {
		l.WarnContext(ctx, "batch completed with NaN results",
			"formula", f.String(),
			"total", count,
			"nan", nan,
			"finite", count-nan,
		)
	} else {
		l.InfoContext(ctx, "batch completed",
			"formula", f.String(),
			"count", count,
		)
	}
}
