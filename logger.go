package leapjoin

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with leapjoin-specific context.
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

// WithK adds a k (input count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithShard adds a shard index field to the logger.
func (l *Logger) WithShard(shard int) *Logger {
	return &Logger{
		Logger: l.Logger.With("shard", shard),
	}
}

// WithRunset adds a runset name field to the logger.
func (l *Logger) WithRunset(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("runset", name),
	}
}

// LogInit logs a join construction.
func (l *Logger) LogInit(k int, exhausted bool, err error) {
	if err != nil {
		l.Error("join init failed",
			"k", k,
			"error", err,
		)
	} else {
		l.Debug("join initialized",
			"k", k,
			"exhausted", exhausted,
		)
	}
}

// LogExhaust logs the exhaustion of a join.
func (l *Logger) LogExhaust(k int, aligned int64, duration time.Duration) {
	l.Debug("join exhausted",
		"k", k,
		"aligned", aligned,
		"duration", duration,
	)
}

// LogShardJoin logs the completion of one shard of a parallel join.
func (l *Logger) LogShardJoin(ctx context.Context, shard, produced int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "shard join failed",
			"shard", shard,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "shard join completed",
			"shard", shard,
			"produced", produced,
		)
	}
}
