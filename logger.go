package codebook

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with pipeline-specific helpers.
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

// LogLoad logs the corpus-loading stage.
func (l *Logger) LogLoad(ctx context.Context, path string, rows, dim, skipped int, took time.Duration) {
	l.InfoContext(ctx, "corpus loaded",
		"path", path,
		"vectors", rows,
		"dimension", dim,
		"skipped_lines", skipped,
		"took", took,
	)
}

// LogReduce logs the dimensionality-reduction stage.
func (l *Logger) LogReduce(ctx context.Context, from, to int, explained float64, took time.Duration) {
	l.InfoContext(ctx, "dimensionality reduced",
		"from", from,
		"to", to,
		"explained_variance", explained,
		"took", took,
	)
}

// LogClusterCheck logs one convergence check during clustering.
func (l *Logger) LogClusterCheck(ctx context.Context, epoch int, inertia float64) {
	l.DebugContext(ctx, "convergence check",
		"epoch", epoch,
		"inertia", inertia,
	)
}

// LogCluster logs the completed clustering stage.
func (l *Logger) LogCluster(ctx context.Context, k, epochs int, converged bool, inertia float64, took time.Duration) {
	l.InfoContext(ctx, "clustering completed",
		"clusters", k,
		"epochs", epochs,
		"converged", converged,
		"inertia", inertia,
		"took", took,
	)
}

// LogSave logs the codebook write.
func (l *Logger) LogSave(ctx context.Context, path string, entries, dim int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "codebook save failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "codebook saved",
			"path", path,
			"entries", entries,
			"dimension", dim,
		)
	}
}

// LogPublish logs a blobstore publish of the codebook artifact.
func (l *Logger) LogPublish(ctx context.Context, name string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "codebook publish failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "codebook published",
			"name", name,
			"bytes", size,
		)
	}
}
