// Package log provides the structured logging interface used by scisvm.
//
// The Logger interface is slog-compatible so the backend can be swapped; the
// default backend is zerolog (see zerolog.go). Attribute keys for ML
// operations live in attributes.go.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ComponentKey, "training",
//	    log.EstimatorIDKey, model.ID,
//	)
//	logger.Info("Training completed",
//	    log.KernelKey, "linear",
//	    log.SamplesKey, 80,
//	    log.DurationMsKey, 12,
//	)
package log

import (
	"context"
)

// Logger is a structured logger with key/value fields.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...any)

	// Info logs an info-level message.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message.
	Warn(msg string, fields ...any)

	// Error logs an error-level message. When the first field is an error it
	// is recorded under the "error" key together with its stack trace.
	//
	// Example:
	//   logger.Error("Training failed", err, log.KernelKey, "rbf")
	Error(msg string, fields ...any)

	// With returns a Logger that adds fields to every record.
	With(fields ...any) Logger

	// Enabled reports whether records at level would be emitted.
	Enabled(ctx context.Context, level Level) bool
}

// Level is a logging level with slog-compatible values.
type Level int

const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a CLI level name ("debug", "info", "warn", "error").
func ParseLevel(name string) (Level, bool) {
	switch name {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}
