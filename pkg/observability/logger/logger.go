package logger

import (
	"context"
)

// Logger is the structured logging contract used across the data-access
// layer. All log methods accept a message followed by key-value pairs.
type Logger interface {
	// Debug logs a debug-level message with optional key-value pairs
	Debug(msg string, args ...any)

	// Info logs an info-level message with optional key-value pairs
	Info(msg string, args ...any)

	// Warn logs a warning-level message with optional key-value pairs
	Warn(msg string, args ...any)

	// Error logs an error-level message with optional key-value pairs
	Error(msg string, args ...any)

	// With creates a child logger with additional key-value pairs that will
	// be included in all subsequent log entries
	With(args ...any) Logger

	// WithContext creates a child logger that carries the request ID stored
	// in ctx, if any
	WithContext(ctx context.Context) Logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any)                 {}
func (nopLogger) Info(string, ...any)                  {}
func (nopLogger) Warn(string, ...any)                  {}
func (nopLogger) Error(string, ...any)                 {}
func (n nopLogger) With(...any) Logger                 { return n }
func (n nopLogger) WithContext(context.Context) Logger { return n }

// Nop returns a logger that discards everything. It stands in where a
// caller passes no logger but the component still logs unconditionally.
func Nop() Logger {
	return nopLogger{}
}

type requestIDKey struct{}

// ContextWithRequestID returns a context carrying a request ID that
// WithContext will attach to every log entry.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request ID from ctx, or "" when absent.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}
