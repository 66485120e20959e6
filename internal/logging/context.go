// internal/logging/context.go
package logging

import (
	"context"

	"go.uber.org/zap"
)

// ContextFields extracts run correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)

	if runID := RunIDFromContext(ctx); runID != "" {
		fields = append(fields, zap.String("run.id", runID))
	}
	if input := InputFromContext(ctx); input != "" {
		fields = append(fields, zap.String("input", input))
	}
	if reflection := ReflectionFromContext(ctx); reflection != "" {
		fields = append(fields, zap.String("reflection", reflection))
	}

	return fields
}

// Context key types
type runCtxKey struct{}
type inputCtxKey struct{}
type reflectionCtxKey struct{}
type loggerCtxKey struct{}

// WithRunID tags every log line of one conversion run.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runCtxKey{}, runID)
}

// RunIDFromContext extracts the run ID from context.
func RunIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(runCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithInput adds the input file path to context.
func WithInput(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, inputCtxKey{}, path)
}

// InputFromContext extracts the input file path from context.
func InputFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(inputCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithReflection adds the reflection type being processed to context.
func WithReflection(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, reflectionCtxKey{}, name)
}

// ReflectionFromContext extracts the reflection type from context.
func ReflectionFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(reflectionCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return NewNop()
}
