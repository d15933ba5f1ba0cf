package services

import "context"

type contextKey string

const (
	runIDKey   contextKey = "run_id"
	drawingKey contextKey = "drawing"
	commandKey contextKey = "command"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithDrawing annotates context with the drawing being processed.
func WithDrawing(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, drawingKey, path)
}

// DrawingFromContext returns the drawing path if present.
func DrawingFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(drawingKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCommand annotates context with the plugin command name.
func WithCommand(ctx context.Context, command string) context.Context {
	if command == "" {
		return ctx
	}
	return context.WithValue(ctx, commandKey, command)
}

// CommandFromContext returns the plugin command name if present.
func CommandFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(commandKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
