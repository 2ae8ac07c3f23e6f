// Package ctxutil provides context utilities that can be safely imported anywhere.
// This package has no internal dependencies to avoid import cycles.
package ctxutil

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// ActorKey is the context key for the acting user ID.
type ActorKey struct{}

// CommandKey is the context key for the command correlation ID.
type CommandKey struct{}

// WithActorID returns a context with the acting user ID embedded.
func WithActorID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ActorKey{}, userID)
}

// ActorFromContext returns the acting user ID from context, or 0 if not set.
func ActorFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(ActorKey{}).(int64); ok {
		return v
	}
	return 0
}

// WithCommandID returns a context carrying a command correlation ID. All rows
// written by one command share it.
func WithCommandID(ctx context.Context, commandID string) context.Context {
	return context.WithValue(ctx, CommandKey{}, commandID)
}

// EnsureCommandID returns ctx unchanged when it already carries a command ID,
// otherwise a child context with a fresh ULID.
func EnsureCommandID(ctx context.Context) (context.Context, string) {
	if id := CommandIDFromContext(ctx); id != "" {
		return ctx, id
	}
	id := ulid.Make().String()
	return WithCommandID(ctx, id), id
}

// CommandIDFromContext returns the command ID from context, or empty string.
func CommandIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CommandKey{}).(string); ok {
		return v
	}
	return ""
}
