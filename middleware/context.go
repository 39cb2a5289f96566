package middleware

import (
	"context"
)

// Context key type to avoid collisions
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"

	// ActorIDKey is the context key for the acting user's id
	ActorIDKey contextKey = "actor_id"
)

// GetRequestIDFromContext retrieves the request ID from context
func GetRequestIDFromContext(ctx context.Context) string {
	if val := ctx.Value(RequestIDKey); val != nil {
		if requestID, ok := val.(string); ok {
			return requestID
		}
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetActorIDFromContext retrieves the acting user's id from context.
// Returns "system" when no actor was attached, so change-log rows always
// carry a non-empty userId.
func GetActorIDFromContext(ctx context.Context) string {
	if val := ctx.Value(ActorIDKey); val != nil {
		if actorID, ok := val.(string); ok && actorID != "" {
			return actorID
		}
	}
	return "system"
}

// WithActorID adds an actor id to the context
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorIDKey, actorID)
}
