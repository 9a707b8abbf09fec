package http

import (
	"context"

	"github.com/example/support-hours/internal/application"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	configIDContextKey  contextKey = "config_id"
	messageIDContextKey contextKey = "message_id"
	userIDContextKey    contextKey = "user_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithConfigID injects the configuration identifier resolved from the request path.
func ContextWithConfigID(ctx context.Context, configID string) context.Context {
	return context.WithValue(ctx, configIDContextKey, configID)
}

// ConfigIDFromContext extracts a configuration identifier previously associated with the context.
func ConfigIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(configIDContextKey).(string)
	return id, ok
}

// ContextWithMessageID injects the message identifier resolved from the request path.
func ContextWithMessageID(ctx context.Context, messageID string) context.Context {
	return context.WithValue(ctx, messageIDContextKey, messageID)
}

// MessageIDFromContext extracts a message identifier previously associated with the context.
func MessageIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(messageIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}
