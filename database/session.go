package database

import (
	"context"
	"fmt"
)

type sessionIDCtxKey struct{}

// WithSessionID scopes every store key derived from ctx to one client session.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDCtxKey{}, sessionID)
}

// SessionID returns the session carried by ctx, or "".
func SessionID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(sessionIDCtxKey{}).(string)
	return id
}

// SessionKey builds the per-session key for base, e.g. storefront:cart:session:<id>.
// Without a session the bare base key is used.
func SessionKey(ctx context.Context, base string) string {
	id := SessionID(ctx)
	if id == "" {
		return base
	}
	return fmt.Sprintf("%s:session:%s", base, id)
}
