package httpserver

import (
	"context"
)

type ctxKey string

const (
	principalKey ctxKey = "sr.principal"
	requestIDKey ctxKey = "sr.requestID"
)

// Principal identifies the caller of a bearer-protected route.
type Principal struct {
	UserID    int64
	SessionID string
}

// WithPrincipal stores the authenticated caller in context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromCtx fetches the authenticated caller from context.
func PrincipalFromCtx(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// RequestIDFromCtx returns the request id set by the request-id middleware.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
