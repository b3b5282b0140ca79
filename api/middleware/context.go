package middleware

import "context"

type ctxKey int

const (
	cartSessionKey ctxKey = iota
	requestIDKey
)

// CartSessionFromContext returns the shopper session resolved by CartSession,
// or "" outside that middleware.
func CartSessionFromContext(ctx context.Context) string {
	return stringValue(ctx, cartSessionKey)
}

func WithCartSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, cartSessionKey, sessionID)
}

// RequestIDFromContext returns the ID assigned by RequestID.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}
