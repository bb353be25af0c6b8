package core

import "context"

type contextKey struct{}

// ClientInfo describes who requested a conversion. It is stored with the
// conversion history.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// ContextWithClient attaches client details to ctx.
func ContextWithClient(ctx context.Context, c ClientInfo) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ClientFromContext returns the client attached to ctx, or the zero value.
func ClientFromContext(ctx context.Context) ClientInfo {
	c, _ := ctx.Value(contextKey{}).(ClientInfo)
	return c
}
