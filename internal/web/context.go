package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/menuconv/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so they end
// up in the conversion history.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, core.ClientInfo{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
}
