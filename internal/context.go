package internal

import (
	"context"
	"net"
	"net/http"
	"time"
)

type ctxKey string

const (
	ContextUserKey ctxKey = "userID"
	ContextIPKey   ctxKey = "ipAddress"
)

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if userID, ok := ctx.Value(ContextUserKey).(int64); ok {
		return userID
	}
	return 0
}

func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

// IPFromContext returns the client address recorded by the transport layer,
// or "unknown" when none was recorded.
func IPFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if ip, ok := ctx.Value(ContextIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}

func ContextWithIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextIPKey, ip)
}

// ClientIP extracts the remote address from a request, preferring the
// X-Forwarded-For header set by the reverse proxy.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
	return host
}

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}
