// Package context carries the per-request scope of an API call: its id,
// the logger tagged with it and when it arrived.
package context

import (
	"context"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
)

// HeaderXRequestID is the HTTP header a request id travels in.
const HeaderXRequestID = "X-Request-Id"

type scopeKey struct{}

const echoScopeKey = "request_scope"

// Scope is what the API knows about the request being served.
type Scope struct {
	RequestID string
	Logger    *slog.Logger
	Received  time.Time
}

// WithScope returns a copy of ctx carrying s.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// ScopeFrom returns the scope stored in ctx.
func ScopeFrom(ctx context.Context) (Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(Scope)

	return s, ok
}

// SetScope stores s on the echo context and on its request's context.
func SetScope(c echo.Context, s Scope) {
	c.Set(echoScopeKey, s)
	c.SetRequest(c.Request().WithContext(WithScope(c.Request().Context(), s)))
}

// GetRequestID returns the id of the request c serves, or "" outside a scope.
func GetRequestID(c echo.Context) string {
	if s, ok := c.Get(echoScopeKey).(Scope); ok {
		return s.RequestID
	}

	return ""
}

// GetLoggerOrDefault returns the request logger in ctx, or fallback.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if s, ok := ScopeFrom(ctx); ok && s.Logger != nil {
		return s.Logger
	}

	return fallback
}
