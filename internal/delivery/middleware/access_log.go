package middleware

import (
	"log/slog"
	"net/http"
	"time"

	deliverycontext "roadnet/internal/delivery/context"
	domainerrors "roadnet/internal/domain/errors"
	"roadnet/internal/errors"

	"github.com/labstack/echo/v4"
)

// SlowRequest is the latency above which a request is logged even when
// access logging is off.
const SlowRequest = 2 * time.Second

// AccessLog logs finished requests. With verbose set every request is
// logged; otherwise only server errors and slow requests are.
func AccessLog(fallback *slog.Logger, verbose bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)

			scope, ok := deliverycontext.ScopeFrom(c.Request().Context())
			if !ok {
				scope = deliverycontext.Scope{Logger: fallback, Received: time.Now()}
			}
			latency := time.Since(scope.Received)

			status := c.Response().Status
			if err != nil && !c.Response().Committed {
				status = errorStatus(err)
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			if !verbose && level < slog.LevelError && latency < SlowRequest {
				return err
			}

			attrs := []slog.Attr{
				slog.String("method", c.Request().Method),
				slog.Int("status", status),
				slog.Duration("latency", latency),
				slog.Int64("bytes_out", c.Response().Size),
				slog.String("remote_ip", c.RealIP()),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			scope.Logger.LogAttrs(c.Request().Context(), level, "HTTP request", attrs...)

			return err
		}
	}
}

// errorStatus is the status the error handler will answer err with.
func errorStatus(err error) int {
	if appErr, ok := errors.AsType[domainerrors.AppError](err); ok {
		return appErr.HTTPCode()
	}
	if he, ok := errors.AsType[*echo.HTTPError](err); ok {
		return he.Code
	}

	return http.StatusInternalServerError
}
