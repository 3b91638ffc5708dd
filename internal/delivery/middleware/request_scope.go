package middleware

import (
	"log/slog"
	"time"

	deliverycontext "roadnet/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestScope opens the scope of every request: a request id, echoed in the
// response header, and a logger tagged with it and the matched route.
// Client ids are kept only when they parse as UUIDs.
func RequestScope(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := clientRequestID(c)
			c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

			deliverycontext.SetScope(c, deliverycontext.Scope{
				RequestID: requestID,
				Logger: logger.With(
					slog.String("request_id", requestID),
					slog.String("route", c.Path()),
				),
				Received: time.Now(),
			})

			return next(c)
		}
	}
}

func clientRequestID(c echo.Context) string {
	if id, err := uuid.Parse(c.Request().Header.Get(deliverycontext.HeaderXRequestID)); err == nil {
		return id.String()
	}
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}

	return uuid.NewString()
}
