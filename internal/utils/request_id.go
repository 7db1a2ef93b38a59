package utils

import (
	"context"

	"github.com/labstack/echo/v4"
)

type requestIDKey struct{}

func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// WithRequestID stores the request ID in the context so that outbound API calls can forward it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDKey{}).(string)
	return requestID
}

// RequestContext returns the request context of c carrying the request ID of c.
func RequestContext(c echo.Context) context.Context {
	return WithRequestID(c.Request().Context(), GetRequestID(c))
}
