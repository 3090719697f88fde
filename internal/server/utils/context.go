package utils

import (
	"context"

	"github.com/gin-gonic/gin"
)

// Keys under which middlewares store values on the gin context.
const (
	SpanContextKey = "span_context"
	RequestIDKey   = "request_id"
)

// GetContextFromGinContext returns the context carrying the request span,
// falling back to the plain request context before the tracing middleware.
func GetContextFromGinContext(c *gin.Context) context.Context {
	if v, exists := c.Get(SpanContextKey); exists {
		if ctx, ok := v.(context.Context); ok {
			return ctx
		}
	}
	return c.Request.Context()
}

func GetRequestIDFromGinContext(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}
