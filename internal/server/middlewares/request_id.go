package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vzahanych/kma-weather/internal/server/utils"
	"github.com/vzahanych/kma-weather/internal/weather"
	"go.uber.org/zap"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDKey    = utils.RequestIDKey

	maxRequestIDLen = 128
)

// RequestIDMiddleware accepts a caller supplied X-Request-ID or generates a
// UUID, echoes it back and stores it on both the gin and request contexts.
func RequestIDMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if len(requestID) > maxRequestIDLen {
			logger.Debug("Discarding oversized request ID", zap.Int("length", len(requestID)))
			requestID = ""
		}
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header(RequestIDHeader, requestID)
		c.Set(RequestIDKey, requestID)
		c.Request = c.Request.WithContext(weather.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}
