package middlewares

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/kma-weather/internal/server/utils"
	"go.uber.org/zap"
)

// quietPaths are probed constantly and only logged at debug level.
var quietPaths = []string{"/health", "/metrics"}

func isQuiet(path string) bool {
	for _, p := range quietPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func LoggingMiddleware(logger *zap.Logger, timeFormat string, utc bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		ts := time.Now()
		if utc {
			ts = ts.UTC()
		}
		if raw != "" {
			path = path + "?" + raw
		}
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.String("time", ts.Format(timeFormat)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}

		if requestID := utils.GetRequestIDFromGinContext(c); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if userAgent := c.Request.UserAgent(); userAgent != "" {
			fields = append(fields, zap.String("user_agent", userAgent))
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			fields = append(fields, zap.String("error", msg))
		}

		switch {
		case status >= 500:
			logger.Error("HTTP request", fields...)
		case status >= 400:
			logger.Warn("HTTP request", fields...)
		case isQuiet(c.Request.URL.Path):
			logger.Debug("HTTP request", fields...)
		default:
			logger.Info("HTTP request", fields...)
		}
	}
}

// RecoveryMiddleware turns a handler panic into a JSON 500.
func RecoveryMiddleware(logger *zap.Logger, stack bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
			zap.Any("recovered", recovered),
		}
		if requestID := utils.GetRequestIDFromGinContext(c); requestID != "" {
			fields = append(fields, zap.String("request_id", requestID))
		}
		if stack {
			fields = append(fields, zap.Stack("stack"))
		}

		logger.Error("HTTP panic recovered", fields...)
		c.AbortWithStatusJSON(500, gin.H{
			"error": "Internal server error",
			"code":  "INTERNAL_ERROR",
		})
	})
}
