package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/kma-weather/pkg/telemetry"
	"go.uber.org/zap"
)

// HTTPObserver receives one observation per finished request.
type HTTPObserver interface {
	ObserveHTTP(method, route string, status int, duration time.Duration)
	TrackInFlight(delta float64)
}

type MetricsMiddleware struct {
	logger   *zap.Logger
	tele     *telemetry.Telemetry
	observer HTTPObserver
}

func NewMetricsMiddleware(logger *zap.Logger, tele *telemetry.Telemetry, observer HTTPObserver) *MetricsMiddleware {
	return &MetricsMiddleware{
		logger:   logger,
		tele:     tele,
		observer: observer,
	}
}

func (m *MetricsMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.observer.TrackInFlight(1)
		defer m.observer.TrackInFlight(-1)

		c.Next()

		duration := time.Since(start)

		// Unmatched routes share one label to keep cardinality bounded.
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		status := c.Writer.Status()

		m.observer.ObserveHTTP(method, route, status, duration)

		if m.tele.IsEnabled() {
			m.logger.Debug("HTTP metrics recorded",
				zap.String("method", method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("duration", duration))
		}
	}
}
