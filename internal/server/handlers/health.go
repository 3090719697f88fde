package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsFunc reports cache state for the health endpoint.
type StatsFunc func() map[string]interface{}

type HealthHandler struct {
	logger    *zap.Logger
	version   string
	stats     StatsFunc
	startTime time.Time
}

func NewHealthHandler(logger *zap.Logger, version string, stats StatsFunc) *HealthHandler {
	return &HealthHandler{
		logger:    logger,
		version:   version,
		stats:     stats,
		startTime: time.Now(),
	}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ready",
		Uptime: time.Since(h.startTime).String(),
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Uptime:    time.Since(h.startTime).String(),
		Version:   h.version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.stats != nil {
		resp.Cache = h.stats()
	}
	c.JSON(http.StatusOK, resp)
}
