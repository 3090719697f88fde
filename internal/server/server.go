package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/kma-weather/internal/basetime"
	"github.com/vzahanych/kma-weather/internal/config"
	"github.com/vzahanych/kma-weather/internal/server/handlers"
	"github.com/vzahanych/kma-weather/internal/server/middlewares"
	"github.com/vzahanych/kma-weather/internal/weather"
	"github.com/vzahanych/kma-weather/pkg/telemetry"
	"go.uber.org/zap"
)

type Server struct {
	cfg     config.ServerConfig
	engine  *gin.Engine
	server  *http.Server
	weather *weather.Service
	metrics *handlers.Metrics
	version string
	logger  *zap.Logger
	tele    *telemetry.Telemetry
}

// NewServer builds the gin engine and routes. metrics must be the same
// instance that was handed to the KMA client and weather service.
func NewServer(cfg *config.Config, svc *weather.Service, metrics *handlers.Metrics, logger *zap.Logger, tele *telemetry.Telemetry) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middlewares.RequestIDMiddleware(logger))
	engine.Use(middlewares.LoggingMiddleware(logger, time.RFC3339, true))
	engine.Use(middlewares.RecoveryMiddleware(logger, true))
	engine.Use(middlewares.TelemetryMiddleware(logger, tele))
	engine.Use(middlewares.NewMetricsMiddleware(logger, tele, metrics).Handler())

	s := &Server{
		cfg:     cfg.Server,
		engine:  engine,
		weather: svc,
		metrics: metrics,
		version: cfg.Version,
		logger:  logger,
		tele:    tele,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	wh := handlers.NewWeatherHandler(s.weather, s.logger)
	mcp := handlers.NewMCPHandler(s.weather, s.logger)
	health := handlers.NewHealthHandler(s.logger, s.version, s.weather.GetCacheStats)

	// Business endpoints
	s.engine.GET("/grid", handlers.NewGridHandler(s.logger).GetGrid)

	w := s.engine.Group("/weather")
	w.GET("/nowcast", wh.Product(basetime.UltraShortNowcast))
	w.GET("/ultra-short", wh.Product(basetime.UltraShortForecast))
	w.GET("/short-term", wh.Product(basetime.ShortTermForecast))
	w.GET("/overview", wh.GetOverview)
	w.GET("/cities", wh.ListCities)
	w.GET("/cities/:city", wh.GetCity)

	// Tool endpoints
	m := s.engine.Group("/mcp")
	m.POST("", mcp.Handle)
	m.GET("/tools", mcp.ListTools)
	m.POST("/tools/call", mcp.HandleToolCall)
	m.GET("/health", mcp.Health)

	// Health endpoints (Kubernetes friendly)
	s.engine.GET("/health", health.Health)
	s.engine.GET("/health/live", health.Liveness)
	s.engine.GET("/health/ready", health.Readiness)

	// Monitoring endpoints
	s.engine.GET("/metrics", handlers.NewMetricsHandler(s.metrics, s.logger).ServeMetrics)
}

// Handler exposes the engine for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:      s.engine,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeout) * time.Second,
	}

	s.logger.Info("Starting server", zap.String("addr", s.server.Addr))
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
