package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/kma-weather/internal/basetime"
	"github.com/vzahanych/kma-weather/internal/server/utils"
	"github.com/vzahanych/kma-weather/internal/weather"
	"go.uber.org/zap"
)

// WeatherService is the subset of *weather.Service used by the handlers.
type WeatherService interface {
	Report(ctx context.Context, kind basetime.Kind, lat, lon float64) (*weather.Report, error)
	Overview(ctx context.Context, lat, lon float64) (*weather.Overview, error)
	CityWeather(ctx context.Context, city string) (*weather.Report, error)
	Cities() []weather.City
	SupportedCities() []string
}

type WeatherHandler struct {
	service WeatherService
	logger  *zap.Logger
}

func NewWeatherHandler(service WeatherService, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		service: service,
		logger:  logger,
	}
}

// Product returns a handler serving one KMA product for ?lat=&lon=.
func (h *WeatherHandler) Product(kind basetime.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := requestContext(c)
		reqLogger := h.logger.With(
			zap.String("request_id", utils.GetRequestIDFromGinContext(c)),
			zap.String("kind", kind.String()),
		)

		lat, lon, ok := bindCoordinates(c, reqLogger)
		if !ok {
			return
		}

		reqLogger.Info("Processing weather request",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon))

		r, err := h.service.Report(ctx, kind, lat, lon)
		if err != nil {
			writeServiceError(c, reqLogger, err)
			return
		}

		c.JSON(http.StatusOK, r)
	}
}

func (h *WeatherHandler) GetOverview(c *gin.Context) {
	ctx := requestContext(c)
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	lat, lon, ok := bindCoordinates(c, reqLogger)
	if !ok {
		return
	}

	ov, err := h.service.Overview(ctx, lat, lon)
	if err != nil {
		writeServiceError(c, reqLogger, err)
		return
	}

	reqLogger.Info("Overview request completed",
		zap.Int("reports_count", len(ov.Reports)),
		zap.Int("errors_count", len(ov.Errors)))

	c.JSON(http.StatusOK, ov)
}

func (h *WeatherHandler) ListCities(c *gin.Context) {
	cities := h.service.Cities()
	resp := CitiesResponse{Cities: make([]CityInfo, 0, len(cities))}
	for _, city := range cities {
		resp.Cities = append(resp.Cities, CityInfo{
			Name:    city.Name,
			Aliases: city.Aliases,
			NX:      city.Grid.NX,
			NY:      city.Grid.NY,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WeatherHandler) GetCity(c *gin.Context) {
	ctx := requestContext(c)
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	var req CityRequest
	if err := c.ShouldBindUri(&req); err != nil {
		reqLogger.Warn("Invalid city parameter", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid city",
			Code:    "INVALID_CITY",
			Details: errs[0].Message,
		})
		return
	}
	reqLogger = reqLogger.With(zap.String("city", req.City))

	r, err := h.service.CityWeather(ctx, req.City)
	if err != nil {
		writeServiceError(c, reqLogger, err)
		return
	}

	c.JSON(http.StatusOK, r)
}
