package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/kma-weather/internal/grid"
	"github.com/vzahanych/kma-weather/internal/kma"
	"github.com/vzahanych/kma-weather/internal/server/utils"
	"github.com/vzahanych/kma-weather/internal/weather"
	"go.uber.org/zap"
)

// requestContext carries the span and request ID from gin into the service.
// The request ID middleware normally sets it already.
func requestContext(c *gin.Context) context.Context {
	ctx := utils.GetContextFromGinContext(c)
	if weather.RequestIDFromContext(ctx) == "" {
		if id := utils.GetRequestIDFromGinContext(c); id != "" {
			ctx = weather.WithRequestID(ctx, id)
		}
	}
	return ctx
}

// bindCoordinates parses lat/lon from the query string. On failure it has
// already written a 400 response.
func bindCoordinates(c *gin.Context, reqLogger *zap.Logger) (float64, float64, bool) {
	var req CoordinateRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		reqLogger.Warn("Invalid request parameters", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request parameters",
			Code:    "INVALID_PARAMS",
			Details: err.Error(),
		})
		return 0, 0, false
	}

	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		reqLogger.Warn("Coordinate validation failed", zap.Any("errors", errs))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid coordinates",
			Code:    "INVALID_COORDINATES",
			Details: errs[0].Message,
		})
		return 0, 0, false
	}

	return *req.Lat, *req.Lon, true
}

// writeServiceError maps weather service errors onto HTTP responses.
func writeServiceError(c *gin.Context, reqLogger *zap.Logger, err error) {
	var apiErr *kma.APIError

	switch {
	case errors.Is(err, grid.ErrInvalidCoordinate):
		reqLogger.Warn("Invalid coordinates", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid coordinates",
			Code:    "INVALID_COORDINATES",
			Details: err.Error(),
		})
	case errors.Is(err, weather.ErrUnknownCity):
		reqLogger.Warn("Unknown city", zap.Error(err))
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "Unsupported city",
			Code:    "UNKNOWN_CITY",
			Details: err.Error(),
		})
	case errors.Is(err, kma.ErrNoItems), errors.Is(err, kma.ErrEmptyResponse), errors.As(err, &apiErr):
		reqLogger.Warn("No weather data from KMA", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "No weather data available",
			Code:    "NO_DATA",
			Details: err.Error(),
		})
	default:
		reqLogger.Error("Failed to get weather data", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "Failed to fetch weather data",
			Code:    "UPSTREAM_ERROR",
			Details: err.Error(),
		})
	}
}
