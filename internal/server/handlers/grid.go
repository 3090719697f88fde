package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/kma-weather/internal/grid"
	"github.com/vzahanych/kma-weather/internal/server/utils"
	"go.uber.org/zap"
)

type GridHandler struct {
	logger *zap.Logger
}

func NewGridHandler(logger *zap.Logger) *GridHandler {
	return &GridHandler{logger: logger}
}

// GetGrid converts a coordinate to its KMA grid cell without calling KMA.
func (h *GridHandler) GetGrid(c *gin.Context) {
	reqLogger := h.logger.With(zap.String("request_id", utils.GetRequestIDFromGinContext(c)))

	lat, lon, ok := bindCoordinates(c, reqLogger)
	if !ok {
		return
	}

	coord, err := grid.NewCoordinate(lat, lon)
	if err != nil {
		writeServiceError(c, reqLogger, err)
		return
	}
	p := coord.Grid()

	c.JSON(http.StatusOK, GridResponse{
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
		NX:        p.NX,
		NY:        p.NY,
		InKorea:   coord.IsInKorea(),
	})
}
