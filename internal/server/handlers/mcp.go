package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vzahanych/kma-weather/internal/basetime"
	"github.com/vzahanych/kma-weather/internal/grid"
	"github.com/vzahanych/kma-weather/internal/weather"
	"go.uber.org/zap"
)

const (
	ToolNowcast         = "get_ultra_short_nowcast"
	ToolUltraShort      = "get_ultra_short_forecast"
	ToolShortTerm       = "get_short_term_forecast"
	ToolCurrentWeather  = "get_current_weather"
	ToolSupportedCities = "get_supported_cities"
)

var errMissingArgument = errors.New("missing required argument")

var coordinateSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"latitude": map[string]interface{}{
			"type":        "number",
			"description": "Latitude in decimal degrees (e.g. 37.5665)",
		},
		"longitude": map[string]interface{}{
			"type":        "number",
			"description": "Longitude in decimal degrees (e.g. 126.9780)",
		},
	},
	"required": []string{"latitude", "longitude"},
}

// MCPHandler exposes the weather service as MCP-style tools.
type MCPHandler struct {
	service WeatherService
	logger  *zap.Logger
	tools   []MCPTool
}

func NewMCPHandler(service WeatherService, logger *zap.Logger) *MCPHandler {
	return &MCPHandler{
		service: service,
		logger:  logger,
		tools: []MCPTool{
			{
				Name:        ToolNowcast,
				Description: "Current observed weather (ultra-short nowcast) for a coordinate in Korea",
				InputSchema: coordinateSchema,
			},
			{
				Name:        ToolUltraShort,
				Description: "Ultra-short forecast for the next six hours for a coordinate in Korea",
				InputSchema: coordinateSchema,
			},
			{
				Name:        ToolShortTerm,
				Description: "Short-term forecast for the next three days for a coordinate in Korea",
				InputSchema: coordinateSchema,
			},
			{
				Name:        ToolCurrentWeather,
				Description: "Current weather for a major Korean city",
				InputSchema: map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"city": map[string]interface{}{
							"type":        "string",
							"description": "City name, e.g. 서울 or Seoul",
						},
					},
					"required": []string{"city"},
				},
			},
			{
				Name:        ToolSupportedCities,
				Description: "List the cities accepted by get_current_weather",
				InputSchema: map[string]interface{}{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			},
		},
	}
}

func (h *MCPHandler) Tools() []MCPTool {
	return h.tools
}

// Handle serves POST /mcp. Unknown methods are answered inside the result,
// never with an HTTP error.
func (h *MCPHandler) Handle(c *gin.Context) {
	var req MCPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid MCP request",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	var result interface{}
	switch req.Method {
	case "tools/list":
		result = map[string]interface{}{"tools": h.tools}
	case "tools/call":
		call, err := toolCallFromParams(req.Params)
		if err != nil {
			result = map[string]string{"error": err.Error()}
			break
		}
		result = h.CallTool(requestContext(c), call.Name, call.Arguments)
	default:
		result = map[string]string{"error": "Unknown method: " + req.Method}
	}

	c.JSON(http.StatusOK, MCPResponse{JSONRPC: "2.0", Result: result, ID: req.ID})
}

func (h *MCPHandler) ListTools(c *gin.Context) {
	c.JSON(http.StatusOK, h.tools)
}

func (h *MCPHandler) HandleToolCall(c *gin.Context) {
	var req ToolCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid tool call",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, h.CallTool(requestContext(c), req.Name, req.Arguments))
}

func (h *MCPHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "MCP Server is running"})
}

// CallTool runs one tool. Failures come back as {"error": msg}.
func (h *MCPHandler) CallTool(ctx context.Context, name string, args map[string]interface{}) map[string]interface{} {
	reqLogger := h.logger.With(zap.String("tool", name))
	if id := weather.RequestIDFromContext(ctx); id != "" {
		reqLogger = reqLogger.With(zap.String("request_id", id))
	}

	switch name {
	case ToolNowcast:
		return h.coordinateTool(ctx, reqLogger, basetime.UltraShortNowcast, args)
	case ToolUltraShort:
		return h.coordinateTool(ctx, reqLogger, basetime.UltraShortForecast, args)
	case ToolShortTerm:
		return h.coordinateTool(ctx, reqLogger, basetime.ShortTermForecast, args)
	case ToolCurrentWeather:
		city, ok := args["city"].(string)
		if !ok || strings.TrimSpace(city) == "" {
			return toolError(fmt.Sprintf("%s: city", errMissingArgument))
		}
		r, err := h.service.CityWeather(ctx, city)
		if err != nil {
			reqLogger.Warn("Tool call failed", zap.Error(err))
			return toolError(describeError(err))
		}
		return map[string]interface{}{"city": r.City, "content": r.Text}
	case ToolSupportedCities:
		cities := h.service.SupportedCities()
		return map[string]interface{}{
			"cities":  cities,
			"content": "Supported cities: " + strings.Join(cities, ", "),
		}
	default:
		return toolError("Unknown tool: " + name)
	}
}

func (h *MCPHandler) coordinateTool(ctx context.Context, reqLogger *zap.Logger, kind basetime.Kind, args map[string]interface{}) map[string]interface{} {
	lat, err := numberArg(args, "latitude")
	if err != nil {
		return toolError(err.Error())
	}
	lon, err := numberArg(args, "longitude")
	if err != nil {
		return toolError(err.Error())
	}

	r, err := h.service.Report(ctx, kind, lat, lon)
	if err != nil {
		reqLogger.Warn("Tool call failed", zap.Error(err))
		return toolError(describeError(err))
	}
	return map[string]interface{}{
		"nx":      r.Grid.NX,
		"ny":      r.Grid.NY,
		"content": r.Text,
	}
}

func toolError(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}

func describeError(err error) string {
	switch {
	case errors.Is(err, grid.ErrInvalidCoordinate):
		return "Invalid coordinates: " + err.Error()
	case errors.Is(err, weather.ErrUnknownCity):
		return err.Error()
	default:
		return "Failed to fetch weather data: " + err.Error()
	}
}

func toolCallFromParams(params map[string]interface{}) (ToolCallRequest, error) {
	name, _ := params["name"].(string)
	if name == "" {
		return ToolCallRequest{}, fmt.Errorf("%w: name", errMissingArgument)
	}
	args, _ := params["arguments"].(map[string]interface{})
	return ToolCallRequest{Name: name, Arguments: args}, nil
}

// numberArg accepts JSON numbers and numeric strings.
func numberArg(args map[string]interface{}, key string) (float64, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: %s", errMissingArgument, key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number, got %q", key, n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}
