package handlers

// CoordinateRequest is the lat/lon query shared by the grid and weather
// endpoints. Pointers keep 0 distinguishable from a missing parameter.
type CoordinateRequest struct {
	Lat *float64 `form:"lat" json:"lat" validate:"required,latitude" binding:"required"`
	Lon *float64 `form:"lon" json:"lon" validate:"required,longitude" binding:"required"`
}

// CityRequest is the :city path parameter.
type CityRequest struct {
	City string `uri:"city" json:"city" validate:"city" binding:"required"`
}

// GridResponse is the KMA grid cell for a coordinate.
type GridResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	NX        int     `json:"nx"`
	NY        int     `json:"ny"`
	InKorea   bool    `json:"in_korea"`
}

// CitiesResponse lists the cities accepted by the city lookup.
type CitiesResponse struct {
	Cities []CityInfo `json:"cities"`
}

type CityInfo struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	NX      int      `json:"nx"`
	NY      int      `json:"ny"`
}

// ErrorResponse represents an error response with validation
type ErrorResponse struct {
	Error   string `json:"error" validate:"required,min=1,max=500"`
	Code    string `json:"code,omitempty" validate:"omitempty,min=1,max=50"`
	Details string `json:"details,omitempty" validate:"omitempty,max=1000"`
}

// HealthResponse represents health check response with validation
type HealthResponse struct {
	Status    string                 `json:"status" validate:"required,oneof=ok alive ready degraded unavailable"`
	Uptime    string                 `json:"uptime" validate:"required"`
	Version   string                 `json:"version,omitempty"`
	Timestamp string                 `json:"timestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Cache     map[string]interface{} `json:"cache,omitempty"`
}

// MCPRequest is the envelope accepted on POST /mcp.
type MCPRequest struct {
	Method string                 `json:"method" binding:"required"`
	Params map[string]interface{} `json:"params"`
	ID     interface{}            `json:"id,omitempty"`
}

// MCPResponse wraps every POST /mcp answer, including unknown methods.
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result"`
	ID      interface{} `json:"id"`
}

// MCPTool describes one callable tool and its JSON schema.
type MCPTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolCallRequest is the body of POST /mcp/tools/call and the params of a
// tools/call method.
type ToolCallRequest struct {
	Name      string                 `json:"name" binding:"required"`
	Arguments map[string]interface{} `json:"arguments"`
}
