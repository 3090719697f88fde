package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/kma-weather/internal/config"
	"github.com/vzahanych/kma-weather/internal/kma"
	"github.com/vzahanych/kma-weather/internal/server/handlers"
	"github.com/vzahanych/kma-weather/internal/weather"
	"github.com/vzahanych/kma-weather/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

const upstreamNowcast = `{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL_SERVICE"},
"body":{"dataType":"JSON","items":{"item":[
{"baseDate":"20250315","baseTime":"0800","category":"T1H","nx":60,"ny":127,"obsrValue":"12.3"},
{"baseDate":"20250315","baseTime":"0800","category":"REH","nx":60,"ny":127,"obsrValue":"40"},
{"baseDate":"20250315","baseTime":"0800","category":"PTY","nx":60,"ny":127,"obsrValue":"0"}
]},"pageNo":1,"numOfRows":10,"totalCount":3}}}`

const upstreamForecast = `{"response":{"header":{"resultCode":"00","resultMsg":"NORMAL_SERVICE"},
"body":{"dataType":"JSON","items":{"item":[
{"baseDate":"20250315","baseTime":"0830","category":"T1H","fcstDate":"20250315","fcstTime":"0900","fcstValue":"13","nx":60,"ny":127},
{"baseDate":"20250315","baseTime":"0830","category":"SKY","fcstDate":"20250315","fcstTime":"0900","fcstValue":"3","nx":60,"ny":127}
]},"pageNo":1,"numOfRows":60,"totalCount":2}}}`

const upstreamNoData = `{"response":{"header":{"resultCode":"03","resultMsg":"NO_DATA"}}}`

func newTestServer(t *testing.T) (*Server, *atomic.Int32) {
	t.Helper()

	calls := &atomic.Int32{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, string(kma.OpUltraShortNowcast)):
			_, _ = w.Write([]byte(upstreamNowcast))
		case strings.HasSuffix(r.URL.Path, string(kma.OpUltraShortForecast)):
			_, _ = w.Write([]byte(upstreamForecast))
		default:
			_, _ = w.Write([]byte(upstreamNoData))
		}
	}))
	t.Cleanup(upstream.Close)

	cfg := config.NewDefaultConfig()
	cfg.Version = "test"
	cfg.KMA.BaseURL = upstream.URL
	cfg.KMA.ServiceKey = "key"
	cfg.KMA.Retries = 0

	logger := zaptest.NewLogger(t)
	tele := telemetry.NewDisabled()
	metrics := handlers.NewMetrics(cfg.Version)

	client := kma.NewClientWithConfig(cfg.KMA, logger, tele)
	client.SetMetricsRecorder(metrics)

	svc := weather.NewService(cfg.KMA, weather.NewCities(cfg.Cities), client, logger, tele)
	svc.SetMetricsRecorder(metrics)
	svc.SetClock(func() time.Time { return time.Date(2025, 3, 15, 0, 50, 0, 0, time.UTC) })

	return NewServer(cfg, svc, metrics, logger, tele), calls
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestServer_Grid(t *testing.T) {
	s, calls := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/grid?lat=37.5665&lon=126.9780", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, float64(60), body["nx"])
	assert.Equal(t, float64(127), body["ny"])
	assert.Equal(t, true, body["in_korea"])
	assert.Zero(t, calls.Load())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestServer_GridValidation(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		target string
		code   string
	}{
		{"missing lon", "/grid?lat=37.5", "INVALID_PARAMS"},
		{"not a number", "/grid?lat=abc&lon=127", "INVALID_PARAMS"},
		{"latitude out of range", "/grid?lat=91&lon=127", "INVALID_COORDINATES"},
		{"longitude out of range", "/grid?lat=37&lon=-181", "INVALID_COORDINATES"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, s, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, tt.code, decode(t, rr)["code"])
		})
	}

	// Zero is a valid coordinate, just far from Korea.
	rr := do(t, s, http.MethodGet, "/grid?lat=0&lon=0", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decode(t, rr)["in_korea"])
}

func TestServer_Nowcast(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/weather/nowcast?lat=37.5665&lon=126.9780", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Equal(t, "ultra-short-nowcast", body["kind"])
	assert.Equal(t, map[string]interface{}{"base_date": "20250315", "base_time": "0800"}, body["base_time"])
	assert.Contains(t, body["text"], "temperature: 12.3℃")
}

func TestServer_UltraShort(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/weather/ultra-short?lat=37.5665&lon=126.9780", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode(t, rr)["text"], "[20250315 0900]")
}

func TestServer_ShortTermNoData(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/weather/short-term?lat=37.5665&lon=126.9780", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "NO_DATA", body["code"])
	assert.Contains(t, body["details"], "NO_DATA")
}

func TestServer_Overview(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/weather/overview?lat=37.5665&lon=126.9780", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode(t, rr)
	assert.Len(t, body["reports"], 2)
	assert.Contains(t, body["errors"], "short-term-forecast")
}

func TestServer_Cities(t *testing.T) {
	s, calls := newTestServer(t)

	rr := do(t, s, http.MethodGet, "/weather/cities", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode(t, rr)["cities"], 9)

	rr = do(t, s, http.MethodGet, "/weather/cities/seoul", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "서울", body["city"])
	assert.Contains(t, body["text"], "📍 서울 current weather (base: 03/15 09:00)")

	// Cached for the same grid and base time.
	rr = do(t, s, http.MethodGet, "/weather/cities/%EC%84%9C%EC%9A%B8", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int32(1), calls.Load())

	rr = do(t, s, http.MethodGet, "/weather/cities/tokyo", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "UNKNOWN_CITY", decode(t, rr)["code"])
}

func TestServer_MCP(t *testing.T) {
	s, _ := newTestServer(t)

	rr := do(t, s, http.MethodPost, "/mcp", `{"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "2.0", body["jsonrpc"])
	tools := body["result"].(map[string]interface{})["tools"].([]interface{})
	assert.Len(t, tools, 5)

	rr = do(t, s, http.MethodPost, "/mcp", `{"method":"tools/call","params":{"name":"get_ultra_short_nowcast","arguments":{"latitude":37.5665,"longitude":126.978}}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	result := decode(t, rr)["result"].(map[string]interface{})
	assert.Contains(t, result["content"], "Ultra-short nowcast")

	rr = do(t, s, http.MethodPost, "/mcp", `{"method":"chat"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]interface{}{"error": "Unknown method: chat"}, decode(t, rr)["result"])

	rr = do(t, s, http.MethodPost, "/mcp/tools/call", `{"name":"calculate","arguments":{}}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Unknown tool: calculate", decode(t, rr)["error"])

	rr = do(t, s, http.MethodGet, "/mcp/tools", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, s, http.MethodGet, "/mcp/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MCP Server is running", decode(t, rr)["message"])
}

func TestServer_HealthAndMetrics(t *testing.T) {
	s, _ := newTestServer(t)

	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		rr := do(t, s, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, rr.Code, path)
	}

	rr := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, "test", decode(t, rr)["version"])

	do(t, s, http.MethodGet, "/weather/cities/seoul", "")
	do(t, s, http.MethodGet, "/weather/cities/seoul", "")

	rr = do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	text := rr.Body.String()
	assert.Contains(t, text, `http_requests_total{method="GET",route="/health",status="200"}`)
	assert.Contains(t, text, `cache_results_total{cache="kma_items",outcome="hit"} 1`)
	assert.Contains(t, text, `kma_upstream_calls_total{operation="getUltraSrtNcst",result="success"} 1`)
	assert.Contains(t, text, `app_build_info{version="test"} 1`)
}
