package weather

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/kma-weather/internal/basetime"
	"github.com/vzahanych/kma-weather/internal/config"
	"github.com/vzahanych/kma-weather/internal/grid"
	"github.com/vzahanych/kma-weather/internal/kma"
	"github.com/vzahanych/kma-weather/pkg/telemetry"
	"go.uber.org/zap/zaptest"
)

type fetchCall struct {
	op kma.Operation
	q  kma.Query
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls []fetchCall
	fail  map[kma.Operation]error
	items map[kma.Operation][]kma.Item
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		fail: make(map[kma.Operation]error),
		items: map[kma.Operation][]kma.Item{
			kma.OpUltraShortNowcast: {
				{Category: "T1H", ObsrValue: "12.3"},
				{Category: "RN1", ObsrValue: "0"},
				{Category: "REH", ObsrValue: "55"},
				{Category: "WSD", ObsrValue: "2.1"},
				{Category: "PTY", ObsrValue: "0"},
			},
			kma.OpUltraShortForecast: {
				{Category: "T1H", FcstDate: "20250315", FcstTime: "1000", FcstValue: "13"},
				{Category: "SKY", FcstDate: "20250315", FcstTime: "1000", FcstValue: "1"},
			},
			kma.OpShortTermForecast: {
				{Category: "TMP", FcstDate: "20250315", FcstTime: "1200", FcstValue: "15"},
				{Category: "POP", FcstDate: "20250315", FcstTime: "1200", FcstValue: "20"},
			},
		},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, op kma.Operation, q kma.Query) (*kma.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fetchCall{op: op, q: q})
	if err := f.fail[op]; err != nil {
		return nil, err
	}
	resp := &kma.Response{}
	resp.Response.Header.ResultCode = kma.ResultOK
	body := &kma.Body{}
	body.Items.Item = f.items[op]
	resp.Response.Body = body
	return resp, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type cacheRecorder struct {
	mu           sync.Mutex
	hits, misses int
}

func (r *cacheRecorder) RecordCacheHit(context.Context, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits++
}

func (r *cacheRecorder) RecordCacheMiss(context.Context, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.misses++
}

// 2025-03-15 09:35 KST
var fixedNow = time.Date(2025, 3, 15, 0, 35, 0, 0, time.UTC)

func newTestService(t *testing.T, f Fetcher) *Service {
	t.Helper()
	cfg := config.NewDefaultConfig()
	s := NewService(cfg.KMA, NewCities(nil), f, zaptest.NewLogger(t), telemetry.NewDisabled())
	s.SetClock(func() time.Time { return fixedNow })
	return s
}

func TestService_Nowcast(t *testing.T) {
	f := newFakeFetcher()
	s := newTestService(t, f)

	r, err := s.Nowcast(context.Background(), 37.5665, 126.9780)
	require.NoError(t, err)

	assert.Equal(t, "ultra-short-nowcast", r.Kind)
	assert.Equal(t, grid.Point{NX: 60, NY: 127}, r.Grid)
	assert.Equal(t, basetime.BaseTime{Date: "20250315", Time: "0800"}, r.BaseTime)
	assert.Len(t, r.Observations, 5)
	assert.Contains(t, r.Text, "=== Ultra-short nowcast (lat: 37.5665, lon: 126.9780) ===")

	require.Len(t, f.calls, 1)
	assert.Equal(t, kma.OpUltraShortNowcast, f.calls[0].op)
	assert.Equal(t, 10, f.calls[0].q.NumOfRows)
	assert.Equal(t, 1, f.calls[0].q.PageNo)
	assert.Equal(t, grid.Point{NX: 60, NY: 127}, f.calls[0].q.Grid)
}

func TestService_Forecasts(t *testing.T) {
	f := newFakeFetcher()
	s := newTestService(t, f)

	us, err := s.UltraShortForecast(context.Background(), 37.5665, 126.9780)
	require.NoError(t, err)
	assert.Equal(t, basetime.BaseTime{Date: "20250315", Time: "0830"}, us.BaseTime)
	require.Len(t, us.Forecast, 1)
	assert.Empty(t, us.Observations)

	st, err := s.ShortTermForecast(context.Background(), 37.5665, 126.9780)
	require.NoError(t, err)
	assert.Equal(t, basetime.BaseTime{Date: "20250315", Time: "0800"}, st.BaseTime)
	require.Len(t, st.Forecast, 1)

	require.Len(t, f.calls, 2)
	assert.Equal(t, 60, f.calls[0].q.NumOfRows)
	assert.Equal(t, 300, f.calls[1].q.NumOfRows)
}

func TestService_InvalidCoordinate(t *testing.T) {
	f := newFakeFetcher()
	s := newTestService(t, f)

	_, err := s.Nowcast(context.Background(), 91, 127)
	assert.ErrorIs(t, err, grid.ErrInvalidCoordinate)

	_, err = s.Overview(context.Background(), 37, 181)
	assert.ErrorIs(t, err, grid.ErrInvalidCoordinate)

	assert.Zero(t, f.callCount())
}

func TestService_CachesByGridAndBaseTime(t *testing.T) {
	f := newFakeFetcher()
	s := newTestService(t, f)
	rec := &cacheRecorder{}
	s.SetMetricsRecorder(rec)

	ctx := context.Background()
	_, err := s.Nowcast(ctx, 37.5665, 126.9780)
	require.NoError(t, err)

	// Same grid cell, different coordinates.
	r, err := s.Nowcast(ctx, 37.5670, 126.9785)
	require.NoError(t, err)
	assert.Contains(t, r.Text, "lat: 37.5670")

	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)

	// A new issuance is a new key.
	s.SetClock(func() time.Time { return fixedNow.Add(time.Hour) })
	_, err = s.Nowcast(ctx, 37.5665, 126.9780)
	require.NoError(t, err)
	assert.Equal(t, 2, f.callCount())

	s.ClearCache()
	assert.Equal(t, 0, s.GetCacheStats()["cache_size"])
}

func TestService_DoesNotCacheFailures(t *testing.T) {
	f := newFakeFetcher()
	f.fail[kma.OpUltraShortNowcast] = errors.New("boom")
	s := newTestService(t, f)

	_, err := s.Nowcast(context.Background(), 37.5665, 126.9780)
	require.Error(t, err)

	delete(f.fail, kma.OpUltraShortNowcast)
	_, err = s.Nowcast(context.Background(), 37.5665, 126.9780)
	require.NoError(t, err)
	assert.Equal(t, 2, f.callCount())
}

func TestService_NoItems(t *testing.T) {
	f := newFakeFetcher()
	f.items[kma.OpShortTermForecast] = nil
	s := newTestService(t, f)

	_, err := s.ShortTermForecast(context.Background(), 37.5665, 126.9780)
	assert.ErrorIs(t, err, kma.ErrNoItems)
}

func TestService_CacheDisabled(t *testing.T) {
	f := newFakeFetcher()
	cfg := config.NewDefaultConfig().KMA
	cfg.CacheTTL = 0
	s := NewService(cfg, NewCities(nil), f, zaptest.NewLogger(t), telemetry.NewDisabled())
	s.SetClock(func() time.Time { return fixedNow })

	for i := 0; i < 2; i++ {
		_, err := s.Nowcast(context.Background(), 37.5665, 126.9780)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.callCount())
	assert.Equal(t, false, s.GetCacheStats()["cache_enabled"])
}

func TestService_Overview(t *testing.T) {
	f := newFakeFetcher()
	s := newTestService(t, f)

	ov, err := s.Overview(context.Background(), 37.5665, 126.9780)
	require.NoError(t, err)
	assert.Len(t, ov.Reports, 3)
	assert.Empty(t, ov.Errors)
	assert.Equal(t, "2025-03-15T00:35:00Z", ov.Timestamp)
	assert.Equal(t, 3, f.callCount())
}

func TestService_OverviewPartialFailure(t *testing.T) {
	f := newFakeFetcher()
	f.fail[kma.OpShortTermForecast] = errors.New("upstream down")
	s := newTestService(t, f)

	ov, err := s.Overview(context.Background(), 37.5665, 126.9780)
	require.NoError(t, err)
	assert.Len(t, ov.Reports, 2)
	assert.Equal(t, "upstream down", ov.Errors["short-term-forecast"])
}

func TestService_OverviewAllFail(t *testing.T) {
	f := newFakeFetcher()
	for _, op := range []kma.Operation{kma.OpUltraShortNowcast, kma.OpUltraShortForecast, kma.OpShortTermForecast} {
		f.fail[op] = errors.New("down")
	}
	s := newTestService(t, f)

	_, err := s.Overview(context.Background(), 37.5665, 126.9780)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestService_CityWeather(t *testing.T) {
	f := newFakeFetcher()
	s := newTestService(t, f)

	r, err := s.CityWeather(context.Background(), "  서울 ")
	require.NoError(t, err)

	assert.Equal(t, "서울", r.City)
	assert.Nil(t, r.Coordinate)
	// 09:35 is before the 40 minute cutoff.
	assert.Equal(t, basetime.BaseTime{Date: "20250315", Time: "0800"}, r.BaseTime)
	assert.Contains(t, r.Text, "📍 서울 current weather (base: 03/15 08:00)")
	assert.Contains(t, r.Text, "🌡️ Temperature: 12.3°C")

	require.Len(t, f.calls, 1)
	assert.Equal(t, grid.Point{NX: 60, NY: 127}, f.calls[0].q.Grid)
}

func TestService_CityWeatherAfterCutoff(t *testing.T) {
	f := newFakeFetcher()
	s := newTestService(t, f)
	s.SetClock(func() time.Time { return fixedNow.Add(5 * time.Minute) })

	r, err := s.CityWeather(context.Background(), "Jeju")
	require.NoError(t, err)
	assert.Equal(t, "제주", r.City)
	assert.Equal(t, grid.Point{NX: 52, NY: 38}, r.Grid)
	assert.Equal(t, "0900", r.BaseTime.Time)
}

func TestService_UnknownCity(t *testing.T) {
	f := newFakeFetcher()
	s := newTestService(t, f)

	_, err := s.CityWeather(context.Background(), "평양")
	require.ErrorIs(t, err, ErrUnknownCity)
	assert.Contains(t, err.Error(), "서울, 부산")
	assert.Zero(t, f.callCount())
}

func TestService_ConcurrentAccess(t *testing.T) {
	f := newFakeFetcher()
	s := newTestService(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UltraShortForecast(context.Background(), 35.1796, 129.0756)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.GreaterOrEqual(t, f.callCount(), 1)
}
