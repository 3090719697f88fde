// Package weather composes the grid projection, base-time resolver, KMA
// client and report rendering into the operations served over HTTP.
package weather

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/vzahanych/kma-weather/internal/basetime"
	"github.com/vzahanych/kma-weather/internal/config"
	"github.com/vzahanych/kma-weather/internal/grid"
	"github.com/vzahanych/kma-weather/internal/kma"
	"github.com/vzahanych/kma-weather/internal/report"
	"github.com/vzahanych/kma-weather/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const cacheType = "kma_items"

var (
	ErrUnknownCity = errors.New("unsupported city")
	ErrNoData      = errors.New("no weather data available")
)

// Fetcher is satisfied by *kma.Client.
type Fetcher interface {
	Fetch(ctx context.Context, op kma.Operation, q kma.Query) (*kma.Response, error)
}

// MetricsRecorder interface for recording metrics
type MetricsRecorder interface {
	RecordCacheHit(ctx context.Context, cacheType string)
	RecordCacheMiss(ctx context.Context, cacheType string)
}

// Report is a rendered product for one location.
type Report struct {
	Kind         string            `json:"kind"`
	City         string            `json:"city,omitempty"`
	Coordinate   *grid.Coordinate  `json:"coordinate,omitempty"`
	Grid         grid.Point        `json:"grid"`
	BaseTime     basetime.BaseTime `json:"base_time"`
	Observations []report.Entry    `json:"observations,omitempty"`
	Forecast     []report.Slot     `json:"forecast,omitempty"`
	Text         string            `json:"text"`
}

// Overview holds every product for one location. Products that failed are
// listed in Errors instead of Reports.
type Overview struct {
	Reports   map[string]*Report `json:"reports"`
	Errors    map[string]string  `json:"errors,omitempty"`
	Timestamp string             `json:"timestamp"`
}

type Service struct {
	fetcher Fetcher
	cache   *expirable.LRU[string, []kma.Item]
	cities  *Cities
	rows    config.RowsConfig
	now     func() time.Time
	logger  *zap.Logger
	tele    *telemetry.Telemetry
	metrics MetricsRecorder
}

func NewService(cfg config.KMAConfig, cities *Cities, fetcher Fetcher, logger *zap.Logger, tele *telemetry.Telemetry) *Service {
	s := &Service{
		fetcher: fetcher,
		cities:  cities,
		rows:    cfg.Rows,
		now:     time.Now,
		logger:  logger,
		tele:    tele,
	}
	if ttl := cfg.CacheTTLDuration(); ttl > 0 {
		s.cache = expirable.NewLRU[string, []kma.Item](cfg.CacheSize, nil, ttl)
	}
	return s
}

// SetMetricsRecorder sets the metrics recorder for the service
func (s *Service) SetMetricsRecorder(metrics MetricsRecorder) {
	s.metrics = metrics
}

// SetClock replaces the wall clock used to resolve base times.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) kst() time.Time {
	return s.now().In(basetime.KST)
}

func (s *Service) rowsFor(kind basetime.Kind) int {
	switch kind {
	case basetime.UltraShortNowcast:
		return s.rows.Nowcast
	case basetime.UltraShortForecast:
		return s.rows.UltraShort
	default:
		return s.rows.ShortTerm
	}
}

func (s *Service) Nowcast(ctx context.Context, lat, lon float64) (*Report, error) {
	return s.Report(ctx, basetime.UltraShortNowcast, lat, lon)
}

func (s *Service) UltraShortForecast(ctx context.Context, lat, lon float64) (*Report, error) {
	return s.Report(ctx, basetime.UltraShortForecast, lat, lon)
}

func (s *Service) ShortTermForecast(ctx context.Context, lat, lon float64) (*Report, error) {
	return s.Report(ctx, basetime.ShortTermForecast, lat, lon)
}

// Report fetches and renders kind for the given coordinates.
func (s *Service) Report(ctx context.Context, kind basetime.Kind, lat, lon float64) (*Report, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weather.Report")
	defer span.End()

	coord, err := grid.NewCoordinate(lat, lon)
	if err != nil {
		return nil, err
	}
	bt, err := basetime.Resolve(kind, s.kst())
	if err != nil {
		return nil, err
	}
	p := coord.Grid()

	span.SetAttributes(
		attribute.String("kind", kind.String()),
		attribute.Float64("lat", lat),
		attribute.Float64("lon", lon),
		attribute.Int("nx", p.NX),
		attribute.Int("ny", p.NY),
	)

	items, err := s.items(ctx, kind, p, bt)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Kind:       kind.String(),
		Coordinate: &coord,
		Grid:       p,
		BaseTime:   bt,
	}
	h := report.Header{Kind: kind, Coordinate: coord, BaseTime: bt}
	if kind == basetime.UltraShortNowcast {
		r.Observations = report.Observations(items)
		r.Text = report.ObservationText(h, r.Observations)
	} else {
		r.Forecast = report.Forecast(items)
		r.Text = report.ForecastText(h, r.Forecast)
	}
	return r, nil
}

// Overview fetches all three products concurrently. It fails only when none
// of them could be fetched.
func (s *Service) Overview(ctx context.Context, lat, lon float64) (*Overview, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weather.Overview")
	defer span.End()

	if _, err := grid.NewCoordinate(lat, lon); err != nil {
		return nil, err
	}

	kinds := []basetime.Kind{
		basetime.UltraShortNowcast,
		basetime.UltraShortForecast,
		basetime.ShortTermForecast,
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	out := &Overview{
		Reports: make(map[string]*Report, len(kinds)),
		Errors:  make(map[string]string),
	}

	for _, kind := range kinds {
		wg.Add(1)
		go func(kind basetime.Kind) {
			defer wg.Done()

			r, err := s.Report(ctx, kind, lat, lon)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Errors[kind.String()] = err.Error()
				return
			}
			out.Reports[kind.String()] = r
		}(kind)
	}

	wg.Wait()

	span.SetAttributes(attribute.Int("reports_count", len(out.Reports)))

	if len(out.Reports) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, strings.Join(sortedValues(out.Errors), "; "))
	}

	out.Timestamp = s.now().UTC().Format(time.RFC3339)
	return out, nil
}

// CityWeather returns the current observation for a named city using the
// city lookup's 40 minute base-time rule.
func (s *Service) CityWeather(ctx context.Context, name string) (*Report, error) {
	tracer := s.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "weather.CityWeather")
	defer span.End()

	city, ok := s.cities.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w %q, supported cities: %s",
			ErrUnknownCity, strings.TrimSpace(name), strings.Join(s.SupportedCities(), ", "))
	}

	span.SetAttributes(attribute.String("city", city.Name))

	bt := basetime.CityNowcast(s.kst())
	items, err := s.items(ctx, basetime.UltraShortNowcast, city.Grid, bt)
	if err != nil {
		return nil, err
	}

	return &Report{
		Kind:         basetime.UltraShortNowcast.String(),
		City:         city.Name,
		Grid:         city.Grid,
		BaseTime:     bt,
		Observations: report.Observations(items),
		Text:         report.CityText(city.Name, bt, items),
	}, nil
}

func (s *Service) SupportedCities() []string {
	return s.cities.Names()
}

func (s *Service) Cities() []City {
	return s.cities.All()
}

func cacheKey(kind basetime.Kind, p grid.Point, bt basetime.BaseTime) string {
	return fmt.Sprintf("%s:%d,%d:%s%s", kind, p.NX, p.NY, bt.Date, bt.Time)
}

// items returns the provider items for one issuance, from cache when
// possible. Only successful responses are cached.
func (s *Service) items(ctx context.Context, kind basetime.Kind, p grid.Point, bt basetime.BaseTime) ([]kma.Item, error) {
	key := cacheKey(kind, p, bt)
	reqLogger := s.logger.With(zap.String("cache_key", key))
	if id := RequestIDFromContext(ctx); id != "" {
		reqLogger = reqLogger.With(zap.String("request_id", id))
	}

	if s.cache != nil {
		if items, ok := s.cache.Get(key); ok {
			reqLogger.Debug("Cache hit")
			if s.metrics != nil {
				s.metrics.RecordCacheHit(ctx, cacheType)
			}
			return items, nil
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss(ctx, cacheType)
		}
	}

	op, err := kma.OperationFor(kind)
	if err != nil {
		return nil, err
	}

	resp, err := s.fetcher.Fetch(ctx, op, kma.Query{
		BaseTime:  bt,
		Grid:      p,
		NumOfRows: s.rowsFor(kind),
		PageNo:    1,
	})
	if err != nil {
		reqLogger.Error("Failed to fetch weather data", zap.Error(err))
		return nil, err
	}

	items, err := resp.Items()
	if err != nil {
		reqLogger.Warn("KMA returned no usable data", zap.Error(err))
		return nil, err
	}

	if s.cache != nil {
		s.cache.Add(key, items)
	}
	reqLogger.Info("Weather data fetched", zap.Int("items", len(items)))

	return items, nil
}

func (s *Service) ClearCache() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *Service) GetCacheStats() map[string]interface{} {
	size := 0
	if s.cache != nil {
		size = s.cache.Len()
	}
	return map[string]interface{}{
		"cache_enabled": s.cache != nil,
		"cache_size":    size,
		"cities":        len(s.cities.Names()),
	}
}

func sortedValues(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + ": " + m[k]
	}
	return out
}
