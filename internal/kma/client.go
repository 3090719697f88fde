// Package kma is the HTTP client for the KMA village forecast open API
// (VilageFcstInfoService_2.0).
package kma

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/vzahanych/kma-weather/internal/basetime"
	"github.com/vzahanych/kma-weather/internal/config"
	"github.com/vzahanych/kma-weather/internal/grid"
	"github.com/vzahanych/kma-weather/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Operation is a path under the service base URL.
type Operation string

const (
	OpUltraShortNowcast  Operation = "getUltraSrtNcst"
	OpUltraShortForecast Operation = "getUltraSrtFcst"
	OpShortTermForecast  Operation = "getVilageFcst"
)

func OperationFor(kind basetime.Kind) (Operation, error) {
	switch kind {
	case basetime.UltraShortNowcast:
		return OpUltraShortNowcast, nil
	case basetime.UltraShortForecast:
		return OpUltraShortForecast, nil
	case basetime.ShortTermForecast:
		return OpShortTermForecast, nil
	}
	return "", fmt.Errorf("%w: %d", basetime.ErrUnknownKind, int(kind))
}

// Query holds the per-request parameters of every operation.
type Query struct {
	BaseTime  basetime.BaseTime
	Grid      grid.Point
	NumOfRows int
	PageNo    int
}

// UpstreamRecorder receives one call per upstream attempt.
type UpstreamRecorder interface {
	RecordUpstreamCall(ctx context.Context, operation string, success bool, duration time.Duration)
}

type Client struct {
	baseURL    string
	serviceKey string
	client     *http.Client
	retries    int
	logger     *zap.Logger
	tele       *telemetry.Telemetry
	metrics    UpstreamRecorder
}

func NewClientWithConfig(cfg config.KMAConfig, logger *zap.Logger, tele *telemetry.Telemetry) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		serviceKey: cfg.ServiceKey,
		client: &http.Client{
			Timeout: cfg.TimeoutDuration(),
		},
		retries: cfg.Retries,
		logger:  logger,
		tele:    tele,
	}
}

func (c *Client) SetMetricsRecorder(metrics UpstreamRecorder) {
	c.metrics = metrics
}

// statusError is an unexpected HTTP status from the provider.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("API request failed with status: %d", e.status)
}

// Fetch calls op with q. Transport failures and 5xx answers are retried with
// exponential backoff; other failures are returned immediately. The returned
// Response has not been checked for a provider result code, see Items.
func (c *Client) Fetch(ctx context.Context, op Operation, q Query) (*Response, error) {
	tracer := c.tele.GetTracer()
	ctx, span := tracer.Start(ctx, "kma."+string(op))
	defer span.End()

	span.SetAttributes(
		attribute.String("base_date", q.BaseTime.Date),
		attribute.String("base_time", q.BaseTime.Time),
		attribute.Int("nx", q.Grid.NX),
		attribute.Int("ny", q.Grid.NY),
	)

	u, err := c.buildURL(op, q)
	if err != nil {
		return nil, err
	}

	attempt := 0
	var resp *Response
	operation := func() error {
		attempt++
		start := time.Now()

		r, err := c.do(ctx, u)
		if c.metrics != nil {
			c.metrics.RecordUpstreamCall(ctx, string(op), err == nil, time.Since(start))
		}
		if err != nil {
			c.logger.Warn("KMA request failed",
				zap.String("operation", string(op)),
				zap.Int("attempt", attempt),
				zap.Error(err))

			var se *statusError
			if errors.As(err, &se) && se.status < http.StatusInternalServerError {
				return backoff.Permanent(err)
			}
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(), uint64(max(c.retries, 0))),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		span.SetAttributes(attribute.Bool("success", false), attribute.Int("attempts", attempt))
		c.tele.RecordError(ctx, err, map[string]interface{}{"operation": op})
		return nil, fmt.Errorf("kma %s: %w", op, err)
	}

	span.SetAttributes(attribute.Bool("success", true), attribute.Int("attempts", attempt))
	c.logger.Debug("KMA request completed",
		zap.String("operation", string(op)),
		zap.String("base", q.BaseTime.String()),
		zap.Int("nx", q.Grid.NX),
		zap.Int("ny", q.Grid.NY),
		zap.Int("attempts", attempt))

	return resp, nil
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	return b
}

func (c *Client) buildURL(op Operation, q Query) (string, error) {
	u, err := url.Parse(fmt.Sprintf("%s/%s", c.baseURL, op))
	if err != nil {
		return "", err
	}

	pageNo := q.PageNo
	if pageNo <= 0 {
		pageNo = 1
	}

	v := u.Query()
	v.Set("numOfRows", strconv.Itoa(q.NumOfRows))
	v.Set("pageNo", strconv.Itoa(pageNo))
	v.Set("dataType", "JSON")
	v.Set("base_date", q.BaseTime.Date)
	v.Set("base_time", q.BaseTime.Time)
	v.Set("nx", strconv.Itoa(q.Grid.NX))
	v.Set("ny", strconv.Itoa(q.Grid.NY))

	// data.go.kr issues keys that are already URL-encoded; encoding them a
	// second time breaks authentication.
	raw := v.Encode()
	if c.serviceKey != "" {
		raw = "serviceKey=" + c.serviceKey + "&" + raw
	}
	u.RawQuery = raw

	return u.String(), nil
}

func (c *Client) do(ctx context.Context, u string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{status: resp.StatusCode}
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}
