package sampledata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/tradeboard/internal/domain/types"
	"github.com/okian/tradeboard/pkg/logger"
)

// ErrMismatch is returned by Compare when a served ranking differs from the
// locally computed one.
var ErrMismatch = errors.New("rankings mismatch")

// Client queries a running tradeboard server.
type Client struct {
	baseURL string
	client  *http.Client
	logger  logger.Logger
}

// NewClient creates a Client for baseURL with a per-request timeout.
func NewClient(baseURL string, timeout time.Duration, l logger.Logger) *Client {
	if l == nil {
		l = logger.Nop()
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  l,
	}
}

// CheckHealth verifies the server answers /healthz with 200.
func (c *Client) CheckHealth(ctx context.Context) error {
	resp, err := c.get(ctx, "/healthz", nil)
	if err != nil {
		return fmt.Errorf("connect to service: %w", err)
	}
	defer c.close(ctx, resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// Rankings fetches GET /rankings for one metric.
func (c *Client) Rankings(ctx context.Context, metric string, limit int, mode string) (types.Result, error) {
	q := url.Values{}
	q.Set("metric", metric)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("mode", mode)

	resp, err := c.get(ctx, "/rankings", q)
	if err != nil {
		return types.Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer c.close(ctx, resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.Result{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var res types.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return types.Result{}, fmt.Errorf("parse response: %w", err)
	}
	return res, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.client.Do(req)
}

func (c *Client) close(ctx context.Context, resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		c.logger.Error(ctx, "failed to close response body", logger.Error(err))
	}
}

// Compare checks that got ranks the same countries with the same values as
// want for metric, continent by continent.
func Compare(want, got types.Result, metric string) error {
	if len(want.Continents) != len(got.Continents) {
		return fmt.Errorf("%w: %d continents served, %d expected", ErrMismatch, len(got.Continents), len(want.Continents))
	}
	for _, continent := range want.ContinentNames() {
		w := want.Continents[continent][metric]
		g, ok := got.Continents[continent][metric]
		if !ok {
			return fmt.Errorf("%w: %s missing for %s", ErrMismatch, metric, continent)
		}
		if err := compareEntries("top", continent, w.Top, g.Top); err != nil {
			return err
		}
		if err := compareEntries("bottom", continent, w.Bottom, g.Bottom); err != nil {
			return err
		}
	}
	return nil
}

func compareEntries(side, continent string, want, got []types.Entry) error {
	if len(want) != len(got) {
		return fmt.Errorf("%w: %s %s has %d entries, expected %d", ErrMismatch, continent, side, len(got), len(want))
	}
	for i := range want {
		if want[i].Country != got[i].Country || want[i].Value != got[i].Value {
			return fmt.Errorf("%w: %s %s #%d is %s (%g), expected %s (%g)",
				ErrMismatch, continent, side, i+1, got[i].Country, got[i].Value, want[i].Country, want[i].Value)
		}
	}
	return nil
}
