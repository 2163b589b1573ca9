// Package fpl polls the Fantasy Premier League API and maps its payloads to
// snapshot tables.
package fpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/okian/fplcoach/pkg/logger"
	"github.com/okian/fplcoach/pkg/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Endpoint paths relative to the base URL.
const (
	EndpointBootstrap = "bootstrap-static"
	EndpointFixtures  = "fixtures"

	breakerName     = "fpl"
	maxResponseSize = 32 << 20
	userAgent       = "fplcoach/1.0"
)

// Client is a rate-limited, circuit-broken FPL API client.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker

	breakerMinRequests uint32
	breakerRatio       float64
	breakerTimeout     time.Duration
}

// NewClient creates a client for baseURL, e.g. https://fantasy.premierleague.com/api.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:            strings.TrimRight(baseURL, "/"),
		http:               &http.Client{Timeout: 10 * time.Second},
		limiter:            rate.NewLimiter(rate.Limit(2), 1),
		breakerMinRequests: 3,
		breakerRatio:       0.6,
		breakerTimeout:     30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     c.breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < c.breakerMinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= c.breakerRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			metrics.UpdateBreakerState(name, int(to))
			logger.Get().Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})
	return c
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Bootstrap fetches players, teams and gameweeks.
func (c *Client) Bootstrap(ctx context.Context) (*Bootstrap, error) {
	var out Bootstrap
	if err := c.get(ctx, EndpointBootstrap, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fixtures fetches every fixture of the season.
func (c *Client) Fixtures(ctx context.Context) ([]Fixture, error) {
	var out []Fixture
	if err := c.get(ctx, EndpointFixtures, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, into any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, metrics.OutcomeError)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s: %w", ErrBreakerOpen, endpoint, err)
		}
		return err
	}
	metrics.RecordUpstreamRequest(endpoint, metrics.OutcomeOK)

	if err := json.Unmarshal(body.([]byte), into); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrUpstream, endpoint, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	url := c.baseURL + "/" + endpoint + "/"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s: status %d", ErrUpstream, endpoint, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUpstream, endpoint, err)
	}
	return body, nil
}
