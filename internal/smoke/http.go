package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/fplcoach/internal/domain/types"
	"github.com/okian/fplcoach/pkg/logger"
)

// HTTPClient wraps http.Client with a base URL and timeout.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// get performs a GET request and returns the body of a 200 response.
func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req)
}

// post performs a POST request with a JSON body.
func (c *HTTPClient) post(ctx context.Context, path string, body any) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", req.URL.Path, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}

// getJSON fetches path and decodes the response into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// fetchSnapshot reads every recommendation endpoint once.
func fetchSnapshot(ctx context.Context, client *HTTPClient, config *Config) (*Snapshot, error) {
	snap := &Snapshot{}
	if err := client.getJSON(ctx, fmt.Sprintf("/players?limit=%d", playersPageLimit), &snap.Players); err != nil {
		return nil, err
	}
	if err := client.getJSON(ctx, "/captain", &snap.Captain); err != nil {
		return nil, err
	}
	if err := client.getJSON(ctx, "/transfers", &snap.Transfers); err != nil {
		return nil, err
	}
	if err := client.getJSON(ctx, lineupPath(config), &snap.Lineup); err != nil {
		return nil, err
	}

	team := make([]string, 0, len(snap.Lineup.Lineup))
	for _, e := range snap.Lineup.Lineup {
		team = append(team, e.Name)
	}
	body, err := client.post(ctx, "/team_rating", types.TeamRatingRequest{Team: team})
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, &snap.Rating); err != nil {
		return nil, fmt.Errorf("failed to decode /team_rating: %w", err)
	}
	return snap, nil
}

func lineupPath(config *Config) string {
	if config.Formation == "" {
		return "/team_builder"
	}
	return "/team_builder?formation=" + config.Formation
}

// probeStability replays read-only endpoints concurrently and counts
// responses that differ from the first answer for the same path.
func probeStability(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	paths := []string{"/captain", "/transfers", lineupPath(config)}

	baseline := make(map[string][]byte, len(paths))
	for _, p := range paths {
		body, err := client.get(ctx, p)
		if err != nil {
			return err
		}
		baseline[p] = body
	}

	logger.Get().Info(ctx, "probing stability",
		logger.Int("requests", config.Requests),
		logger.Int("workers", config.Workers))

	var (
		sent       int64
		failed     int64
		mismatches int64
	)

	jobs := make(chan string, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup
	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				atomic.AddInt64(&sent, 1)
				body, err := client.get(ctx, p)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						logger.Get().Warn(ctx, "probe request failed", logger.String("path", p), logger.Error(err))
					}
					continue
				}
				if !bytes.Equal(body, baseline[p]) {
					atomic.AddInt64(&mismatches, 1)
				}
			}
		}()
	}

feed:
	for i := 0; i < config.Requests; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- paths[i%len(paths)]:
		}
	}
	close(jobs)
	wg.Wait()

	stats.RequestsSent += int(sent)
	stats.RequestsFailed += int(failed)
	stats.Mismatches += int(mismatches)

	if mismatches > 0 {
		return fmt.Errorf("%d of %d repeated responses differed", mismatches, sent)
	}
	return ctx.Err()
}
