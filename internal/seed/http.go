package seed

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

	"github.com/edulytics/screener/pkg/logger"
)

// httpClient wraps http.Client with a timeout.
type httpClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *httpClient {
	return &httpClient{client: &http.Client{Timeout: timeout}}
}

func (c *httpClient) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	return body, resp.StatusCode, err
}

func (c *httpClient) post(ctx context.Context, url string, body interface{}) ([]byte, int, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	out, err := io.ReadAll(resp.Body)
	return out, resp.StatusCode, err
}

// checkServiceHealth verifies the service is reachable before seeding.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	_, status, err := client.get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("service not reachable at %s: %w", config.BaseURL, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected health status %d", status)
	}
	return nil
}

// submitSessions posts the session set concurrently.
func submitSessions(ctx context.Context, config *Config, sessions []sessionPayload, stats *Stats) error {
	log := logger.Get().Named("seed")
	log.Info(ctx, "submitting sessions",
		logger.Int("sessions", len(sessions)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/sessions"

	sessionChan := make(chan sessionPayload, config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for sess := range sessionChan {
				select {
				case <-ctx.Done():
					return
				default:
				}
				body, status, err := client.post(ctx, url, sess)
				if err != nil {
					atomic.AddInt64(&stats.SessionsFailed, 1)
					continue
				}
				switch status {
				case http.StatusAccepted:
					atomic.AddInt64(&stats.SessionsAccepted, 1)
				case http.StatusOK:
					var ack ackResponse
					if err := json.Unmarshal(body, &ack); err == nil && ack.Duplicate {
						atomic.AddInt64(&stats.SessionsDuplicate, 1)
						continue
					}
					atomic.AddInt64(&stats.SessionsAccepted, 1)
				default:
					atomic.AddInt64(&stats.SessionsFailed, 1)
					if config.Verbose {
						log.Warn(ctx, "session rejected",
							logger.Int("status", status),
							logger.String("body", string(body)))
					}
				}
			}
		}()
	}

	for _, sess := range sessions {
		select {
		case <-ctx.Done():
			close(sessionChan)
			wg.Wait()
			return ctx.Err()
		case sessionChan <- sess:
		}
	}
	close(sessionChan)
	wg.Wait()
	return nil
}

// fetchSummary retrieves the tier breakdown after seeding.
func fetchSummary(ctx context.Context, config *Config) (map[string]interface{}, error) {
	client := newHTTPClient(config.Timeout)
	body, status, err := client.get(ctx, config.BaseURL+"/tiers/summary")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected summary status %d", status)
	}
	var summary map[string]interface{}
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return summary, nil
}

// fetchAtRiskCount retrieves the early-warning list size after seeding.
func fetchAtRiskCount(ctx context.Context, config *Config) (int, error) {
	client := newHTTPClient(config.Timeout)
	body, status, err := client.get(ctx, config.BaseURL+"/at-risk")
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("unexpected at-risk status %d", status)
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(body, &entries); err != nil {
		return 0, fmt.Errorf("failed to decode at-risk list: %w", err)
	}
	return len(entries), nil
}
