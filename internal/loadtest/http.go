package loadtest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/okian/fairway/internal/adapters/http/api"
	"github.com/okian/fairway/internal/domain/types"
	"github.com/okian/fairway/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body and extra headers.
func (c *HTTPClient) Post(ctx context.Context, url string, body any, headers map[string]string) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body.
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
}

// fetchStats reads GET /stats.
func fetchStats(ctx context.Context, client *HTTPClient, baseURL string) (types.Stats, error) {
	resp, err := client.Get(ctx, baseURL+"/stats")
	if err != nil {
		return types.Stats{}, fmt.Errorf("failed to get stats: %w", err)
	}
	body, err := readResponseBody(resp)
	if err != nil {
		return types.Stats{}, fmt.Errorf("failed to read stats: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return types.Stats{}, fmt.Errorf("stats returned status %d", resp.StatusCode)
	}
	var s types.Stats
	if err := json.Unmarshal(body, &s); err != nil {
		return types.Stats{}, fmt.Errorf("failed to decode stats: %w", err)
	}
	return s, nil
}

// submitAttempts posts every attempt with a bounded number of in-flight requests.
func submitAttempts(ctx context.Context, config *Config, attempts []Attempt, stats *Stats) []Result {
	logger.Get().Info(ctx, "submitting booking attempts",
		logger.Int("attempts", len(attempts)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/bookings"
	results := make([]Result, len(attempts))

	var submitted, created, duplicate, rejected, failed int64
	var lastReport atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	for i := range attempts {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := submitSingleAttempt(gCtx, client, url, attempts[i])
			results[i] = res

			atomic.AddInt64(&submitted, 1)
			switch {
			case res.Status == http.StatusCreated:
				atomic.AddInt64(&created, 1)
			case res.Error != nil && res.Error.Code == "duplicate_request":
				atomic.AddInt64(&duplicate, 1)
			case res.Status >= http.StatusBadRequest && res.Status < http.StatusInternalServerError:
				atomic.AddInt64(&rejected, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}

			now := time.Now().UnixNano()
			last := lastReport.Load()
			if now-last >= int64(ProgressInterval) && lastReport.CompareAndSwap(last, now) {
				logger.Get().Info(gCtx, "progress",
					logger.Int64("submitted", atomic.LoadInt64(&submitted)),
					logger.Int("total", len(attempts)),
					logger.Int64("created", atomic.LoadInt64(&created)),
					logger.Int64("duplicate", atomic.LoadInt64(&duplicate)),
					logger.Int64("rejected", atomic.LoadInt64(&rejected)),
					logger.Int64("failed", atomic.LoadInt64(&failed)))
			}
			if config.Verbose && res.Status != http.StatusCreated {
				logger.Get().Debug(gCtx, "booking not created",
					logger.Int("index", res.Attempt.Index),
					logger.Int("status", res.Status),
					logger.Any("error", res.Error))
			}
			return nil
		})
	}
	_ = g.Wait()

	stats.AttemptsSubmitted = int(submitted)
	stats.Created = int(created)
	stats.Duplicate = int(duplicate)
	stats.Rejected = int(rejected)
	stats.Failed = int(failed)

	logger.Get().Info(ctx, "booking submission completed",
		logger.Int("created", stats.Created),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed))
	return results
}

// submitSingleAttempt posts one attempt and decodes whichever body comes back.
func submitSingleAttempt(ctx context.Context, client *HTTPClient, url string, a Attempt) Result {
	res := Result{Attempt: a}
	start := time.Now()

	resp, err := client.Post(ctx, url, a.Request, map[string]string{api.HeaderIdempotencyKey: a.IdempotencyKey})
	if err != nil {
		res.Error = &types.ErrorResponse{Code: "transport", Message: err.Error()}
		res.Latency = time.Since(start)
		return res
	}
	res.Status = resp.StatusCode

	body, err := readResponseBody(resp)
	if err != nil {
		res.Error = &types.ErrorResponse{Code: "transport", Message: err.Error()}
		res.Latency = time.Since(start)
		return res
	}

	if resp.StatusCode == http.StatusCreated {
		var b types.BookingResponse
		if err := json.Unmarshal(body, &b); err != nil {
			res.Error = &types.ErrorResponse{Code: "decode", Message: err.Error()}
		} else {
			res.Booking = &b
		}
	} else {
		var e types.ErrorResponse
		if err := json.Unmarshal(body, &e); err != nil {
			e = types.ErrorResponse{Code: "decode", Message: err.Error()}
		}
		res.Error = &e
	}
	res.Latency = time.Since(start)
	return res
}
