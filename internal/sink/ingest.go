// Package sink submits normalized events to the backing events API. It is
// the reference caller of the pipeline: the core itself never opens
// database connections or performs upserts.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/gigcity/harvester/internal/event"
	"github.com/gigcity/harvester/internal/metrics"
)

// Client submits event batches to the events API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
}

// Result holds the parsed response from a batch submission.
type Result struct {
	BatchID         string       `json:"batch_id"`
	EventsCreated   int          `json:"events_created"`
	EventsDuplicate int          `json:"events_duplicate"`
	EventsFailed    int          `json:"events_failed"`
	Errors          []BatchError `json:"errors,omitempty"`
}

// BatchError describes a per-event error within a batch.
type BatchError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// NewClient constructs a Client targeting baseURL with the given API key.
// Submissions are rate limited to requestsPerSec so a multi-venue batch
// run doesn't hammer the API.
func NewClient(baseURL, apiKey string, requestsPerSec float64) *Client {
	if requestsPerSec <= 0 {
		requestsPerSec = 2
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter:   rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		userAgent: "GigCity-Harvester/0.1 (+https://gigcity.app; events@gigcity.app)",
	}
}

// Submit marshals events as {"events":[...]} and POSTs them to
// {baseURL}/api/v1/events:batch, returning the parsed result.
func (c *Client) Submit(ctx context.Context, evts []event.Normalized) (Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Result{}, err
	}

	payload, err := json.Marshal(map[string]any{"events": evts})
	if err != nil {
		return Result{}, fmt.Errorf("marshal batch: %w", err)
	}

	url := c.baseURL + "/api/v1/events:batch"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.SinkSubmissions.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.SinkSubmissions.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.SinkSubmissions.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("rate limited (HTTP 429): %s", bodySnippet(body))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.SinkSubmissions.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bodySnippet(body))
	}

	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return Result{}, fmt.Errorf("parse response: %w", err)
	}

	metrics.SinkSubmissions.WithLabelValues("ok").Inc()
	return result, nil
}

// SubmitDryRun returns a synthetic Result without making any HTTP call.
func (c *Client) SubmitDryRun(_ context.Context, evts []event.Normalized) (Result, error) {
	metrics.SinkSubmissions.WithLabelValues("dry_run").Inc()
	return Result{
		BatchID:       "dry-run",
		EventsCreated: len(evts),
	}, nil
}

// bodySnippet returns up to 200 characters of body as a string.
func bodySnippet(body []byte) string {
	if len(body) > 200 {
		return string(body[:200])
	}
	return string(body)
}
