// Package exa implements the SearchProvider port against the Exa
// search API. Provider response shapes are translated into canonical
// domain documents at this boundary; the core never sees them.
package exa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
	"github.com/custodia-labs/quarry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quarry-cli/internal/logger"
)

const (
	// DefaultBaseURL is the Exa API endpoint.
	DefaultBaseURL = "https://api.exa.ai"

	// DefaultMaxAttempts is the retry budget per fetch, including the
	// first attempt.
	DefaultMaxAttempts = 3

	// DefaultAttemptTimeout bounds a single HTTP attempt.
	DefaultAttemptTimeout = 10 * time.Second

	// DefaultOverallTimeout bounds the whole fetch regardless of how
	// many attempts the retry budget allows.
	DefaultOverallTimeout = 30 * time.Second

	// DefaultRate is the proactive request rate, slightly under the
	// provider's 5/s limit to be safe.
	DefaultRate = 3

	// DefaultRetryBaseDelay is the initial backoff delay; it doubles
	// per attempt with ±50% jitter.
	DefaultRetryBaseDelay = 500 * time.Millisecond
)

// Ensure Client implements the interface.
var _ driven.SearchProvider = (*Client)(nil)

// Config configures the Exa client. The zero value of every optional
// field falls back to the package default.
type Config struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// MaxAttempts is the retry budget including the first attempt.
	MaxAttempts int

	// AttemptTimeout bounds each HTTP attempt independently.
	AttemptTimeout time.Duration

	// OverallTimeout bounds the whole fetch.
	OverallTimeout time.Duration

	// Rate is the proactive throttle in requests per second.
	Rate float64

	// RetryBaseDelay is the initial backoff delay; it doubles per
	// attempt with ±50% jitter.
	RetryBaseDelay time.Duration
}

// Client calls the Exa search API with bounded retries and a
// token-bucket throttle.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an Exa client from config, applying defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	if cfg.OverallTimeout <= 0 {
		cfg.OverallTimeout = DefaultOverallTimeout
	}
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{},
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), 1),
	}
}

// Name identifies the provider in cache entry metadata.
func (c *Client) Name() string {
	return "exa"
}

// searchRequest is the provider's search payload.
type searchRequest struct {
	Query      string           `json:"query"`
	NumResults int              `json:"numResults"`
	Type       string           `json:"type"`
	Category   string           `json:"category,omitempty"`
	Livecrawl  string           `json:"livecrawl,omitempty"`
	Contents   *contentsRequest `json:"contents,omitempty"`
}

type contentsRequest struct {
	Text bool `json:"text"`
}

// searchResponse is the provider's search result shape.
type searchResponse struct {
	Results []searchResultItem `json:"results"`
}

type searchResultItem struct {
	ID            string  `json:"id"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	PublishedDate string  `json:"publishedDate"`
	Score         float64 `json:"score"`
	Text          string  `json:"text"`
}

// Fetch performs one search with bounded retries. Only transient
// failures are retried; permanent ones short-circuit. The overall
// deadline caps worst-case latency regardless of attempt count, and on
// exhaustion the last underlying cause is attached, not swallowed.
func (c *Client) Fetch(ctx context.Context, query domain.Query) (*driven.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.OverallTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			// No request was issued for this attempt.
			return nil, &domain.ProviderError{Transient: true, Attempts: attempt - 1, Err: err}
		}

		docs, err := c.doSearch(ctx, query)
		if err == nil {
			return &driven.FetchResult{Documents: docs, Attempts: attempt}, nil
		}
		lastErr = err

		if !isTransient(err) {
			logger.Warn("Provider request failed permanently: %v", err)
			return nil, &domain.ProviderError{Transient: false, Attempts: attempt, Err: err}
		}

		logger.Debug("Provider attempt %d/%d failed: %v", attempt, c.cfg.MaxAttempts, err)

		if attempt == c.cfg.MaxAttempts {
			break
		}
		if err := c.sleepBackoff(ctx, attempt); err != nil {
			return nil, &domain.ProviderError{Transient: true, Attempts: attempt, Err: lastErr}
		}
	}

	return nil, &domain.ProviderError{Transient: true, Attempts: c.cfg.MaxAttempts, Err: lastErr}
}

// doSearch performs a single HTTP attempt with its own timeout.
func (c *Client) doSearch(ctx context.Context, query domain.Query) ([]domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	payload := searchRequest{
		Query:      query.CanonicalText(),
		NumResults: query.Count,
		Type:       "neural",
		Category:   query.Category,
		Contents:   &contentsRequest{Text: true},
	}
	if query.Livecrawl {
		payload.Livecrawl = "always"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	now := time.Now().UTC()
	docs := make([]domain.Document, len(parsed.Results))
	for i, r := range parsed.Results {
		docs[i] = domain.Document{
			ID:            r.ID,
			URL:           r.URL,
			Title:         r.Title,
			Author:        r.Author,
			PublishedDate: r.PublishedDate,
			Score:         r.Score,
			Text:          r.Text,
			FetchedAt:     now,
		}
	}
	return docs, nil
}

// sleepBackoff waits for the exponential backoff delay with ±50%
// jitter, or returns early if ctx is done.
func (c *Client) sleepBackoff(ctx context.Context, attempt int) error {
	delay := c.cfg.RetryBaseDelay << (attempt - 1)
	jittered := time.Duration(float64(delay) * (0.5 + rand.Float64()))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(jittered):
		return nil
	}
}

// readErrorMessage extracts a short error message from a non-200 body.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 1024))
	if err != nil || len(data) == 0 {
		return "no response body"
	}

	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &parsed) == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Message != "" {
			return parsed.Message
		}
	}
	return string(data)
}
