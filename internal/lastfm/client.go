// Playledger - Store Music Play Settlement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/playledger

package lastfm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/playledger/internal/config"
	"github.com/tomtom215/playledger/internal/logging"
	"github.com/tomtom215/playledger/internal/metrics"
)

const (
	// MaxPageSize is the largest limit the API accepts.
	MaxPageSize = 200

	// maxErrorBodySize limits how much of a response body is read for error reporting.
	maxErrorBodySize = 64 * 1024

	// maxBodySize bounds a successful page. 200 tracks are well under 1 MiB.
	maxBodySize = 8 * 1024 * 1024
)

// RecentTracksRequest selects one page of a user's scrobbles in [From, To].
type RecentTracksRequest struct {
	User  string
	From  time.Time
	To    time.Time
	Page  int
	Limit int
}

// RecentTracksFetcher is satisfied by Client and CircuitBreakerClient.
type RecentTracksFetcher interface {
	RecentTracks(ctx context.Context, req RecentTracksRequest) (*RecentTracksPage, error)
}

// Client calls the Last.fm API. It is safe for concurrent use; the rate
// limiter is shared by all callers.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter

	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a client from cfg.
func NewClient(cfg *config.SourceConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	maxRetries := cfg.MaxRateLimitRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		userAgent:      cfg.UserAgent,
		client:         &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, 1),
		maxRetries:     maxRetries,
		retryBaseDelay: time.Second,
	}
}

// RecentTracks fetches one page.
func (c *Client) RecentTracks(ctx context.Context, req RecentTracksRequest) (*RecentTracksPage, error) {
	if req.User == "" {
		return nil, errors.New("lastfm: user is required")
	}
	limit := req.Limit
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}
	page := req.Page
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("method", "user.getrecenttracks")
	params.Set("user", req.User)
	params.Set("api_key", c.apiKey)
	params.Set("format", "json")
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))
	if !req.From.IsZero() {
		params.Set("from", strconv.FormatInt(req.From.Unix(), 10))
	}
	if !req.To.IsZero() {
		params.Set("to", strconv.FormatInt(req.To.Unix(), 10))
	}
	reqURL := c.baseURL + "?" + params.Encode()

	resp, err := c.doRequestWithRateLimit(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readBodyForError(resp.Body)
		// Last.fm sends its error payload with 4xx statuses too.
		if _, apiErr := decodeRecentTracks(body); apiErr != nil {
			var e *APIError
			if errors.As(apiErr, &e) {
				return nil, e
			}
		}
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("lastfm: read response: %w", err)
	}
	return decodeRecentTracks(body)
}

// doRequestWithRateLimit performs a GET, waiting on the shared limiter first
// and retrying HTTP 429 with exponential backoff (1s, 2s, 4s, ...) or the
// server's Retry-After.
func (c *Client) doRequestWithRateLimit(ctx context.Context, reqURL string) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("lastfm: create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		start := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			metrics.RecordSourceRequest("error", time.Since(start))
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			var urlErr *url.Error
			if errors.As(err, &urlErr) {
				urlErr.URL = logging.RedactURL(urlErr.URL)
			}
			return nil, fmt.Errorf("lastfm: request failed: %w", err)
		}
		metrics.RecordSourceRequest(strconv.Itoa(resp.StatusCode), time.Since(start))

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		_ = resp.Body.Close()

		if attempt >= c.maxRetries {
			return nil, fmt.Errorf("%w after %d retries (HTTP 429)", ErrRateLimited, c.maxRetries)
		}

		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if ra, ok := parseRetryAfter(resp.Header.Get("Retry-After"), time.Now()); ok {
			delay = ra
		}
		logging.Ctx(ctx).Debug().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("Rate limited by scrobble API, backing off")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d, true
		}
		return 0, true
	}
	return 0, false
}

// readBodyForError reads at most 64KB of a response body for error reporting.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
