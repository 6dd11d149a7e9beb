package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBaseURL is the TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// ErrMissingAPIKey is returned by every fetch when no bearer token is configured.
var ErrMissingAPIKey = errors.New("tmdb: api key not configured")

// APIError is an application-level failure: HTTP success, but the body
// carries Response:"False".
type APIError struct {
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return "tmdb: request failed"
	}
	return "tmdb: " + e.Message
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: status %d: %s", e.Code, e.Body)
}

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL           string
	Language          string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Client fetches movie listings from TMDB.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewClient creates a Client authenticating with the given bearer token.
func NewClient(apiKey string, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Language == "" {
		opts.Language = "en-US"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &Client{
		apiKey:   strings.TrimSpace(apiKey),
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		language: opts.Language,
		client:   &http.Client{Timeout: opts.Timeout},
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// URL builds the request URL: the search endpoint when query is non-empty,
// otherwise the popularity-sorted discover endpoint.
func (c *Client) URL(query string) string {
	v := url.Values{}
	v.Set("include_adult", "false")
	v.Set("language", c.language)
	v.Set("page", "1")

	if query != "" {
		v.Set("query", query)
		return c.baseURL + "/search/movie?" + v.Encode()
	}

	v.Set("include_video", "false")
	v.Set("sort_by", "popularity.desc")
	return c.baseURL + "/discover/movie?" + v.Encode()
}

// Fetch issues one GET for query and classifies the result. Errors are
// *APIError for an application-level failure, ErrMissingAPIKey, or a
// transport/status error. No retries.
func (c *Client) Fetch(ctx context.Context, query string) (*Page, error) {
	if !c.Available() {
		return nil, ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("tmdb: rate limiter wait failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("tmdb: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("tmdb: request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("tmdb: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("tmdb: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("tmdb: failed to parse response: %w", err)
	}
	if env.Response == "False" {
		return nil, &APIError{Message: env.Error}
	}

	page := env.Page
	if page.Results == nil {
		page.Results = []Movie{}
	}
	return &page, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
