package trending

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/abelbrown/reelfind/internal/tmdb"
)

// Client is a Store that talks to a remote trendingd.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *fasthttp.Client
}

// NewClient returns a client for the trendingd at baseURL.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "reelfind",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxConnsPerHost:     8,
			MaxIdleConnDuration: 90 * time.Second,
		},
	}
}

// Increment posts one search to the server.
func (c *Client) Increment(ctx context.Context, query string, movie tmdb.Movie) error {
	if Normalize(query) == "" {
		return ErrEmptyQuery
	}
	body, err := json.Marshal(incrementRequest{Query: query, Movie: movie})
	if err != nil {
		return fmt.Errorf("trending: marshal: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/v1/searches")
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if err := c.do(ctx, req, resp); err != nil {
		return err
	}
	if resp.StatusCode() != fasthttp.StatusNoContent {
		return fmt.Errorf("trending: increment: status %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}

// Top fetches the ranked list from the server.
func (c *Client) Top(ctx context.Context, limit int) ([]Entry, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/v1/trending?limit=" + strconv.Itoa(clampLimit(limit)))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	if err := c.do(ctx, req, resp); err != nil {
		return nil, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("trending: top: status %d: %s", resp.StatusCode(), resp.Body())
	}

	var out topResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("trending: decode: %w", err)
	}
	return out.Entries, nil
}

// do sends req, honoring the earlier of ctx's deadline and the client timeout.
func (c *Client) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+c.token)
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("trending: request failed: %w", err)
	}
	return nil
}
