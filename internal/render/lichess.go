// Package render fetches board images from a FEN-export HTTP API.
package render

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

// Renderer produces a board image for a FEN position.
type Renderer interface {
	Render(ctx context.Context, fen string) ([]byte, error)
}

type Client struct {
	exportURL string
	size      int
	http      *fasthttp.Client

	defaultTimeout time.Duration
	retryMax       int
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.defaultTimeout = d }
}

func WithRetry(max int) Option {
	return func(c *Client) { c.retryMax = max }
}

func NewClient(exportURL string, size int, opts ...Option) *Client {
	if size <= 0 {
		size = 8
	}
	c := &Client{
		exportURL:      strings.TrimSpace(exportURL),
		size:           size,
		http:           &fasthttp.Client{ReadTimeout: 10 * time.Second, WriteTimeout: 10 * time.Second, MaxConnsPerHost: 16},
		defaultTimeout: 10 * time.Second,
		retryMax:       3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Render fetches the rendered board for fen, retrying transient failures
// with linear backoff.
func (c *Client) Render(ctx context.Context, fen string) ([]byte, error) {
	if strings.TrimSpace(fen) == "" {
		return nil, fmt.Errorf("fen required")
	}

	uri := c.exportURL + "?fen=" + url.QueryEscape(fen) + "&size=" + strconv.Itoa(c.size)
	return c.get(ctx, uri)
}

// Download fetches an arbitrary URL, used for chat attachment downloads.
func (c *Client) Download(ctx context.Context, uri string) ([]byte, error) {
	return c.get(ctx, uri)
}

func (c *Client) get(ctx context.Context, uri string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetRequestURI(uri)

	attempts := c.retryMax
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.http.DoDeadline(req, resp, c.computeDeadline(ctx))
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			if attempt == attempts {
				return nil, lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		status := resp.StatusCode()
		if status < 200 || status >= 300 {
			lastErr = fmt.Errorf("board export error: status=%d body=%s", status, truncate(string(resp.Body()), 256))
			if attempt == attempts || !shouldRetryStatus(status) {
				return nil, lastErr
			}
			if sleepErr := sleepWithContext(ctx, backoffDuration(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		body := make([]byte, len(resp.Body()))
		copy(body, resp.Body())
		return body, nil
	}
	return nil, lastErr
}

func (c *Client) computeDeadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(c.defaultTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	return deadline
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func backoffDuration(attempt int) time.Duration {
	return time.Duration(attempt) * 300 * time.Millisecond
}

func shouldRetryStatus(status int) bool {
	return status == fasthttp.StatusTooManyRequests || status >= 500
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
