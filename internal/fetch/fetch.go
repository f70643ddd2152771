// Package fetch retrieves venue pages as text. It is the pipeline's only
// network-facing piece: one URL in, one string out, with a bounded timeout
// and a short retry budget. Callers own any policy beyond that.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultTimeout bounds one fetch attempt end to end.
	DefaultTimeout = 30 * time.Second

	userAgent  = "citypulse/1.0 (github.com/mbertelsen/citypulse)"
	maxRetries = 2
	maxBody    = 4 << 20
)

// Client fetches pages over HTTP.
type Client struct {
	http *http.Client
}

// New creates a Client with the given per-attempt timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
	}
}

// Get fetches a URL and returns the response body as text. Transient errors
// are retried with exponential backoff; client errors (4xx) are permanent.
func (c *Client) Get(ctx context.Context, rawURL string) (string, error) {
	var body string

	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("fetching page: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return fmt.Errorf("reading body: %w", err)
		}
		body = string(data)
		return nil
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return "", err
	}
	return body, nil
}
