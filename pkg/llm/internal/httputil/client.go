// ABOUTME: HTTP client shared by completion providers, with retry and SSE support
// ABOUTME: Retries 429/5xx with exponential backoff; honors HTTP_PROXY/HTTPS_PROXY

package httputil

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/litigantportal/agentkit/pkg/llm/internal/sse"
)

const (
	maxAttempts = 3
	baseBackoff = 500 * time.Millisecond
	maxBackoff  = 10 * time.Second
)

// Client issues JSON API requests against a fixed base URL.
type Client struct {
	http    *http.Client
	baseURL string
	headers map[string]string
}

// NewClient builds a client for baseURL with headers applied to every
// request. Proxy configuration comes from the environment.
func NewClient(baseURL string, headers map[string]string) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   30 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				MaxIdleConns:          100,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		baseURL: baseURL,
		headers: headers,
	}
}

// BaseURL reports the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends method path with body, retrying on 429 and 5xx. The final
// attempt's response is returned unread even when its status is still
// retryable; callers decide how to surface it. If body is seekable it
// is rewound between attempts.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	seeker, _ := body.(io.Seeker)

	for attempt := 0; ; attempt++ {
		if attempt > 0 && seeker != nil {
			if _, err := seeker.Seek(0, io.SeekStart); err != nil {
				return nil, fmt.Errorf("rewind request body: %w", err)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, fmt.Errorf("build %s %s: %w", method, path, err)
		}
		for k, v := range c.headers {
			req.Header.Set(k, v)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request: %w", err)
		}
		if !retryable(resp.StatusCode) || attempt == maxAttempts-1 {
			return resp, nil
		}
		resp.Body.Close()

		if err := sleep(ctx, backoff(attempt)); err != nil {
			return nil, fmt.Errorf("retry backoff: %w", err)
		}
	}
}

// StreamSSE issues the request and hands back an SSE decoder over the
// response body. The caller owns resp and must close its body.
func (c *Client) StreamSSE(ctx context.Context, method, path string, body io.Reader) (*sse.Decoder, *http.Response, error) {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return nil, nil, fmt.Errorf("sse request: %w", err)
	}
	return sse.NewDecoder(resp.Body), resp, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func backoff(attempt int) time.Duration {
	d := baseBackoff << attempt
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
