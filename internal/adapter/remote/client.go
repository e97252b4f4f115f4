// Package remote fetches datasets over HTTP(S).
package remote

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxErrorBody bounds how much of a failed response is quoted in the error.
const maxErrorBody = 512

// Client implements source.Fetcher for http and https URIs.
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a client whose requests time out after timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: "gironde-risk-etl",
		logger:    logger,
	}
}

// Open issues a GET for uri and returns the response body. The caller
// closes it.
func (c *Client) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", uri, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("fetch %s: status %d: %s", uri, resp.StatusCode, body)
	}

	c.logger.Debug("remote source opened", "uri", uri, "content_length", resp.ContentLength)
	return resp.Body, nil
}
