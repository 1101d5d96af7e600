// Package rewrite implements the external image-rewrite capability over
// HTTP. One attempt per image, no retries: callers fall back to the
// original URL on any error.
package rewrite

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// maxResponseBytes bounds the rewrite response body; a URL never needs
// more.
const maxResponseBytes = 8 << 10

// Config points at the rewrite gateway.
type Config struct {
	Endpoint string
	Referer  string
	Timeout  time.Duration
}

// Client calls the rewrite gateway.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New builds a Client.
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Rewrite asks the gateway for a replacement URL for src. Any non-success
// response or non-URL-shaped body is an error; the caller keeps src.
func (c *Client) Rewrite(ctx context.Context, src string) (string, error) {
	endpoint := c.cfg.Endpoint + "?url=" + url.QueryEscape(src)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build rewrite request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "*/*")
	if c.cfg.Referer != "" {
		req.Header.Set("Referer", c.cfg.Referer)
		req.Header.Set("Origin", strings.TrimSuffix(c.cfg.Referer, "/"))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("rewrite request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("rewrite gateway returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read rewrite response: %w", err)
	}

	rewritten := strings.TrimSpace(string(body))
	if !strings.HasPrefix(rewritten, "http") {
		return "", fmt.Errorf("rewrite gateway returned non-URL body %q", truncate(rewritten, 64))
	}

	c.logger.Debug("image rewritten",
		zap.String("src", src),
		zap.String("rewritten", rewritten),
	)
	return rewritten, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
