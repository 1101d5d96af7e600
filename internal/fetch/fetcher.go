// Package fetch implements the page Fetcher using the Colly collector.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

// Config controls collector and retry behavior.
type Config struct {
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int
	// RetryDelay is the base inter-retry delay; attempt n waits n times
	// this value.
	RetryDelay time.Duration
}

// CollyFetcher fetches article pages with bounded retries. Every Fetch
// clones the base collector, so concurrent tasks never share a session.
type CollyFetcher struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a CollyFetcher.
func New(cfg Config, logger *zap.Logger) *CollyFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 1500 * time.Millisecond
	}

	c := colly.NewCollector(colly.Async(false))
	c.IgnoreRobotsTxt = true
	c.WithTransport(newHTTPTransport())

	return &CollyFetcher{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Fetch retrieves a URL, retrying up to the configured bound with a
// linearly increasing delay, and returns the parsed document. Exhausting
// the retries is reported as an error; the caller treats it as a
// no-content terminal failure for that URL.
func (f *CollyFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 1; attempt <= f.cfg.MaxRetries; attempt++ {
		body, err := f.fetchOnce(ctx, url)
		if err == nil {
			doc, perr := goquery.NewDocumentFromReader(bytes.NewReader(body))
			if perr != nil {
				return nil, fmt.Errorf("parse %s: %w", url, perr)
			}
			return doc, nil
		}
		lastErr = err
		f.logger.Warn("fetch attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt == f.cfg.MaxRetries {
			break
		}
		if err := sleepCtx(ctx, time.Duration(attempt)*f.cfg.RetryDelay); err != nil {
			return nil, fmt.Errorf("fetch %s canceled: %w", url, err)
		}
	}
	return nil, fmt.Errorf("fetch %s after %d attempts: %w", url, f.cfg.MaxRetries, lastErr)
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	collector := f.baseCollector.Clone()
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	collector.SetRequestTimeout(f.cfg.Timeout)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("visit failed: %w", err)
		}
		if fetchErr != nil {
			return nil, fmt.Errorf("response failed: %w", fetchErr)
		}
		return body, nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
