package article

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves a URL and returns the parsed document. Implementations
// retry internally up to a fixed bound; a returned error means the URL is
// unreachable and the task should fail without further attempts.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// Store is the URL-keyed persistence layer for article records.
type Store interface {
	// ListKnownURLs returns every URL already persisted, in one round-trip.
	ListKnownURLs(ctx context.Context) (map[string]struct{}, error)
	// Upsert writes the record, replacing all columns on URL conflict.
	Upsert(ctx context.Context, rec Record) error
	Close()
}

// ImageRewriter maps an image URL to a replacement URL (e.g. a compressed
// copy). A returned error means "use the original"; callers must treat it
// as non-fatal.
type ImageRewriter interface {
	Rewrite(ctx context.Context, src string) (string, error)
}

// FileSink writes one rendered document per URL and returns the path.
type FileSink interface {
	Save(ctx context.Context, url string, content string) (string, error)
}
