// Package postgres provides the Postgres-backed article store.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/galangw/article-pipeline/internal/article"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for article rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgxIface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store persists article records keyed by URL.
type Store struct {
	pool  pgxIface
	table string
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "scraped_articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for
// testing).
func NewWithPool(pool pgxIface, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "scraped_articles"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// InitSchema creates the article table when it does not exist yet. This
// is the only fatal, run-aborting setup step in the pipeline.
func (s *Store) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id SERIAL PRIMARY KEY,
	url TEXT NOT NULL UNIQUE,
	title TEXT,
	description TEXT,
	meta_description TEXT,
	meta_keywords TEXT,
	meta_tag TEXT,
	author_name TEXT,
	type TEXT,
	publisher_name TEXT,
	publisher_url TEXT,
	date_published TEXT,
	date_created TEXT,
	date_modified TEXT,
	content TEXT
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// ListKnownURLs returns every persisted URL in one round-trip. URLs are
// trimmed to shrug off legacy rows with padded whitespace.
func (s *Store) ListKnownURLs(ctx context.Context) (map[string]struct{}, error) {
	query := fmt.Sprintf("SELECT TRIM(url) FROM %s", s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list known urls: %w", err)
	}
	defer rows.Close()

	known := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan known url: %w", err)
		}
		if u != "" {
			known[u] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate known urls: %w", err)
	}
	return known, nil
}

// ListRecords returns every persisted article in insertion order, so
// downstream numbering stays stable across exports.
func (s *Store) ListRecords(ctx context.Context) ([]article.Record, error) {
	query := fmt.Sprintf(`
SELECT url, title, description, meta_description, meta_keywords, meta_tag,
	author_name, type, publisher_name, publisher_url,
	date_published, date_created, date_modified, content
FROM %s ORDER BY id`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []article.Record
	for rows.Next() {
		var rec article.Record
		var keywords, tags string
		var authorName, typ, publisherName, publisherURL *string
		var datePublished, dateCreated, dateModified *string
		if err := rows.Scan(
			&rec.URL, &rec.Title, &rec.Description, &rec.MetaDescription,
			&keywords, &tags,
			&authorName, &typ, &publisherName, &publisherURL,
			&datePublished, &dateCreated, &dateModified,
			&rec.Content,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.MetaKeywords = splitList(keywords)
		rec.MetaTags = splitList(tags)
		rec.Structured = structuredFromColumns(
			authorName, typ, publisherName, publisherURL,
			datePublished, dateCreated, dateModified,
		)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

// Upsert writes the record, replacing every column on URL conflict.
// Repeated writes of the same record are convergent.
func (s *Store) Upsert(ctx context.Context, rec article.Record) error {
	if rec.URL == "" {
		return fmt.Errorf("record url is required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	url, title, description, meta_description, meta_keywords, meta_tag,
	author_name, type, publisher_name, publisher_url,
	date_published, date_created, date_modified, content
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
)
ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	description = EXCLUDED.description,
	meta_description = EXCLUDED.meta_description,
	meta_keywords = EXCLUDED.meta_keywords,
	meta_tag = EXCLUDED.meta_tag,
	author_name = EXCLUDED.author_name,
	type = EXCLUDED.type,
	publisher_name = EXCLUDED.publisher_name,
	publisher_url = EXCLUDED.publisher_url,
	date_published = EXCLUDED.date_published,
	date_created = EXCLUDED.date_created,
	date_modified = EXCLUDED.date_modified,
	content = EXCLUDED.content`, s.table)

	st := rec.Structured
	args := []any{
		rec.URL,
		rec.Title,
		rec.Description,
		rec.MetaDescription,
		strings.Join(rec.MetaKeywords, ","),
		strings.Join(rec.MetaTags, ","),
		nullable(structuredField(st, func(m *article.StructuredMeta) string { return m.AuthorName })),
		nullable(structuredField(st, func(m *article.StructuredMeta) string { return m.Type })),
		nullable(structuredField(st, func(m *article.StructuredMeta) string { return m.PublisherName })),
		nullable(structuredField(st, func(m *article.StructuredMeta) string { return m.PublisherURL })),
		nullable(structuredField(st, func(m *article.StructuredMeta) string { return m.DatePublished })),
		nullable(structuredField(st, func(m *article.StructuredMeta) string { return m.DateCreated })),
		nullable(structuredField(st, func(m *article.StructuredMeta) string { return m.DateModified })),
		rec.Content,
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}
	return nil
}

// structuredFromColumns rebuilds structured metadata from its nullable
// columns; a row with all of them NULL yields nil, mirroring a page
// without an ld+json block.
func structuredFromColumns(authorName, typ, publisherName, publisherURL, datePublished, dateCreated, dateModified *string) *article.StructuredMeta {
	deref := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	meta := article.StructuredMeta{
		Type:          deref(typ),
		AuthorName:    deref(authorName),
		PublisherName: deref(publisherName),
		PublisherURL:  deref(publisherURL),
		DatePublished: deref(datePublished),
		DateCreated:   deref(dateCreated),
		DateModified:  deref(dateModified),
	}
	if meta == (article.StructuredMeta{}) {
		return nil
	}
	return &meta
}

func splitList(joined string) []string {
	if joined == "" {
		return nil
	}
	parts := strings.Split(joined, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func structuredField(m *article.StructuredMeta, pick func(*article.StructuredMeta) string) string {
	if m == nil {
		return ""
	}
	return pick(m)
}

// nullable maps an absent value to SQL NULL instead of an empty string.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
