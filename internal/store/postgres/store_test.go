package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/galangw/article-pipeline/internal/article"
)

func testRecord() article.Record {
	return article.Record{
		URL:             "https://www.trstdly.com/news/x.html",
		Title:           "A Title",
		Description:     "Desc.",
		MetaDescription: "Meta desc.",
		MetaKeywords:    []string{"one", "two"},
		MetaTags:        []string{"tag-a"},
		Structured: &article.StructuredMeta{
			Type:          "NewsArticle",
			AuthorName:    "Kevin G.",
			PublisherName: "Trstdly",
			PublisherURL:  "https://www.trstdly.com",
			DateCreated:   "2024-03-01T08:00:00+07:00",
			DatePublished: "2024-03-01T09:00:00+07:00",
			DateModified:  "2024-03-02T10:30:00+07:00",
		},
		Content: "<p>body</p>",
	}
}

func TestUpsertInsertsAllColumns(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "scraped_articles")
	require.NoError(t, err)

	rec := testRecord()
	mock.ExpectExec("INSERT INTO scraped_articles").
		WithArgs(
			rec.URL,
			rec.Title,
			rec.Description,
			rec.MetaDescription,
			"one,two",
			"tag-a",
			"Kevin G.",
			"NewsArticle",
			"Trstdly",
			"https://www.trstdly.com",
			"2024-03-01T09:00:00+07:00",
			"2024-03-01T08:00:00+07:00",
			"2024-03-02T10:30:00+07:00",
			rec.Content,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Upsert(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertWithoutStructuredMetaWritesNulls(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "scraped_articles")
	require.NoError(t, err)

	rec := article.Record{URL: "https://example.com/a", Title: "T", Content: "<p>b</p>"}
	mock.ExpectExec("INSERT INTO scraped_articles").
		WithArgs(
			rec.URL, rec.Title, "", "", "", "",
			nil, nil, nil, nil, nil, nil, nil,
			rec.Content,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Upsert(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestUpsertIsRepeatable exercises the idempotent-write contract: the
// same record written twice issues the same convergent statement.
func TestUpsertIsRepeatable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "scraped_articles")
	require.NoError(t, err)

	rec := testRecord()
	for i := 0; i < 2; i++ {
		mock.ExpectExec("ON CONFLICT \\(url\\) DO UPDATE").
			WithArgs(
				rec.URL, rec.Title, rec.Description, rec.MetaDescription,
				"one,two", "tag-a",
				"Kevin G.", "NewsArticle", "Trstdly", "https://www.trstdly.com",
				"2024-03-01T09:00:00+07:00", "2024-03-01T08:00:00+07:00", "2024-03-02T10:30:00+07:00",
				rec.Content,
			).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}

	require.NoError(t, store.Upsert(context.Background(), rec))
	require.NoError(t, store.Upsert(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRequiresURL(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "scraped_articles")
	require.NoError(t, err)

	require.Error(t, store.Upsert(context.Background(), article.Record{}))
}

func TestListKnownURLs(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "scraped_articles")
	require.NoError(t, err)

	rows := pgxmock.NewRows([]string{"url"}).
		AddRow("https://example.com/a").
		AddRow("https://example.com/b").
		AddRow("")
	mock.ExpectQuery("SELECT TRIM\\(url\\) FROM scraped_articles").WillReturnRows(rows)

	known, err := store.ListKnownURLs(context.Background())
	require.NoError(t, err)
	require.Len(t, known, 2)
	require.Contains(t, known, "https://example.com/a")
	require.Contains(t, known, "https://example.com/b")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecords(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "scraped_articles")
	require.NoError(t, err)

	cols := []string{
		"url", "title", "description", "meta_description", "meta_keywords", "meta_tag",
		"author_name", "type", "publisher_name", "publisher_url",
		"date_published", "date_created", "date_modified", "content",
	}
	published := "2024-03-01T09:00:00+07:00"
	rows := pgxmock.NewRows(cols).
		AddRow(
			"https://example.com/a", "First", "d", "md", "one,two", "tag-a",
			ptr("Kevin G."), ptr("NewsArticle"), ptr("Trstdly"), ptr("https://www.trstdly.com"),
			&published, nil, nil,
			"<p>a</p>",
		).
		AddRow(
			"https://example.com/b", "Second", "", "", "", "",
			nil, nil, nil, nil,
			nil, nil, nil,
			"<p>b</p>",
		)
	mock.ExpectQuery("SELECT url, title, description").WillReturnRows(rows)

	records, err := store.ListRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.Equal(t, "First", records[0].Title)
	require.Equal(t, []string{"one", "two"}, records[0].MetaKeywords)
	require.Equal(t, []string{"tag-a"}, records[0].MetaTags)
	require.NotNil(t, records[0].Structured)
	require.Equal(t, "NewsArticle", records[0].Structured.Type)
	require.Equal(t, published, records[0].Structured.DatePublished)

	// A row with all structured columns NULL yields no structured meta.
	require.Nil(t, records[1].Structured)
	require.Nil(t, records[1].MetaKeywords)
	require.NoError(t, mock.ExpectationsWereMet())
}

func ptr(s string) *string { return &s }

func TestInitSchema(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewWithPool(mock, "scraped_articles")
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS scraped_articles").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.InitSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewWithPoolRejectsBadTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewWithPool(mock, "bad; drop table")
	require.Error(t, err)
}
