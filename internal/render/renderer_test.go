package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/galangw/article-pipeline/internal/article"
)

var testNormalized = strings.Join([]string{
	`<img src="https://cdn.example/cover.jpg" alt="cover"/>`,
	``,
	`<p>First body paragraph.</p>`,
	``,
	`<img src="https://cdn.example/body.jpg" alt="body"/>`,
	``,
	`<figcaption>Body caption.</figcaption>`,
	``,
	`<ul><li>One</li><li>Two</li></ul>`,
}, "\n")

func testRecord() article.Record {
	return article.Record{
		URL:             "https://www.trstdly.com/news/x.html",
		Title:           "A Title",
		Description:     "A description.",
		MetaDescription: "Meta description.",
		MetaKeywords:    []string{"alpha", "beta"},
		MetaTags:        []string{"tag-one", "tag-two"},
		Structured: &article.StructuredMeta{
			Type:          "NewsArticle",
			AuthorName:    "Kevin G.",
			PublisherName: "Trstdly",
			DatePublished: "2024-03-01T09:00:00+07:00",
			DateModified:  "2024-03-02T10:30:00+07:00",
		},
	}
}

func TestFileDocumentLayout(t *testing.T) {
	t.Parallel()

	got := New().FileDocument(testRecord(), testNormalized)

	want := strings.Join([]string{
		`<img src="https://cdn.example/cover.jpg" alt="cover"/>`,
		``,
		`<h1>A Title</h1>`,
		``,
		`<p>A description.</p>`,
		``,
		`<meta name="description" content="Meta description.">`,
		``,
		`<meta name="keywords" content="alpha, beta">`,
		``,
		`<meta name="tags" content="tag-one, tag-two">`,
		``,
		`<p>First body paragraph.</p>`,
		``,
		`<img src="https://cdn.example/body.jpg" alt="body"/>`,
		``,
		`<figcaption>Body caption.</figcaption>`,
		``,
		`<ul><li>One</li><li>Two</li></ul>`,
	}, "\n")
	require.Equal(t, want, got)
}

func TestStoreContentLayout(t *testing.T) {
	t.Parallel()

	got := New().StoreContent(testRecord(), testNormalized)

	want := strings.Join([]string{
		`<img src="https://cdn.example/cover.jpg" alt="cover"/>`,
		``,
		`<h1>A Title</h1>`,
		``,
		`<p>A description.</p>`,
		``,
		`<meta property="article:published_time" content="2024-03-01T09:00:00+07:00">`,
		``,
		`<meta property="article:modified_time" content="2024-03-02T10:30:00+07:00">`,
		``,
		`<meta property="article:author" content="Kevin G.">`,
		``,
		`<meta property="article:publisher" content="Trstdly">`,
		``,
		`<p>First body paragraph.</p>`,
		``,
		`<img src="https://cdn.example/body.jpg" alt="body"/>`,
		``,
		`<figcaption>Body caption.</figcaption>`,
		``,
		`<ul><li>One</li><li>Two</li></ul>`,
	}, "\n")
	require.Equal(t, want, got)
}

// TestVariantsShareAssemblyButDifferInDirectives pins the asymmetry: the
// file variant carries page-level meta markup, the store variant carries
// the LD+JSON-derived set, and everything else is identical.
func TestVariantsShareAssemblyButDifferInDirectives(t *testing.T) {
	t.Parallel()

	rec := testRecord()
	file := New().FileDocument(rec, testNormalized)
	store := New().StoreContent(rec, testNormalized)

	require.Contains(t, file, `<meta name="keywords"`)
	require.NotContains(t, file, `<meta property="article:`)
	require.Contains(t, store, `<meta property="article:published_time"`)
	require.NotContains(t, store, `<meta name="keywords"`)

	for _, doc := range []string{file, store} {
		require.True(t, strings.HasPrefix(doc, `<img src="https://cdn.example/cover.jpg"`))
		require.Contains(t, doc, "<h1>A Title</h1>")
		require.Contains(t, doc, "<figcaption>Body caption.</figcaption>")
	}
}

func TestStoreContentWithoutStructuredMeta(t *testing.T) {
	t.Parallel()

	rec := testRecord()
	rec.Structured = nil
	got := New().StoreContent(rec, testNormalized)

	require.NotContains(t, got, "<meta")
	require.Contains(t, got, "<h1>A Title</h1>")
}

func TestAssembleWithoutCoverOrHeader(t *testing.T) {
	t.Parallel()

	rec := article.Record{URL: "https://example.com/a"}
	got := New().StoreContent(rec, "<p>Only paragraph.</p>")
	require.Equal(t, "<p>Only paragraph.</p>", got)
}

func TestTitleAndDescriptionAreEscaped(t *testing.T) {
	t.Parallel()

	rec := article.Record{Title: `Tom & "Jerry" <3`, Description: "a < b"}
	got := New().FileDocument(rec, "")

	require.Contains(t, got, "<h1>Tom &amp; &#34;Jerry&#34; &lt;3</h1>")
	require.Contains(t, got, "<p>a &lt; b</p>")
}
