package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fixturePage = `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title - trstdly</title>
<meta name="description" content="Meta description text.">
<meta name="keywords" content="horror movies, japanese cinema, top lists">
<script type="application/ld+json">
{
  "@type": "NewsArticle",
  "dateCreated": "2024-03-01T08:00:00+07:00",
  "datePublished": "2024-03-01T09:00:00+07:00",
  "dateModified": "2024-03-02T10:30:00+07:00",
  "author": {"name": "Kevin G."},
  "publisher": {"name": "Trstdly", "url": "https://www.trstdly.com"}
}
</script>
</head>
<body>
<div class="article">
<h1 class="article-title">Top 5 Scariest Movies</h1>
<p class="article-sinopsis">A quick tour of the scariest films.</p>
<ul class="box-list--related">
<li><a href="/tag/horror">Horror</a></li>
<li><a href="/tag/movies">Movies</a></li>
<li><a href="/about">Not a tag</a></li>
</ul>
<p>Body paragraph.</p>
</div>
</body>
</html>`

func docFrom(t *testing.T, markup string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	require.NoError(t, err)
	return doc
}

func TestExtractFullPage(t *testing.T) {
	t.Parallel()

	e := New(zap.NewNop())
	rec, container := e.Extract(docFrom(t, fixturePage), "https://www.trstdly.com/news/x.html")

	require.Equal(t, "https://www.trstdly.com/news/x.html", rec.URL)
	require.Equal(t, "Top 5 Scariest Movies", rec.Title)
	require.Equal(t, "A quick tour of the scariest films.", rec.Description)
	require.Equal(t, "Meta description text.", rec.MetaDescription)
	require.Equal(t, []string{"horror movies", "japanese cinema", "top lists"}, rec.MetaKeywords)
	require.Equal(t, []string{"horror", "movies"}, rec.MetaTags)

	require.NotNil(t, rec.Structured)
	require.Equal(t, "NewsArticle", rec.Structured.Type)
	require.Equal(t, "Kevin G.", rec.Structured.AuthorName)
	require.Equal(t, "Trstdly", rec.Structured.PublisherName)
	require.Equal(t, "https://www.trstdly.com", rec.Structured.PublisherURL)
	require.Equal(t, "2024-03-01T09:00:00+07:00", rec.Structured.DatePublished)
	require.Equal(t, "2024-03-02T10:30:00+07:00", rec.Structured.DateModified)

	require.NotNil(t, container)
	require.Equal(t, 1, container.Length())
}

func TestExtractFallsBackToTitleTag(t *testing.T) {
	t.Parallel()

	markup := `<html><head><title>Page Title</title></head><body><p>no article markup</p></body></html>`
	e := New(zap.NewNop())
	rec, container := e.Extract(docFrom(t, markup), "https://example.com/a")

	require.Equal(t, "Page Title", rec.Title)
	require.Empty(t, rec.Description)
	require.Nil(t, rec.Structured)
	require.Nil(t, container)
}

func TestExtractLDJSONArray(t *testing.T) {
	t.Parallel()

	markup := `<html><head><script type="application/ld+json">
	[{"@type": "BreadcrumbList"},
	 {"@type": "NewsArticle", "author": {"name": "A. Writer"}, "publisher": {"name": "Pub"}}]
	</script></head><body></body></html>`

	e := New(zap.NewNop())
	rec, _ := e.Extract(docFrom(t, markup), "https://example.com/b")

	require.NotNil(t, rec.Structured)
	require.Equal(t, "A. Writer", rec.Structured.AuthorName)
	require.Equal(t, "Pub", rec.Structured.PublisherName)
}

func TestExtractMalformedLDJSONIsSkipped(t *testing.T) {
	t.Parallel()

	markup := `<html><head><script type="application/ld+json">{not json</script></head>
	<body><div class="article--version2"><p>text</p></div></body></html>`

	e := New(zap.NewNop())
	rec, container := e.Extract(docFrom(t, markup), "https://example.com/c")

	require.Nil(t, rec.Structured)
	require.NotNil(t, container, "alternate container class must match")
}

func TestExtractUnrecognizedLDJSONType(t *testing.T) {
	t.Parallel()

	markup := `<html><head><script type="application/ld+json">{"@type": "Recipe"}</script></head><body></body></html>`

	e := New(zap.NewNop())
	rec, _ := e.Extract(docFrom(t, markup), "https://example.com/d")
	require.Nil(t, rec.Structured)
}

func TestExtractKeywordsFallsBackToTagsMeta(t *testing.T) {
	t.Parallel()

	markup := `<html><head><meta name="tags" content="one, two"></head><body></body></html>`

	e := New(zap.NewNop())
	rec, _ := e.Extract(docFrom(t, markup), "https://example.com/e")
	require.Equal(t, []string{"one", "two"}, rec.MetaKeywords)
}
