package wxr

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/galangw/article-pipeline/internal/article"
)

func sampleRecord() article.Record {
	return article.Record{
		URL:             "https://www.example.com/news/cara-merawat-anggrek-42775",
		Title:           "Cara Merawat Anggrek",
		MetaDescription: "Panduan singkat merawat anggrek.",
		MetaKeywords:    []string{"cara merawat anggrek", "anggrek"},
		MetaTags:        []string{"tanaman", "hobi"},
		Structured: &article.StructuredMeta{
			DatePublished: "2023-05-01T10:30:00+07:00",
			DateModified:  "2023-05-02T08:00:00+07:00",
		},
		Content: `<img src="https://cdn.example.com/cover.jpg" alt="Cover"/>

<h1>Cara Merawat Anggrek</h1>

<p>Siram secukupnya.</p>

<p>Sumber: trstdly.com @ 2023 trstdly.com</p>`,
	}
}

func TestSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Cara Merawat Anggrek", "cara-merawat-anggrek"},
		{"Hello,   World!", "hello-world"},
		{"--Already - Slugged--", "already-slugged"},
		{"", ""},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, Slug(tc.in))
	}
}

func TestDateFormatting(t *testing.T) {
	require.Equal(t, "Mon, 01 May 2023 10:30:00 GMT", formatPubDate("2023-05-01T10:30:00+07:00"))
	require.Equal(t, "2023-05-01 10:30:00", formatPostDate("2023-05-01T10:30:00+07:00"))
	require.Equal(t, "2023-05-01 10:30:00", formatPostDate("2023-05-01T10:30:00"))

	// Unparseable values pass through so the element is never empty.
	require.Equal(t, "yesterday", formatPubDate("yesterday"))
	require.Equal(t, "", formatPostDate(""))
}

func TestItemContent(t *testing.T) {
	got := ItemContent(sampleRecord())

	require.True(t, strings.HasPrefix(got,
		`<img class="aligncenter" src="https://cdn.example.com/cover.jpg" alt="Cover"/>`))
	require.Contains(t, got, "<h1>Cara Merawat Anggrek</h1>")
	require.Contains(t, got, `<meta name="description" content="Panduan singkat merawat anggrek.">`)
	require.Contains(t, got, `<meta name="tags" content="tanaman, hobi">`)
	require.Contains(t, got, `<meta name="keywords" content="cara merawat anggrek, anggrek">`)
	require.NotContains(t, got, "trstdly")
	require.Contains(t, got, "<p>Siram secukupnya.</p>")
}

func TestItemContentClampsAltText(t *testing.T) {
	longAlt := strings.Repeat("x", 400)
	rec := article.Record{Content: `<img src="a.jpg" alt="` + longAlt + `"/>`}

	got := ItemContent(rec)

	require.NotContains(t, got, longAlt)
	require.Contains(t, got, `alt="`+strings.Repeat("x", 250)+`"`)
}

func TestWriteFeed(t *testing.T) {
	e := New(Config{
		BasePostID:         40670,
		ChannelTitle:       "cara",
		ChannelLink:        "https://cnc.galang.eu.org",
		ChannelDescription: "cara",
		AuthorLogin:        "Galang",
		AuthorEmail:        "nganuwijaya05@gmail.com",
		Category:           "cara",
	}, nil)

	second := sampleRecord()
	second.URL = "https://www.example.com/news/second"
	second.MetaKeywords = nil

	var buf bytes.Buffer
	now := time.Date(2023, time.June, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, e.Write(&buf, []article.Record{sampleRecord(), second}, now))

	out := buf.String()
	require.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	require.Contains(t, out, "<!--This is a WordPress eXtended RSS file generated by WordPress as an export of your site.-->")
	require.Contains(t, out, `xmlns:wp="http://wordpress.org/export/1.2/"`)
	require.Contains(t, out, "<wp:wxr_version>1.2</wp:wxr_version>")
	require.Contains(t, out, "<pubDate>Thu, 01 Jun 2023 12:00:00 GMT</pubDate>")
	require.Contains(t, out, "<wp:author_login><![CDATA[Galang]]></wp:author_login>")

	// Items numbered from the base in input order.
	require.Contains(t, out, "<wp:post_id>40670</wp:post_id>")
	require.Contains(t, out, "<wp:post_id>40671</wp:post_id>")

	// First item titled by its first keyword; second falls back to the
	// record title.
	require.Contains(t, out, "<title><![CDATA[cara merawat anggrek]]></title>")
	require.Contains(t, out, "<title><![CDATA[Cara Merawat Anggrek]]></title>")
	require.Contains(t, out, "<wp:post_name><![CDATA[cara-merawat-anggrek]]></wp:post_name>")
	require.Contains(t, out, "<wp:post_date>2023-05-01 10:30:00</wp:post_date>")
	require.Contains(t, out, "<wp:status>publish</wp:status>")
	require.Contains(t, out, `<guid isPermaLink="false"><![CDATA[https://www.example.com/news/cara-merawat-anggrek-42775]]></guid>`)
	require.Contains(t, out, `<category domain="category" nicename="cara"><![CDATA[cara]]></category>`)
}
