// Package render assembles the two serialized document variants for an
// article: the file-oriented document written to disk and the
// store-oriented content persisted in the record.
//
// Both variants share one assembly rule (cover image, header block,
// remaining body) and differ only in which metadata directive lines they
// embed.
package render

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/galangw/article-pipeline/internal/article"
)

var excessBlanks = regexp.MustCompile(`\n{3,}`)

// Renderer derives serialized documents from a record plus its normalized
// content.
type Renderer struct{}

// New builds a Renderer.
func New() *Renderer {
	return &Renderer{}
}

// FileDocument produces the file-oriented variant: the page-level
// metadata (description, keywords, tags) is embedded as visible markup
// because the file is the only carrier for it.
func (r *Renderer) FileDocument(rec article.Record, normalized string) string {
	return assemble(rec, normalized, fileDirectives(rec))
}

// StoreContent produces the store-oriented variant: page-level metadata
// lives in dedicated record fields, so only the LD+JSON-derived directive
// set is embedded.
func (r *Renderer) StoreContent(rec article.Record, normalized string) string {
	return assemble(rec, normalized, storeDirectives(rec))
}

// assemble applies the shared layout rule: cover image, title heading,
// description paragraph, directive lines, then the remaining normalized
// lines with a blank separator after every non-list-item line.
func assemble(rec article.Record, normalized string, directives []string) string {
	cover, remaining := splitCover(normalized)

	var parts []string
	if cover != "" {
		parts = append(parts, cover, "")
	}
	if rec.Title != "" {
		parts = append(parts, "<h1>"+html.EscapeString(rec.Title)+"</h1>", "")
	}
	if rec.Description != "" {
		parts = append(parts, "<p>"+html.EscapeString(rec.Description)+"</p>", "")
	}
	for _, d := range directives {
		parts = append(parts, d, "")
	}
	for _, line := range remaining {
		parts = append(parts, line)
		if !strings.HasSuffix(line, "</li>") {
			parts = append(parts, "")
		}
	}

	result := strings.Join(parts, "\n")
	result = excessBlanks.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// splitCover removes the first image line from the normalized content and
// returns it separately alongside the remaining non-empty lines.
func splitCover(normalized string) (string, []string) {
	cover := ""
	var remaining []string
	for _, raw := range strings.Split(normalized, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if cover == "" && strings.HasPrefix(line, "<img ") {
			cover = line
			continue
		}
		remaining = append(remaining, line)
	}
	return cover, remaining
}

func fileDirectives(rec article.Record) []string {
	var out []string
	if rec.MetaDescription != "" {
		out = append(out, metaName("description", rec.MetaDescription))
	}
	if len(rec.MetaKeywords) > 0 {
		out = append(out, metaName("keywords", strings.Join(rec.MetaKeywords, ", ")))
	}
	if len(rec.MetaTags) > 0 {
		out = append(out, metaName("tags", strings.Join(rec.MetaTags, ", ")))
	}
	return out
}

func storeDirectives(rec article.Record) []string {
	if rec.Structured == nil {
		return nil
	}
	pairs := []struct {
		property string
		value    string
	}{
		{"article:published_time", rec.Structured.DatePublished},
		{"article:modified_time", rec.Structured.DateModified},
		{"article:author", rec.Structured.AuthorName},
		{"article:publisher", rec.Structured.PublisherName},
	}
	var out []string
	for _, p := range pairs {
		if p.value != "" {
			out = append(out, metaProperty(p.property, p.value))
		}
	}
	return out
}

func metaName(name, content string) string {
	return `<meta name="` + name + `" content="` + html.EscapeString(content) + `">`
}

func metaProperty(property, content string) string {
	return `<meta property="` + property + `" content="` + html.EscapeString(content) + `">`
}
