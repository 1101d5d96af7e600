// Package extract turns a fetched article page into a structured record
// plus a reference to the raw content container.
package extract

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/galangw/article-pipeline/internal/article"
)

// structuredType is the only LD+JSON block type the extractor recognizes.
const structuredType = "NewsArticle"

// contentContainerSelector identifies the main content container. The
// first match wins; pages without one still extract, with empty content.
const contentContainerSelector = "div.article, div.article--version2"

// ldEntity mirrors the subset of the embedded LD+JSON schema we read.
type ldEntity struct {
	Type          string  `json:"@type"`
	DateCreated   string  `json:"dateCreated"`
	DatePublished string  `json:"datePublished"`
	DateModified  string  `json:"dateModified"`
	Author        ldNamed `json:"author"`
	Publisher     ldNamed `json:"publisher"`
}

type ldNamed struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Extractor reads article metadata and locates the content container.
type Extractor struct {
	logger *zap.Logger
}

// New builds an Extractor.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{logger: logger}
}

// Extract builds the record for a page. Missing optional fields stay
// empty and are never an error; only the container selection can come
// back nil (empty content).
func (e *Extractor) Extract(doc *goquery.Document, url string) (article.Record, *goquery.Selection) {
	rec := article.Record{URL: url}

	if title := doc.Find("h1.article-title").First(); title.Length() > 0 {
		rec.Title = strings.TrimSpace(title.Text())
	} else {
		rec.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	rec.Description = strings.TrimSpace(doc.Find("p.article-sinopsis").First().Text())

	if desc, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		rec.MetaDescription = desc
	}
	rec.MetaKeywords = splitCommaList(metaContent(doc, `meta[name="keywords"]`, `meta[name="tags"]`))
	rec.MetaTags = tagSlugs(doc)
	rec.Structured = e.structuredMeta(doc, url)

	container := doc.Find(contentContainerSelector).First()
	if container.Length() == 0 {
		e.logger.Debug("no content container found", zap.String("url", url))
		return rec, nil
	}
	return rec, container
}

// structuredMeta parses the first LD+JSON block and, when it carries an
// entity of the recognized type, returns its authorship fields. Malformed
// blocks are skipped, never fatal.
func (e *Extractor) structuredMeta(doc *goquery.Document, url string) *article.StructuredMeta {
	script := doc.Find(`script[type="application/ld+json"]`).First()
	if script.Length() == 0 {
		return nil
	}

	raw := strings.TrimSpace(script.Text())
	entities, err := decodeEntities(raw)
	if err != nil {
		e.logger.Warn("could not parse LD+JSON block",
			zap.String("url", url),
			zap.Error(err),
		)
		return nil
	}

	for _, ent := range entities {
		if ent.Type != structuredType {
			continue
		}
		return &article.StructuredMeta{
			Type:          ent.Type,
			AuthorName:    ent.Author.Name,
			PublisherName: ent.Publisher.Name,
			PublisherURL:  ent.Publisher.URL,
			DateCreated:   ent.DateCreated,
			DatePublished: ent.DatePublished,
			DateModified:  ent.DateModified,
		}
	}
	return nil
}

// decodeEntities accepts either a single LD+JSON object or an array.
func decodeEntities(raw string) ([]ldEntity, error) {
	if strings.HasPrefix(raw, "[") {
		var list []ldEntity
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return nil, err
		}
		return list, nil
	}
	var one ldEntity
	if err := json.Unmarshal([]byte(raw), &one); err != nil {
		return nil, err
	}
	return []ldEntity{one}, nil
}

// metaContent returns the content attribute of the first selector that
// matches.
func metaContent(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		if content, ok := doc.Find(sel).First().Attr("content"); ok {
			return content
		}
	}
	return ""
}

// tagSlugs collects tag slugs from the related-tags list.
func tagSlugs(doc *goquery.Document) []string {
	var slugs []string
	doc.Find("ul.box-list--related a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if idx := strings.LastIndex(href, "/tag/"); idx >= 0 {
			if slug := href[idx+len("/tag/"):]; slug != "" {
				slugs = append(slugs, slug)
			}
		}
	})
	return slugs
}

func splitCommaList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
