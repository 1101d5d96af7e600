// Package wxr renders persisted articles as a WordPress eXtended RSS
// (WXR 1.2) export file suitable for the stock WordPress importer.
package wxr

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/galangw/article-pipeline/internal/article"
	"github.com/galangw/article-pipeline/internal/normalize"
)

const (
	excerptNS = "http://wordpress.org/export/1.2/excerpt/"
	contentNS = "http://purl.org/rss/1.0/modules/content/"
	wfwNS     = "http://wellformedweb.org/CommentAPI/"
	dcNS      = "http://purl.org/dc/elements/1.1/"
	wpNS      = "http://wordpress.org/export/1.2/"

	pubDateLayout   = "Mon, 02 Jan 2006 15:04:05"
	postDateLayout  = "2006-01-02 15:04:05"
	defaultPostBase = 40670
)

// banner precedes the feed element, matching the comment block WordPress
// itself emits on export.
var banner = []string{
	"This is a WordPress eXtended RSS file generated by WordPress as an export of your site.",
	"It contains information about your site's posts, pages, comments, categories, and other content.",
	"You may use this file to transfer that content from one site to another.",
	"This file is not intended to serve as a complete backup of your site.",
	"To import this information into a WordPress site follow these steps:",
	"1. Log in to that site as an administrator.",
	"2. Go to Tools: Import in the WordPress admin panel.",
	"3. Install the \"WordPress\" importer from the list.",
	"4. Activate & Run Importer.",
	"5. Upload this file using the form provided on that page.",
	"6. You will first be asked to map the authors in this export file to users on the site.",
	"7. WordPress will then import each of the posts, pages, comments, categories, etc. contained in this file into your site.",
}

var (
	imgTag      = regexp.MustCompile(`(?i)<img[^>]*>`)
	h1Tag       = regexp.MustCompile(`(?is)<h1[^>]*>.*?</h1>`)
	altAttr     = regexp.MustCompile(`(?is)alt=(["'])(.*?)(["'])`)
	sourceScrub = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\s*@\s*\d{4}\s*trstdly\.com`),
		regexp.MustCompile(`(?i)\s*©\s*\d{4}\s*trstdly\.com`),
		regexp.MustCompile(`(?i)trstdly\.com`),
	}
	spaceRun    = regexp.MustCompile(`\s+`)
	nonSlugRune = regexp.MustCompile(`[^a-z0-9\s\-]`)
	hyphenRun   = regexp.MustCompile(`-+`)
)

// Config shapes the channel boilerplate and post numbering.
type Config struct {
	BasePostID         int
	ChannelTitle       string
	ChannelLink        string
	ChannelDescription string
	AuthorLogin        string
	AuthorEmail        string
	Category           string
}

// Exporter turns records into a WXR feed.
type Exporter struct {
	cfg    Config
	logger *zap.Logger
}

// New builds an Exporter. Zero config fields fall back to usable
// defaults so a partially filled config still yields a valid feed.
func New(cfg Config, logger *zap.Logger) *Exporter {
	if cfg.BasePostID <= 0 {
		cfg.BasePostID = defaultPostBase
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{cfg: cfg, logger: logger}
}

// Write renders records in order as a complete WXR document. Post IDs
// are assigned sequentially from the configured base, so the same input
// order always yields the same IDs. now stamps the channel pubDate.
func (e *Exporter) Write(w io.Writer, records []article.Record, now time.Time) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, line := range banner {
		if _, err := fmt.Fprintf(w, "<!--%s-->\n", line); err != nil {
			return fmt.Errorf("write banner: %w", err)
		}
	}

	items := make([]item, 0, len(records))
	for i, rec := range records {
		items = append(items, e.buildItem(rec, e.cfg.BasePostID+i))
	}

	doc := feed{
		Version:   "2.0",
		ExcerptNS: excerptNS,
		ContentNS: contentNS,
		WfwNS:     wfwNS,
		DcNS:      dcNS,
		WpNS:      wpNS,
		Channel: channel{
			Title:       cdata{e.cfg.ChannelTitle},
			Link:        cdata{e.cfg.ChannelLink},
			Description: cdata{e.cfg.ChannelDescription},
			PubDate:     now.UTC().Format(pubDateLayout) + " GMT",
			Language:    "en-US",
			WXRVersion:  "1.2",
			BaseSiteURL: cdata{e.cfg.ChannelLink},
			BaseBlogURL: cdata{e.cfg.ChannelLink},
			Author: author{
				ID:          1,
				Login:       cdata{e.cfg.AuthorLogin},
				Email:       cdata{e.cfg.AuthorEmail},
				DisplayName: cdata{e.cfg.AuthorLogin},
			},
			Category: category{
				TermID:   1,
				Nicename: cdata{e.cfg.Category},
				Name:     cdata{e.cfg.Category},
			},
			Generator: cdata{"https://wordpress.org/?v=6.7.2"},
			Items:     items,
		},
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode feed: %w", err)
	}
	e.logger.Info("feed written", zap.Int("items", len(items)))
	return nil
}

func (e *Exporter) buildItem(rec article.Record, postID int) item {
	title := firstKeyword(rec.MetaKeywords)
	if title == "" {
		title = rec.Title
	}
	pubDate, postDate, modified := itemDates(rec)

	return item{
		Title:           cdata{title},
		Link:            cdata{rec.URL},
		PubDate:         pubDate,
		Creator:         cdata{e.cfg.AuthorLogin},
		GUID:            guid{IsPermaLink: "false", Value: rec.URL},
		Content:         cdata{ItemContent(rec)},
		PostID:          postID,
		PostDate:        postDate,
		PostDateGMT:     postDate,
		PostModified:    modified,
		PostModifiedGMT: modified,
		CommentStatus:   "closed",
		PingStatus:      "closed",
		PostName:        cdata{Slug(title)},
		Status:          "publish",
		PostType:        "post",
		Meta: []postmeta{
			{Key: cdata{"_pingme"}, Value: cdata{"1"}},
			{Key: cdata{"_encloseme"}, Value: cdata{"1"}},
		},
		Categories: []itemCategory{
			{Domain: "language", Nicename: "en", Value: "English"},
			{Domain: "category", Nicename: e.cfg.Category, Value: e.cfg.Category},
		},
	}
}

func itemDates(rec article.Record) (pubDate, postDate, modified string) {
	published, modifiedRaw := "", ""
	if rec.Structured != nil {
		published = rec.Structured.DatePublished
		modifiedRaw = rec.Structured.DateModified
	}
	return formatPubDate(published), formatPostDate(published), formatPostDate(modifiedRaw)
}

// ItemContent reassembles stored article content for a WXR post body:
// the first image gains an aligncenter class, the page meta directives
// follow the heading, and source-site references are scrubbed from the
// remainder.
func ItemContent(rec article.Record) string {
	content := clampAltAttributes(rec.Content)

	firstImage := imgTag.FindString(content)
	heading := h1Tag.FindString(content)
	remaining := content
	if firstImage != "" {
		remaining = strings.TrimSpace(strings.Replace(remaining, firstImage, "", 1))
	}
	if heading != "" {
		remaining = strings.TrimSpace(strings.Replace(remaining, heading, "", 1))
	}

	var b strings.Builder
	if firstImage != "" {
		b.WriteString(strings.Replace(firstImage, "<img ", `<img class="aligncenter" `, 1))
		b.WriteString("\n\n")
	}
	if heading != "" {
		b.WriteString(heading)
		b.WriteString("\n\n")
	}
	if rec.MetaDescription != "" {
		b.WriteString(`<meta name="description" content="` + rec.MetaDescription + "\">\n\n")
	}
	if len(rec.MetaTags) > 0 {
		b.WriteString(`<meta name="tags" content="` + strings.Join(rec.MetaTags, ", ") + "\">\n\n")
	}
	if len(rec.MetaKeywords) > 0 {
		b.WriteString(`<meta name="keywords" content="` + strings.Join(rec.MetaKeywords, ", ") + "\">\n\n")
	}
	if remaining != "" {
		b.WriteString(scrubSourceReferences(remaining))
	}
	return b.String()
}

// scrubSourceReferences removes credit lines pointing at the source
// site, then collapses the whitespace the removals leave behind.
func scrubSourceReferences(content string) string {
	for _, re := range sourceScrub {
		content = re.ReplaceAllString(content, "")
	}
	return strings.TrimSpace(spaceRun.ReplaceAllString(content, " "))
}

// clampAltAttributes re-applies the alt length cap on stored markup;
// rows written before the cap existed may still exceed it.
func clampAltAttributes(content string) string {
	return altAttr.ReplaceAllStringFunc(content, func(match string) string {
		parts := altAttr.FindStringSubmatch(match)
		if parts == nil {
			return match
		}
		return "alt=" + parts[1] + normalize.TruncateSentences(parts[2], normalize.MaxAltRunes) + parts[3]
	})
}

// Slug derives a URL-safe post name from a title.
func Slug(title string) string {
	slug := nonSlugRune.ReplaceAllString(strings.ToLower(title), "")
	slug = spaceRun.ReplaceAllString(slug, "-")
	slug = hyphenRun.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func firstKeyword(keywords []string) string {
	if len(keywords) == 0 {
		return ""
	}
	return strings.TrimSpace(keywords[0])
}

// formatPubDate renders an RFC 3339 timestamp in the RSS pubDate shape.
// Unparseable input passes through unchanged rather than dropping the
// element.
func formatPubDate(raw string) string {
	t, err := parseSourceDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(pubDateLayout) + " GMT"
}

func formatPostDate(raw string) string {
	t, err := parseSourceDate(raw)
	if err != nil {
		return raw
	}
	return t.Format(postDateLayout)
}

func parseSourceDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}
