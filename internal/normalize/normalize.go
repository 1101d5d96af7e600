// Package normalize transforms a raw article content container into the
// clean, line-oriented text form persisted for each article.
//
// The pipeline is strictly tree-based: every transform mutates a private
// copy of the parsed subtree and serialization happens exactly once at the
// end. Order matters; each step consumes the previous step's output.
package normalize

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/galangw/article-pipeline/internal/article"
	"github.com/galangw/article-pipeline/internal/metrics"
)

// noiseSelectors match structural roles that never belong in article
// content: navigation, share widgets, ads, banners, embedded code, and
// elements whose text is already captured as record metadata.
var noiseSelectors = []string{
	`nav[aria-label="breadcrumb"]`,
	".article-share",
	".gpt-ads",
	".banner",
	"script",
	"style",
	"h1.article-title",
	"p.article-sinopsis",
	"time",
	".article-tag",
	".flex.flex-wrap.justify-between",
}

// stripAllSelector lists plain structural tags that keep no attributes.
const stripAllSelector = "li, span, h1, h2, h3, h4, h5, h6, p, ol, ul, blockquote, figcaption"

// MaxAltRunes caps image alt text length before serialization.
const MaxAltRunes = 250

// Normalizer runs the content transform pipeline.
type Normalizer struct {
	rewriter article.ImageRewriter
	logger   *zap.Logger
}

// New builds a Normalizer. rewriter may be nil, in which case the image
// URL rewriting step is skipped entirely.
func New(rewriter article.ImageRewriter, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{rewriter: rewriter, logger: logger}
}

// Normalize transforms the raw content container into its serialized text
// form. A nil or empty selection yields an empty string. Normalize never
// fails: unexpected substructure is dropped and per-image rewrite errors
// fall back to the original URL.
func (n *Normalizer) Normalize(ctx context.Context, container *goquery.Selection) string {
	if container == nil || container.Length() == 0 {
		return ""
	}

	root := cloneTree(container.Get(0))
	doc := goquery.NewDocumentFromNode(root)

	n.removeNoise(doc)
	n.restructureFigures(doc)
	n.stripAttributes(doc)
	n.flattenWrappers(root)
	n.rewriteImages(ctx, doc)
	n.clampAltText(doc)

	return serialize(root)
}

func (n *Normalizer) removeNoise(doc *goquery.Document) {
	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}
}

// restructureFigures replaces each figure with its image (and, past the
// first, its captions). The index counts only figures that contain an
// image: the first of those becomes the caption-less cover image.
func (n *Normalizer) restructureFigures(doc *goquery.Document) {
	imgIdx := 0
	for _, fig := range doc.Find("figure").Nodes {
		img := firstDescendant(fig, atom.Img)
		if img == nil {
			detach(fig)
			continue
		}

		replacement := []*html.Node{newImageNode(attrValue(img, "src"), attrValue(img, "alt"))}
		if imgIdx > 0 {
			for _, fc := range descendants(fig, atom.Figcaption) {
				clean := &html.Node{
					Type:     html.ElementNode,
					DataAtom: atom.Figcaption,
					Data:     "figcaption",
				}
				adoptChildren(clean, fc)
				replacement = append(replacement, clean)
			}
		}

		for _, node := range replacement {
			fig.Parent.InsertBefore(node, fig)
		}
		detach(fig)
		imgIdx++
	}
}

// stripAttributes reduces every element to its single URL-bearing
// attribute (iframe src, anchor href, image src+alt) or to none at all.
func (n *Normalizer) stripAttributes(doc *goquery.Document) {
	for _, node := range doc.Find("iframe").Nodes {
		keepAttrs(node, "src")
	}
	for _, node := range doc.Find("a").Nodes {
		keepAttrs(node, "href")
	}
	for _, node := range doc.Find("img").Nodes {
		src := attrValue(node, "src")
		alt := attrValue(node, "alt")
		node.Attr = []html.Attribute{
			{Key: "src", Val: src},
			{Key: "alt", Val: alt},
		}
	}
	for _, node := range doc.Find(stripAllSelector).Nodes {
		node.Attr = nil
	}
}

// flattenWrappers unwraps generic div containers nested inside the body,
// splicing their children into the parent position until none remain.
func (n *Normalizer) flattenWrappers(root *html.Node) {
	for {
		div := firstDescendant(root, atom.Div)
		if div == nil {
			return
		}
		unwrap(div)
	}
}

// rewriteImages passes every image src through the external rewrite
// capability. Failures keep the original src and never abort the rest of
// the fragment.
func (n *Normalizer) rewriteImages(ctx context.Context, doc *goquery.Document) {
	if n.rewriter == nil {
		return
	}
	for _, node := range doc.Find("img").Nodes {
		src := attrValue(node, "src")
		if src == "" {
			continue
		}
		rewritten, err := n.rewriter.Rewrite(ctx, src)
		if err != nil {
			metrics.ImageRewriteFailures.Inc()
			n.logger.Warn("image rewrite failed, keeping original src",
				zap.String("src", src),
				zap.Error(err),
			)
			continue
		}
		setAttr(node, "src", rewritten)
	}
}

// clampAltText truncates over-long alt attributes on the tree, before
// serialization, preferring whole-sentence cuts.
func (n *Normalizer) clampAltText(doc *goquery.Document) {
	for _, node := range doc.Find("[alt]").Nodes {
		alt := attrValue(node, "alt")
		if clamped := TruncateSentences(alt, MaxAltRunes); clamped != alt {
			setAttr(node, "alt", clamped)
		}
	}
}

// TruncateSentences shortens text to at most limit runes by dropping
// trailing sentences. If a single sentence already exceeds the limit the
// text is cut hard at the limit.
func TruncateSentences(text string, limit int) string {
	if len([]rune(text)) <= limit {
		return text
	}
	truncated := text
	for len([]rune(truncated)) > limit {
		// Search excludes the final rune so a trailing terminator
		// cannot stall the loop.
		cut := strings.LastIndexAny(truncated[:len(truncated)-1], ".!?")
		if cut == -1 {
			break
		}
		truncated = strings.TrimSpace(truncated[:cut+1])
	}
	if len([]rune(truncated)) > limit {
		return string([]rune(text)[:limit])
	}
	return truncated
}
