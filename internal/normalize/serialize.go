package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// wrapperTags matches whole-document wrapper tags that can leak in when a
// subtree is serialized outside its original document.
var wrapperTags = regexp.MustCompile(`</?(?:html|head|body)[^>]*>`)

// excessBlanks matches runs of blank lines beyond a single separator.
var excessBlanks = regexp.MustCompile(`\n{3,}`)

// serialize renders the normalized tree to its line-oriented text form:
// one top-level block per line, blank-line separators per blankAfter, and
// at most one blank line between any two blocks.
func serialize(root *html.Node) string {
	var lines []string
	for child := root.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case html.TextNode:
			if text := strings.TrimSpace(child.Data); text != "" {
				lines = append(lines, collapseWhitespace(text))
			}
		case html.ElementNode:
			lines = append(lines, renderLine(child))
		}
	}

	out := make([]string, 0, len(lines)*2)
	for i, line := range lines {
		out = append(out, line)
		next := ""
		if i+1 < len(lines) {
			next = lines[i+1]
		}
		if blankAfter(line, next) {
			out = append(out, "")
		}
	}

	result := strings.Join(out, "\n")
	result = wrapperTags.ReplaceAllString(result, "")
	result = excessBlanks.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// blankAfter is the explicit separator rule table. A blank line follows
// image, caption, level-2 heading, embed, emptied-span, and paragraph
// lines; the single exception is an image line immediately followed by
// another image line. A bare text run gets a separator only before a
// block that opens a new visual unit.
func blankAfter(line, next string) bool {
	switch {
	case isImageLine(line):
		return !isImageLine(next)
	case strings.HasPrefix(line, "<figcaption"):
		return true
	case strings.HasPrefix(line, "<h2"):
		return true
	case strings.HasPrefix(line, "<iframe"):
		return true
	case strings.HasPrefix(line, "<span></span>"):
		return true
	case strings.HasPrefix(line, "<p>") && strings.HasSuffix(line, "</p>"):
		return true
	case !strings.HasPrefix(line, "<"):
		return isImageLine(next) ||
			strings.HasPrefix(next, "<span></span>") ||
			strings.HasPrefix(next, "<h2") ||
			strings.HasPrefix(next, "<iframe")
	}
	return false
}

func isImageLine(line string) bool {
	return strings.HasPrefix(line, "<img ")
}

// renderLine serializes one block node onto a single line.
func renderLine(n *html.Node) string {
	var sb strings.Builder
	// Render only fails on unsupported node types, which the transform
	// pipeline never produces at the top level.
	_ = html.Render(&sb, n)
	return collapseWhitespace(sb.String())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
