// Package sink writes rendered article documents to the filesystem.
package sink

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FSSink saves one HTML document per article URL under a root directory.
type FSSink struct {
	root   string
	logger *zap.Logger
}

// New returns a sink rooted at dir.
func New(root string, logger *zap.Logger) (*FSSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create sink dir %s: %w", root, err)
	}
	return &FSSink{root: root, logger: logger}, nil
}

// Save writes the document for a URL and returns the file path. The
// filename is derived deterministically from the URL's path component.
func (s *FSSink) Save(ctx context.Context, rawURL string, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("context canceled: %w", err)
	}
	name, err := Filename(rawURL)
	if err != nil {
		return "", err
	}
	target := filepath.Join(s.root, name)
	if err := os.WriteFile(target, []byte(content), 0o600); err != nil {
		return "", fmt.Errorf("write html to %s: %w", target, err)
	}
	s.logger.Debug("saved article file",
		zap.String("url", rawURL),
		zap.String("path", target),
	)
	return target, nil
}

// Filename maps a URL to its output filename: path separators become
// underscores, dots become dashes, and the .html suffix is enforced.
func Filename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	name := strings.ReplaceAll(u.Path, "/", "_")
	name = strings.ReplaceAll(name, ".", "-")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "index"
	}
	if !strings.HasSuffix(name, ".html") {
		name += ".html"
	}
	return name, nil
}
