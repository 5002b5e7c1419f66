// Package types defines the shared domain types for the corpus insights pipeline.
package types

import (
	"path/filepath"
	"strings"
)

// Article is a single text document in the working corpus.
type Article struct {
	ID    string `json:"id"`              // derived from the source filename
	Title string `json:"title,omitempty"` // first non-empty line of the file, if any
	Path  string `json:"path"`            // local path in the staging directory
	Size  int64  `json:"size"`            // size in bytes
}

// ArticleIDFromFilename derives a stable article ID from a source filename.
// The extension is stripped and path separators and spaces are normalized so
// the ID is safe to use as an S3 key segment and a join key in result tables.
func ArticleIDFromFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.TrimSpace(base)
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_")
	return replacer.Replace(base)
}

// TitleFromText returns a display title for an article body: the first
// non-empty line, truncated to maxLen runes.
func TitleFromText(text string, maxLen int) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > maxLen {
			return string(runes[:maxLen-3]) + "..."
		}
		return line
	}
	return ""
}
