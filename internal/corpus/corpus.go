// Package corpus stages the working set of article text files: fetching a
// sample from a public dataset, tracking it in a manifest, and reading article
// bodies back for downstream steps.
package corpus

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/daniela/corpus-insights/internal/types"
)

// ManifestFile is the manifest filename inside the staging directory.
const ManifestFile = "manifest.json"

// titleMaxLen bounds the display title recorded in the manifest.
const titleMaxLen = 120

// Manifest records what was fetched into a staging directory.
type Manifest struct {
	Dataset   string          `json:"dataset"`
	FetchedAt time.Time       `json:"fetched_at"`
	Articles  []types.Article `json:"articles"`
}

// SaveManifest writes the manifest into its staging directory.
func SaveManifest(dir string, m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}

	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// LoadManifest reads the manifest from a staging directory.
func LoadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &m, nil
}

// ReadArticleText returns the body of a staged article.
func ReadArticleText(article types.Article) (string, error) {
	data, err := os.ReadFile(article.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read article %s: %w", article.ID, err)
	}
	return string(data), nil
}

// stageFile records a downloaded file as an article: derives the ID and title
// and captures the on-disk size.
func stageFile(path, sourceName string) (types.Article, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.Article{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	article := types.Article{
		ID:   types.ArticleIDFromFilename(sourceName),
		Path: path,
		Size: info.Size(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.Article{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	article.Title = types.TitleFromText(string(data), titleMaxLen)

	return article, nil
}
