package corpus

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daniela/corpus-insights/internal/types"
)

func TestSaveAndLoadManifest(t *testing.T) {
	dir := t.TempDir()
	m := &Manifest{
		Dataset:   "https://example.com/corpus/",
		FetchedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Articles: []types.Article{
			{ID: "paper-a", Title: "A Study", Path: filepath.Join(dir, "paper-a.txt"), Size: 42},
		},
	}

	require.NoError(t, SaveManifest(dir, m))

	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, m.Dataset, loaded.Dataset)
	assert.True(t, m.FetchedAt.Equal(loaded.FetchedAt))
	require.Len(t, loaded.Articles, 1)
	assert.Equal(t, "paper-a", loaded.Articles[0].ID)
}

func TestLoadManifest_Missing(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), ManifestFile)
}

func TestReadArticleText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper-a.txt")
	require.NoError(t, os.WriteFile(path, []byte("The body.\n"), 0644))

	text, err := ReadArticleText(types.Article{ID: "paper-a", Path: path})
	require.NoError(t, err)
	assert.Equal(t, "The body.\n", text)

	_, err = ReadArticleText(types.Article{ID: "gone", Path: filepath.Join(dir, "gone.txt")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gone")
}

func TestStageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Deep Learning Survey.txt")
	body := "A Survey of Deep Learning\n\nAbstract goes here.\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	article, err := stageFile(path, "Deep Learning Survey.txt")
	require.NoError(t, err)
	assert.Equal(t, "Deep_Learning_Survey", article.ID)
	assert.Equal(t, "A Survey of Deep Learning", article.Title)
	assert.Equal(t, int64(len(body)), article.Size)
	assert.Equal(t, path, article.Path)
}
