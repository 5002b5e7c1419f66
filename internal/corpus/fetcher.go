package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/daniela/corpus-insights/internal/fetch"
	"github.com/daniela/corpus-insights/internal/objectstore"
)

// textSuffix filters dataset entries to plain-text articles.
const textSuffix = ".txt"

// FetchHTTP downloads up to sampleSize article files linked from an HTML index
// page into dir and writes the manifest. A sampleSize of zero or less takes
// every link.
func FetchHTTP(ctx context.Context, indexURL, dir string, sampleSize int) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir %s: %w", dir, err)
	}

	page, err := fetch.URL(ctx, indexURL, nil)
	if err != nil {
		return nil, err
	}

	links, err := fetch.ExtractLinks(string(page.Body), indexURL, textSuffix)
	if err != nil {
		return nil, err
	}
	if len(links) == 0 {
		return nil, fmt.Errorf("no %s links found at %s", textSuffix, indexURL)
	}
	if sampleSize > 0 && len(links) > sampleSize {
		links = links[:sampleSize]
	}

	manifest := &Manifest{Dataset: indexURL, FetchedAt: time.Now().UTC()}
	for _, link := range links {
		name := filepath.Base(link)
		path := filepath.Join(dir, name)

		res, err := fetch.URL(ctx, link, nil)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, res.Body, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}

		article, err := stageFile(path, name)
		if err != nil {
			return nil, err
		}
		manifest.Articles = append(manifest.Articles, article)
	}

	if err := SaveManifest(dir, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FetchS3 downloads up to sampleSize article objects under a prefix of a
// public bucket into dir and writes the manifest. The store is expected to be
// configured with anonymous credentials for public datasets.
func FetchS3(ctx context.Context, store *objectstore.Store, prefix, dir string, sampleSize int) (*Manifest, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create staging dir %s: %w", dir, err)
	}

	keys, err := store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var selected []string
	for _, key := range keys {
		if strings.HasSuffix(strings.ToLower(key), textSuffix) {
			selected = append(selected, key)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no %s objects found under %s", textSuffix, store.URI(prefix))
	}
	if sampleSize > 0 && len(selected) > sampleSize {
		selected = selected[:sampleSize]
	}

	manifest := &Manifest{Dataset: store.URI(prefix), FetchedAt: time.Now().UTC()}
	for _, key := range selected {
		name := filepath.Base(key)
		path := filepath.Join(dir, name)

		if err := store.DownloadTo(ctx, key, path); err != nil {
			return nil, err
		}

		article, err := stageFile(path, name)
		if err != nil {
			return nil, err
		}
		manifest.Articles = append(manifest.Articles, article)
	}

	if err := SaveManifest(dir, manifest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Fetch dispatches on the dataset source: s3:// URIs go through the object
// store with anonymous credentials, everything else is treated as an HTTP
// index page.
func Fetch(ctx context.Context, dataset, region, dir string, sampleSize int) (*Manifest, error) {
	if strings.HasPrefix(dataset, "s3://") {
		bucket, prefix, err := objectstore.ParseURI(dataset)
		if err != nil {
			return nil, err
		}
		store, err := objectstore.New(ctx, objectstore.Config{
			Bucket:    bucket,
			Region:    region,
			Anonymous: true,
		})
		if err != nil {
			return nil, err
		}
		return FetchS3(ctx, store, prefix, dir, sampleSize)
	}
	return FetchHTTP(ctx, dataset, dir, sampleSize)
}
