package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daniela/corpus-insights/internal/corpus"
	"github.com/daniela/corpus-insights/internal/objectstore"
	"github.com/daniela/corpus-insights/internal/pipeline"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload staged articles to the working bucket",
	Long:  "Upload every article listed in the staging manifest to the working bucket under <prefix>/input/, where the topic-modelling job reads them.",
	RunE:  runUpload,
}

var (
	uploadStagingDir string
	uploadBucket     string
	uploadRegion     string
	uploadPrefix     string
)

func init() {
	uploadCmd.Flags().StringVar(&uploadStagingDir, "staging-dir", "workspace", "Local staging directory holding the manifest")
	uploadCmd.Flags().StringVarP(&uploadBucket, "bucket", "b", "", "Working S3 bucket (required)")
	uploadCmd.Flags().StringVar(&uploadRegion, "region", "us-east-1", "AWS region")
	uploadCmd.Flags().StringVar(&uploadPrefix, "prefix", "corpus-insights", "Key prefix inside the bucket")
	_ = uploadCmd.MarkFlagRequired("bucket")

	rootCmd.AddCommand(uploadCmd)
}

func runUpload(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	manifest, err := corpus.LoadManifest(uploadStagingDir)
	if err != nil {
		return fmt.Errorf("failed to load manifest (run fetch-corpus first): %w", err)
	}

	store, err := objectstore.New(ctx, objectstore.Config{Bucket: uploadBucket, Region: uploadRegion})
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	for _, article := range manifest.Articles {
		key := objectstore.JoinKey(uploadPrefix, pipeline.InputKeyPrefix, filepath.Base(article.Path))
		if err := store.UploadFile(ctx, key, article.Path); err != nil {
			return fmt.Errorf("failed to upload %s: %w", article.ID, err)
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "Uploaded %d articles to %s\n",
		len(manifest.Articles), store.URI(objectstore.JoinKey(uploadPrefix, pipeline.InputKeyPrefix)))
	return nil
}
