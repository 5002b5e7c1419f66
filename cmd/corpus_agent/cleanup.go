package main

import (
	"context"
	"fmt"
	"os"

	"github.com/daniela/corpus-insights/internal/objectstore"
	"github.com/daniela/corpus-insights/internal/observability"
	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete uploaded objects from the working bucket",
	Long:  "Delete every object under the configured prefix in the working bucket, including job output.",
	RunE:  runCleanup,
}

var (
	cleanupBucket string
	cleanupRegion string
	cleanupPrefix string
)

func init() {
	cleanupCmd.Flags().StringVarP(&cleanupBucket, "bucket", "b", "", "Working S3 bucket (required)")
	cleanupCmd.Flags().StringVar(&cleanupRegion, "region", "us-east-1", "AWS region")
	cleanupCmd.Flags().StringVar(&cleanupPrefix, "prefix", "corpus-insights", "Key prefix to delete")
	_ = cleanupCmd.MarkFlagRequired("bucket")

	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	store, err := objectstore.New(ctx, objectstore.Config{Bucket: cleanupBucket, Region: cleanupRegion})
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	deleted, err := store.DeletePrefix(ctx, cleanupPrefix)
	if err != nil {
		return fmt.Errorf("failed to delete objects: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintCleanup(deleted)
	return nil
}
