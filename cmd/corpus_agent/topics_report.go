package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/daniela/corpus-insights/internal/objectstore"
	"github.com/daniela/corpus-insights/internal/pipeline"
	"github.com/daniela/corpus-insights/internal/results"
	"github.com/daniela/corpus-insights/internal/schemas"
	"github.com/daniela/corpus-insights/internal/topics"
)

var topicsReportCmd = &cobra.Command{
	Use:   "topics-report",
	Short: "Download a finished job's output and build the topic report",
	Long:  "Download the output archive of a completed topic-detection job, join its term and document tables on topic ID, and write the report as CSV and JSON.",
	RunE:  runTopicsReport,
}

var (
	reportJobID    string
	reportRegion   string
	reportOutDir   string
	reportTopTerms int
)

func init() {
	topicsReportCmd.Flags().StringVar(&reportJobID, "job-id", "", "Topics job ID (required)")
	topicsReportCmd.Flags().StringVar(&reportRegion, "region", "us-east-1", "AWS region")
	topicsReportCmd.Flags().StringVarP(&reportOutDir, "out-dir", "o", "workspace", "Directory to write the report files in")
	topicsReportCmd.Flags().IntVar(&reportTopTerms, "top-terms", 5, "Number of top terms to keep per topic")
	_ = topicsReportCmd.MarkFlagRequired("job-id")

	rootCmd.AddCommand(topicsReportCmd)
}

func runTopicsReport(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	client, err := topics.NewClient(ctx, reportRegion)
	if err != nil {
		return fmt.Errorf("failed to create topics client: %w", err)
	}

	status, err := client.Describe(ctx, reportJobID)
	if err != nil {
		return fmt.Errorf("failed to describe topics job: %w", err)
	}
	if status.Status != topics.StatusCompleted {
		return fmt.Errorf("job %s is %s, not completed", reportJobID, status.Status)
	}
	if status.OutputS3URI == "" {
		return fmt.Errorf("job %s reports no output location", reportJobID)
	}

	bucket, key, err := objectstore.ParseURI(status.OutputS3URI)
	if err != nil {
		return fmt.Errorf("invalid output location: %w", err)
	}

	store, err := objectstore.New(ctx, objectstore.Config{Bucket: bucket, Region: reportRegion})
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	archive, err := store.Download(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to download job output: %w", err)
	}
	defer archive.Close()

	output, err := topics.ParseOutputArchive(archive)
	if err != nil {
		return fmt.Errorf("failed to parse job output: %w", err)
	}

	report := topics.BuildReport(reportJobID, output, reportTopTerms)
	results.RenderTopicReport(os.Stdout, report)

	if err := os.MkdirAll(reportOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	csvPath := filepath.Join(reportOutDir, pipeline.ReportCSVFile)
	if err := results.WriteReportCSV(csvPath, report); err != nil {
		return fmt.Errorf("failed to write CSV report: %w", err)
	}
	jsonPath := filepath.Join(reportOutDir, pipeline.ReportJSONFile)
	if err := results.WriteReportJSON(jsonPath, report); err != nil {
		return fmt.Errorf("failed to write JSON report: %w", err)
	}

	// Validate against schema (if schema file exists)
	schemaPath := schemas.ResolveSchemaPath("schemas/topic_report.schema.json")
	if schemaPath != "" {
		if err := schemas.ValidateJSON(schemaPath, jsonPath); err != nil {
			var validationErr *schemas.ValidationError
			if errors.As(err, &validationErr) {
				return fmt.Errorf("generated report does not validate against schema: %w", err)
			}
			_, _ = fmt.Fprintf(os.Stderr, "Warning: Could not validate report against schema: %v\n", err)
		}
	}

	_, _ = fmt.Fprintf(os.Stdout, "Report written to %s and %s\n", csvPath, jsonPath)
	return nil
}
