package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/daniela/corpus-insights/internal/config"
	"github.com/daniela/corpus-insights/internal/corpus"
	"github.com/daniela/corpus-insights/internal/objectstore"
	"github.com/daniela/corpus-insights/internal/pipeline"
	"github.com/daniela/corpus-insights/internal/results"
	"github.com/daniela/corpus-insights/internal/summarize"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Summarize every staged article",
	Long:  "Summarize every article in the staging manifest through the configured LLM backend and write the summaries as JSON.",
	RunE:  runSummarize,
}

var (
	sumStagingDir   string
	sumBackend      string
	sumAPIKey       string
	sumEndpointName string
	sumBucket       string
	sumRegion       string
	sumPrefix       string
	sumMaxWords     int
	sumConcurrency  int
)

func init() {
	summarizeCmd.Flags().StringVar(&sumStagingDir, "staging-dir", "workspace", "Local staging directory holding the manifest")
	addSummaryFlags(summarizeCmd.Flags())
	summarizeCmd.Flags().StringVarP(&sumBucket, "bucket", "b", "", "Working S3 bucket (required for the endpoint backend)")
	summarizeCmd.Flags().StringVar(&sumRegion, "region", "us-east-1", "AWS region")
	summarizeCmd.Flags().StringVar(&sumPrefix, "prefix", "corpus-insights", "Key prefix inside the bucket")

	rootCmd.AddCommand(summarizeCmd)
}

// addSummaryFlags registers the backend selection flags shared by
// summarize and run.
func addSummaryFlags(flags *pflag.FlagSet) {
	flags.StringVar(&sumBackend, "backend", config.BackendGemini, "Summary backend: gemini or endpoint")
	flags.StringVar(&sumAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	flags.StringVar(&sumEndpointName, "endpoint-name", "", "Hosted endpoint name (required for the endpoint backend)")
	flags.IntVar(&sumMaxWords, "max-words", summarize.DefaultMaxWords, "Maximum words per summary")
	flags.IntVar(&sumConcurrency, "concurrency", summarize.DefaultConcurrency, "Concurrent summarization workers")
}

// buildSummarizer constructs the configured backend.
func buildSummarizer(ctx context.Context, cfg config.Config, prefix string) (summarize.Summarizer, error) {
	switch cfg.SummaryBackend {
	case "", config.BackendGemini:
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
		}
		return summarize.NewGemini(ctx, apiKey, cfg.MaxWords)

	case config.BackendEndpoint:
		if cfg.EndpointName == "" {
			return nil, fmt.Errorf("--endpoint-name is required for the endpoint backend")
		}
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("--bucket is required for the endpoint backend")
		}
		return summarize.NewAsyncEndpoint(ctx, summarize.AsyncEndpointConfig{
			Region:       cfg.Region,
			EndpointName: cfg.EndpointName,
			Bucket:       cfg.Bucket,
			InputPrefix:  objectstore.JoinKey(prefix, "async-inference", "input"),
			MaxWords:     cfg.MaxWords,
			Wait: objectstore.WaitConfig{
				Clock:       clockwork.NewRealClock(),
				Interval:    5 * time.Second,
				MaxAttempts: 60,
			},
		})

	default:
		return nil, fmt.Errorf("unknown summary backend: %s", cfg.SummaryBackend)
	}
}

func runSummarize(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	manifest, err := corpus.LoadManifest(sumStagingDir)
	if err != nil {
		return fmt.Errorf("failed to load manifest (run fetch-corpus first): %w", err)
	}

	cfg := config.Config{
		Bucket:         sumBucket,
		Region:         sumRegion,
		SummaryBackend: sumBackend,
		EndpointName:   sumEndpointName,
		APIKey:         sumAPIKey,
		MaxWords:       sumMaxWords,
	}
	summarizer, err := buildSummarizer(ctx, cfg, sumPrefix)
	if err != nil {
		return err
	}
	defer summarizer.Close()

	summaries, err := summarize.SummarizeAll(ctx, summarizer, manifest.Articles, corpus.ReadArticleText, summarize.BatchOptions{
		Concurrency: sumConcurrency,
	})
	if err != nil {
		return fmt.Errorf("summarization failed: %w", err)
	}

	results.RenderSummaries(os.Stdout, summaries)

	outPath := filepath.Join(sumStagingDir, pipeline.SummariesJSONFile)
	if err := results.WriteSummariesJSON(outPath, summaries); err != nil {
		return fmt.Errorf("failed to write summaries: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Wrote %d summaries to %s\n", len(summaries), outPath)
	return nil
}
