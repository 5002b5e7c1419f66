package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/daniela/corpus-insights/internal/config"
	"github.com/daniela/corpus-insights/internal/pipeline"
	"github.com/daniela/corpus-insights/internal/summarize"
	"github.com/daniela/corpus-insights/internal/topics"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full corpus insights pipeline end-to-end",
	Long: `Orchestrates the entire pipeline: fetch -> upload -> submit -> wait -> report -> summarize -> cleanup.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath      string
	runDataset         string
	runSampleSize      int
	runStagingDir      string
	runBucket          string
	runRegion          string
	runPrefix          string
	runRoleARN         string
	runNumTopics       int
	runPollInterval    int
	runPollMaxAttempts int
	runSkipSummaries   bool
	runKeepWorkspace   bool
	runVerbose         bool
	runDatabaseURL     string
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runDataset, "dataset", "d", "", "HTTP index URL or s3:// prefix of the public dataset")
	runCommand.Flags().IntVar(&runSampleSize, "sample-size", 0, "Fetch only the first N articles (0 = all)")
	runCommand.Flags().StringVar(&runStagingDir, "staging-dir", "", "Local staging directory")
	runCommand.Flags().StringVarP(&runBucket, "bucket", "b", "", "Working S3 bucket")
	runCommand.Flags().StringVar(&runRegion, "region", "", "AWS region")
	runCommand.Flags().StringVar(&runPrefix, "prefix", "", "Key prefix inside the bucket")
	runCommand.Flags().StringVar(&runRoleARN, "role-arn", "", "IAM role ARN for the topic-detection job")
	runCommand.Flags().IntVar(&runNumTopics, "num-topics", 0, "Number of topics to detect (1-100)")
	runCommand.Flags().IntVar(&runPollInterval, "poll-interval", 0, "Seconds between job status checks")
	runCommand.Flags().IntVar(&runPollMaxAttempts, "poll-max-attempts", 0, "Maximum job status checks before giving up")
	runCommand.Flags().BoolVar(&runSkipSummaries, "skip-summaries", false, "Skip the summarization step")
	runCommand.Flags().BoolVar(&runKeepWorkspace, "keep-workspace", false, "Keep uploaded objects instead of cleaning up")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	addSummaryFlags(runCommand.Flags())

	// Database URL for artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

// mergeRunDefaults fills unset config values. A sample size of zero means
// "fetch everything", which the merge cannot tell apart from unset, so an
// explicitly set zero is preserved past it.
func mergeRunDefaults(cfg config.Config, sampleSizeSet bool) config.Config {
	defaults := config.Config{
		SampleSize:      20,
		StagingDir:      "workspace",
		Region:          "us-east-1",
		Prefix:          "corpus-insights",
		NumTopics:       10,
		PollInterval:    30,
		PollMaxAttempts: 120,
		SummaryBackend:  config.BackendGemini,
		MaxWords:        summarize.DefaultMaxWords,
		Concurrency:     summarize.DefaultConcurrency,
	}

	merged := cfg.MergeWithDefaults(defaults)
	if sampleSizeSet {
		merged.SampleSize = cfg.SampleSize
	}
	return merged
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Validate loaded config
		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("dataset") {
		cfg.Dataset = runDataset
	}
	if cmd.Flags().Changed("sample-size") {
		cfg.SampleSize = runSampleSize
	}
	if cmd.Flags().Changed("staging-dir") {
		cfg.StagingDir = runStagingDir
	}
	if cmd.Flags().Changed("bucket") {
		cfg.Bucket = runBucket
	}
	if cmd.Flags().Changed("region") {
		cfg.Region = runRegion
	}
	if cmd.Flags().Changed("prefix") {
		cfg.Prefix = runPrefix
	}
	if cmd.Flags().Changed("role-arn") {
		cfg.DataAccessRoleARN = runRoleARN
	}
	if cmd.Flags().Changed("num-topics") {
		cfg.NumTopics = runNumTopics
	}
	if cmd.Flags().Changed("poll-interval") {
		cfg.PollInterval = runPollInterval
	}
	if cmd.Flags().Changed("poll-max-attempts") {
		cfg.PollMaxAttempts = runPollMaxAttempts
	}
	if cmd.Flags().Changed("backend") {
		cfg.SummaryBackend = sumBackend
	}
	if cmd.Flags().Changed("endpoint-name") {
		cfg.EndpointName = sumEndpointName
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = sumAPIKey
	}
	if cmd.Flags().Changed("max-words") {
		cfg.MaxWords = sumMaxWords
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = sumConcurrency
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}

	// Step 3: Apply defaults for unset values
	cfg = mergeRunDefaults(cfg, cmd.Flags().Changed("sample-size"))

	// Step 4: Validate required fields
	if cfg.Dataset == "" {
		return fmt.Errorf("--dataset is required (via flag or config)")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("--bucket is required (via flag or config)")
	}
	if cfg.DataAccessRoleARN == "" {
		return fmt.Errorf("--role-arn is required (via flag or config)")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 5: Database URL handling (optional persistence)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	poller := &topics.Poller{
		Clock:       clockwork.NewRealClock(),
		Interval:    time.Duration(cfg.PollInterval) * time.Second,
		MaxAttempts: cfg.PollMaxAttempts,
	}

	var summarizer summarize.Summarizer
	if !runSkipSummaries {
		var err error
		summarizer, err = buildSummarizer(ctx, cfg, cfg.Prefix)
		if err != nil {
			return err
		}
		defer summarizer.Close()
	}

	opts := pipeline.RunOptions{
		Dataset:           cfg.Dataset,
		StagingDir:        cfg.StagingDir,
		SampleSize:        cfg.SampleSize,
		Bucket:            cfg.Bucket,
		Region:            cfg.Region,
		Prefix:            cfg.Prefix,
		DataAccessRoleARN: cfg.DataAccessRoleARN,
		NumTopics:         cfg.NumTopics,
		Concurrency:       cfg.Concurrency,
		SkipSummaries:     runSkipSummaries,
		KeepWorkspace:     runKeepWorkspace,
		Verbose:           cfg.Verbose,
		DatabaseURL:       cfg.DatabaseURL,
		Poller:            poller,
		Summarizer:        summarizer,
	}

	return pipeline.RunPipeline(ctx, opts)
}
