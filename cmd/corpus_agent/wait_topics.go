package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/daniela/corpus-insights/internal/observability"
	"github.com/daniela/corpus-insights/internal/topics"
)

var waitTopicsCmd = &cobra.Command{
	Use:   "wait-topics",
	Short: "Wait for a topic-detection job to finish",
	Long:  "Poll a topic-detection job until it reaches a terminal state, with a fixed interval between status checks and a bounded number of attempts.",
	RunE:  runWaitTopics,
}

var (
	waitJobID       string
	waitRegion      string
	waitInterval    int
	waitMaxAttempts int
)

func init() {
	waitTopicsCmd.Flags().StringVar(&waitJobID, "job-id", "", "Topics job ID from submit-topics (required)")
	waitTopicsCmd.Flags().StringVar(&waitRegion, "region", "us-east-1", "AWS region")
	waitTopicsCmd.Flags().IntVar(&waitInterval, "interval", 30, "Seconds between status checks")
	waitTopicsCmd.Flags().IntVar(&waitMaxAttempts, "max-attempts", 120, "Maximum status checks before giving up")
	_ = waitTopicsCmd.MarkFlagRequired("job-id")

	rootCmd.AddCommand(waitTopicsCmd)
}

func runWaitTopics(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	client, err := topics.NewClient(ctx, waitRegion)
	if err != nil {
		return fmt.Errorf("failed to create topics client: %w", err)
	}

	poller := &topics.Poller{
		Clock:       clockwork.NewRealClock(),
		Interval:    time.Duration(waitInterval) * time.Second,
		MaxAttempts: waitMaxAttempts,
	}

	status, err := poller.Wait(ctx, waitJobID, func(ctx context.Context) (*topics.JobStatus, error) {
		return client.Describe(ctx, waitJobID)
	})
	if err != nil {
		return fmt.Errorf("failed waiting for topics job: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintJobStatus(status)
	return nil
}
