package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/daniela/corpus-insights/internal/objectstore"
	"github.com/daniela/corpus-insights/internal/pipeline"
	"github.com/daniela/corpus-insights/internal/topics"
	"github.com/spf13/cobra"
)

var submitTopicsCmd = &cobra.Command{
	Use:   "submit-topics",
	Short: "Start a topic-detection job over the uploaded corpus",
	Long:  "Start a managed topic-detection job reading from <prefix>/input/ and writing to <prefix>/output/ in the working bucket. Prints the job ID for wait-topics.",
	RunE:  runSubmitTopics,
}

var (
	submitBucket    string
	submitRegion    string
	submitPrefix    string
	submitRoleARN   string
	submitNumTopics int
	submitJobName   string
)

func init() {
	submitTopicsCmd.Flags().StringVarP(&submitBucket, "bucket", "b", "", "Working S3 bucket (required)")
	submitTopicsCmd.Flags().StringVar(&submitRegion, "region", "us-east-1", "AWS region")
	submitTopicsCmd.Flags().StringVar(&submitPrefix, "prefix", "corpus-insights", "Key prefix inside the bucket")
	submitTopicsCmd.Flags().StringVar(&submitRoleARN, "role-arn", "", "IAM role ARN the job assumes to read and write the bucket (required)")
	submitTopicsCmd.Flags().IntVar(&submitNumTopics, "num-topics", 10, "Number of topics to detect (1-100)")
	submitTopicsCmd.Flags().StringVar(&submitJobName, "job-name", "", "Job name (default: corpus-insights-<timestamp>)")
	_ = submitTopicsCmd.MarkFlagRequired("bucket")
	_ = submitTopicsCmd.MarkFlagRequired("role-arn")

	rootCmd.AddCommand(submitTopicsCmd)
}

func runSubmitTopics(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	if submitNumTopics < 1 || submitNumTopics > 100 {
		return fmt.Errorf("--num-topics must be between 1 and 100, got %d", submitNumTopics)
	}

	client, err := topics.NewClient(ctx, submitRegion)
	if err != nil {
		return fmt.Errorf("failed to create topics client: %w", err)
	}

	jobName := submitJobName
	if jobName == "" {
		jobName = fmt.Sprintf("corpus-insights-%d", time.Now().Unix())
	}

	jobID, err := client.Submit(ctx, topics.SubmitInput{
		JobName:           jobName,
		InputS3URI:        fmt.Sprintf("s3://%s/%s", submitBucket, objectstore.JoinKey(submitPrefix, pipeline.InputKeyPrefix)),
		OutputS3URI:       fmt.Sprintf("s3://%s/%s", submitBucket, objectstore.JoinKey(submitPrefix, pipeline.OutputKeyPrefix)),
		DataAccessRoleARN: submitRoleARN,
		NumberOfTopics:    int32(submitNumTopics),
	})
	if err != nil {
		return fmt.Errorf("failed to submit topics job: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Submitted topics job %s (%s)\n", jobID, jobName)
	return nil
}
