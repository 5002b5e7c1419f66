// Package topics drives the managed topic-detection job: submission, status
// polling, and parsing of the job's result archive.
package topics

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	comprehendtypes "github.com/aws/aws-sdk-go-v2/service/comprehend/types"
)

// API is the subset of the Comprehend client the package uses. Tests
// substitute a fake.
type API interface {
	StartTopicsDetectionJob(ctx context.Context, in *comprehend.StartTopicsDetectionJobInput, opts ...func(*comprehend.Options)) (*comprehend.StartTopicsDetectionJobOutput, error)
	DescribeTopicsDetectionJob(ctx context.Context, in *comprehend.DescribeTopicsDetectionJobInput, opts ...func(*comprehend.Options)) (*comprehend.DescribeTopicsDetectionJobOutput, error)
}

// Status is the provider job status mapped into our own vocabulary.
type Status string

const (
	StatusSubmitted  Status = "SUBMITTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
	StatusStopped    Status = "STOPPED"
	StatusUnknown    Status = "UNKNOWN"
)

// Terminal reports whether the status is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusStopped
}

// JobStatus is a snapshot of a topic-detection job.
type JobStatus struct {
	JobID       string `json:"job_id"`
	Status      Status `json:"status"`
	Message     string `json:"message,omitempty"`
	OutputS3URI string `json:"output_s3_uri,omitempty"`
}

// SubmitInput describes a topic-detection job to start.
type SubmitInput struct {
	JobName           string
	InputS3URI        string
	OutputS3URI       string
	DataAccessRoleARN string
	NumberOfTopics    int32
}

// Client wraps the topic-detection job API.
type Client struct {
	api API
}

// NewClient creates a Client using the default shared-config credential chain.
func NewClient(ctx context.Context, region string) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Client{api: comprehend.NewFromConfig(awsCfg)}, nil
}

// NewClientWithAPI creates a Client over an existing API. Used by tests.
func NewClientWithAPI(api API) *Client {
	return &Client{api: api}
}

// Submit starts a topic-detection job over the documents at InputS3URI, one
// document per file, and returns the provider job ID.
func (c *Client) Submit(ctx context.Context, in SubmitInput) (string, error) {
	if in.InputS3URI == "" || in.OutputS3URI == "" {
		return "", fmt.Errorf("input and output S3 URIs are required")
	}
	if in.DataAccessRoleARN == "" {
		return "", fmt.Errorf("data access role ARN is required")
	}

	out, err := c.api.StartTopicsDetectionJob(ctx, &comprehend.StartTopicsDetectionJobInput{
		JobName:           aws.String(in.JobName),
		DataAccessRoleArn: aws.String(in.DataAccessRoleARN),
		NumberOfTopics:    aws.Int32(in.NumberOfTopics),
		InputDataConfig: &comprehendtypes.InputDataConfig{
			S3Uri:       aws.String(in.InputS3URI),
			InputFormat: comprehendtypes.InputFormatOneDocPerFile,
		},
		OutputDataConfig: &comprehendtypes.OutputDataConfig{
			S3Uri: aws.String(in.OutputS3URI),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to start topic detection job: %w", err)
	}
	if out.JobId == nil {
		return "", fmt.Errorf("provider returned no job ID")
	}

	return *out.JobId, nil
}

// Describe fetches the current status of a job.
func (c *Client) Describe(ctx context.Context, jobID string) (*JobStatus, error) {
	out, err := c.api.DescribeTopicsDetectionJob(ctx, &comprehend.DescribeTopicsDetectionJobInput{
		JobId: aws.String(jobID),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe job %s: %w", jobID, err)
	}

	props := out.TopicsDetectionJobProperties
	if props == nil {
		return nil, fmt.Errorf("provider returned no properties for job %s", jobID)
	}

	status := &JobStatus{
		JobID:   jobID,
		Status:  mapStatus(props.JobStatus),
		Message: aws.ToString(props.Message),
	}
	if props.OutputDataConfig != nil {
		status.OutputS3URI = aws.ToString(props.OutputDataConfig.S3Uri)
	}

	return status, nil
}

func mapStatus(s comprehendtypes.JobStatus) Status {
	switch s {
	case comprehendtypes.JobStatusSubmitted:
		return StatusSubmitted
	case comprehendtypes.JobStatusInProgress:
		return StatusInProgress
	case comprehendtypes.JobStatusCompleted:
		return StatusCompleted
	case comprehendtypes.JobStatusFailed:
		return StatusFailed
	case comprehendtypes.JobStatusStopRequested, comprehendtypes.JobStatusStopped:
		return StatusStopped
	default:
		return StatusUnknown
	}
}
