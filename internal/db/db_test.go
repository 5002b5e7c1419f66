package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArtifactStepConstants(t *testing.T) {
	// Verify step constants are defined
	steps := []string{
		StepCorpusManifest,
		StepUpload,
		StepTopicsJob,
		StepTopicsReport,
		StepSummaries,
		StepCleanup,
	}

	for _, step := range steps {
		assert.NotEmpty(t, step, "step constant should not be empty")
	}
}

func TestRunType(t *testing.T) {
	// Verify Run struct can be instantiated
	run := Run{
		Dataset: "s3://public-corpus/dataset/",
		Bucket:  "workshop-bucket",
		Status:  StatusRunning,
	}

	assert.Equal(t, "s3://public-corpus/dataset/", run.Dataset)
	assert.Equal(t, "workshop-bucket", run.Bucket)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.CompletedAt)
}
