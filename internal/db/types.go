package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a pipeline run record
type Run struct {
	ID          uuid.UUID  `json:"id"`
	Dataset     string     `json:"dataset"`
	Bucket      string     `json:"bucket"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ArtifactStep constants for known artifact types
const (
	StepCorpusManifest = "corpus_manifest"
	StepUpload         = "upload"
	StepTopicsJob      = "topics_job"
	StepTopicsReport   = "topics_report"
	StepSummaries      = "summaries"
	StepCleanup        = "cleanup"
)

// Artifact category values
const (
	CategoryManifest = "manifest"
	CategoryJob      = "job"
	CategoryReport   = "report"
	CategorySummary  = "summary"
	CategoryLog      = "log"
)
