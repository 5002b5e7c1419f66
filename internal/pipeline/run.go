// Package pipeline provides the high-level orchestration for the corpus
// insights workflow: stage a corpus, run topic detection on it, build the
// joined report, and summarize each article.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/daniela/corpus-insights/internal/corpus"
	"github.com/daniela/corpus-insights/internal/db"
	"github.com/daniela/corpus-insights/internal/objectstore"
	"github.com/daniela/corpus-insights/internal/observability"
	"github.com/daniela/corpus-insights/internal/results"
	"github.com/daniela/corpus-insights/internal/schemas"
	"github.com/daniela/corpus-insights/internal/summarize"
	"github.com/daniela/corpus-insights/internal/topics"
	"github.com/daniela/corpus-insights/internal/types"
)

// Key prefixes under the run prefix in the working bucket.
const (
	InputKeyPrefix  = "input"
	OutputKeyPrefix = "output"
)

// Output filenames written into the staging directory.
const (
	ReportCSVFile     = "topic_report.csv"
	ReportJSONFile    = "topic_report.json"
	SummariesJSONFile = "summaries.json"
)

// topTermsPerTopic bounds the terms carried into each report row.
const topTermsPerTopic = 5

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	Dataset           string
	StagingDir        string
	SampleSize        int
	Bucket            string
	Region            string
	Prefix            string
	DataAccessRoleARN string
	NumTopics         int
	Concurrency       int
	SkipSummaries     bool
	KeepWorkspace     bool
	Verbose           bool
	DatabaseURL       string
	OnProgress        ProgressCallback

	// Injectable seams. When nil, real clients are constructed from the
	// fields above.
	Store      *objectstore.Store
	Topics     *topics.Client
	Poller     *topics.Poller
	Summarizer summarize.Summarizer
	Fetch      FetchFunc
}

// FetchFunc stages the corpus and returns its manifest.
type FetchFunc func(ctx context.Context, dataset, region, dir string, sampleSize int) (*corpus.Manifest, error)

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

// RunPipeline orchestrates the full corpus insights pipeline
func RunPipeline(ctx context.Context, opts RunOptions) error {

	// Initialize observability printer for verbose output
	printer := observability.NewPrinter(os.Stdout)

	// Initialize database connection if configured
	var database *db.DB
	var runID uuid.UUID
	if opts.DatabaseURL != "" {
		var err error
		database, err = db.Connect(ctx, opts.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
		} else {
			defer database.Close()
			if err := database.EnsureSchema(ctx); err != nil {
				fmt.Printf("Warning: Failed to ensure database schema: %v\n", err)
			}
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Connected to database\n")
			}
		}
	}

	if database != nil {
		var err error
		runID, err = database.CreateRun(ctx, opts.Dataset, opts.Bucket)
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else if opts.Verbose {
			fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
		}
	}

	// Step 1: Stage the corpus
	fmt.Printf("Step 1/7: Fetching corpus from %s...\n", opts.Dataset)
	fetchCorpus := opts.Fetch
	if fetchCorpus == nil {
		fetchCorpus = corpus.Fetch
	}
	manifest, err := fetchCorpus(ctx, opts.Dataset, opts.Region, opts.StagingDir, opts.SampleSize)
	if err != nil {
		return fmt.Errorf("corpus fetch failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintCorpusManifest(manifest.Dataset, manifest.Articles)
	}
	emitProgress(&opts, db.StepCorpusManifest, db.CategoryManifest,
		fmt.Sprintf("Staged %d articles from %s", len(manifest.Articles), opts.Dataset), manifest)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepCorpusManifest, db.CategoryManifest, manifest)
	}

	// Step 2: Upload to the working bucket
	store := opts.Store
	if store == nil {
		store, err = objectstore.New(ctx, objectstore.Config{Bucket: opts.Bucket, Region: opts.Region})
		if err != nil {
			return fmt.Errorf("object store setup failed: %w", err)
		}
	}

	inputPrefix := objectstore.JoinKey(opts.Prefix, InputKeyPrefix)
	fmt.Printf("Step 2/7: Uploading %d articles to %s...\n", len(manifest.Articles), store.URI(inputPrefix))
	for _, article := range manifest.Articles {
		key := objectstore.JoinKey(inputPrefix, filepath.Base(article.Path))
		if err := store.UploadFile(ctx, key, article.Path); err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}
	}
	emitProgress(&opts, db.StepUpload, db.CategoryLog,
		fmt.Sprintf("Uploaded %d articles", len(manifest.Articles)), nil)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveTextArtifact(ctx, runID, db.StepUpload, db.CategoryLog, store.URI(inputPrefix))
	}

	// Step 3: Submit the topic detection job
	fmt.Printf("Step 3/7: Submitting topic detection job...\n")
	topicsClient := opts.Topics
	if topicsClient == nil {
		topicsClient, err = topics.NewClient(ctx, opts.Region)
		if err != nil {
			return fmt.Errorf("topics client setup failed: %w", err)
		}
	}

	outputPrefix := objectstore.JoinKey(opts.Prefix, OutputKeyPrefix)
	jobID, err := topicsClient.Submit(ctx, topics.SubmitInput{
		JobName:           fmt.Sprintf("corpus-insights-%d", time.Now().Unix()),
		InputS3URI:        store.URI(inputPrefix),
		OutputS3URI:       store.URI(outputPrefix),
		DataAccessRoleARN: opts.DataAccessRoleARN,
		NumberOfTopics:    int32(opts.NumTopics),
	})
	if err != nil {
		return fmt.Errorf("topic job submission failed: %w", err)
	}
	fmt.Printf("Submitted job %s\n", jobID)
	emitProgress(&opts, db.StepTopicsJob, db.CategoryJob, fmt.Sprintf("Submitted topic job %s", jobID), nil)

	// Step 4: Poll until the job reaches a terminal state
	fmt.Printf("Step 4/7: Waiting for job %s to complete...\n", jobID)
	poller := opts.Poller
	if poller == nil {
		poller = topics.DefaultPoller()
	}
	status, err := poller.Wait(ctx, jobID, func(ctx context.Context) (*topics.JobStatus, error) {
		return topicsClient.Describe(ctx, jobID)
	})
	if err != nil {
		return fmt.Errorf("topic job did not complete: %w", err)
	}
	if opts.Verbose {
		printer.PrintJobStatus(status)
	}
	emitProgress(&opts, db.StepTopicsJob, db.CategoryJob,
		fmt.Sprintf("Job %s finished with status %s", jobID, status.Status), status)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepTopicsJob, db.CategoryJob, status)
	}

	// Step 5: Download the output archive and build the joined report
	fmt.Printf("Step 5/7: Building topic report from job output...\n")
	report, err := buildReport(ctx, store, status, jobID)
	if err != nil {
		return err
	}
	if opts.Verbose {
		printer.PrintTopicReport(report)
	}

	results.RenderTopicReport(os.Stdout, report)
	reportJSONPath := filepath.Join(opts.StagingDir, ReportJSONFile)
	if err := results.WriteReportCSV(filepath.Join(opts.StagingDir, ReportCSVFile), report); err != nil {
		return err
	}
	if err := results.WriteReportJSON(reportJSONPath, report); err != nil {
		return err
	}
	validateOutput(reportJSONPath, "schemas/topic_report.schema.json")

	emitProgress(&opts, db.StepTopicsReport, db.CategoryReport,
		fmt.Sprintf("Built report with %d rows", len(report.Rows)), report)
	if database != nil && runID != uuid.Nil {
		_ = database.SaveArtifact(ctx, runID, db.StepTopicsReport, db.CategoryReport, report)
	}

	// Step 6: Summarize each article
	if opts.SkipSummaries {
		fmt.Printf("Step 6/7: Skipping summaries (--skip-summaries).\n")
	} else {
		fmt.Printf("Step 6/7: Summarizing %d articles...\n", len(manifest.Articles))
		if opts.Summarizer == nil {
			return fmt.Errorf("no summarizer configured")
		}

		summaries, err := summarize.SummarizeAll(ctx, opts.Summarizer, manifest.Articles, corpus.ReadArticleText, summarize.BatchOptions{
			Concurrency: opts.Concurrency,
			OnSummary: func(s types.Summary) {
				emitProgress(&opts, db.StepSummaries, db.CategorySummary,
					fmt.Sprintf("Summarized %s", s.ArticleID), nil)
			},
		})
		if err != nil {
			return fmt.Errorf("summarization failed: %w", err)
		}

		if opts.Verbose {
			printer.PrintSummaries(summaries)
		}
		results.RenderSummaries(os.Stdout, summaries)

		summariesPath := filepath.Join(opts.StagingDir, SummariesJSONFile)
		if err := results.WriteSummariesJSON(summariesPath, summaries); err != nil {
			return err
		}
		validateOutput(summariesPath, "schemas/summaries.schema.json")

		if database != nil && runID != uuid.Nil {
			_ = database.SaveArtifact(ctx, runID, db.StepSummaries, db.CategorySummary, summaries)
		}
	}

	// Step 7: Clean up the working bucket
	if opts.KeepWorkspace {
		fmt.Printf("Step 7/7: Keeping uploaded objects (--keep-workspace).\n")
	} else {
		fmt.Printf("Step 7/7: Cleaning up uploaded objects...\n")
		deleted, err := store.DeletePrefix(ctx, opts.Prefix)
		if err != nil {
			fmt.Printf("Warning: Cleanup failed: %v\n", err)
		} else {
			if opts.Verbose {
				printer.PrintCleanup(deleted)
			}
			emitProgress(&opts, db.StepCleanup, db.CategoryLog,
				fmt.Sprintf("Deleted %d objects", deleted), nil)
			if database != nil && runID != uuid.Nil {
				_ = database.SaveTextArtifact(ctx, runID, db.StepCleanup, db.CategoryLog,
					fmt.Sprintf("deleted %d objects under %s", deleted, store.URI(opts.Prefix)))
			}
		}
	}

	// Mark run as completed
	if database != nil && runID != uuid.Nil {
		_ = database.CompleteRun(ctx, runID, db.StatusCompleted)
	}

	fmt.Printf("Done! Outputs written to %s.\n", opts.StagingDir)
	return nil
}

// buildReport downloads the finished job's archive and joins its two tables.
func buildReport(ctx context.Context, store *objectstore.Store, status *topics.JobStatus, jobID string) (*types.TopicReport, error) {
	if status.OutputS3URI == "" {
		return nil, fmt.Errorf("job %s reported no output location", jobID)
	}

	bucket, key, err := objectstore.ParseURI(status.OutputS3URI)
	if err != nil {
		return nil, err
	}
	if bucket != store.Bucket() {
		return nil, fmt.Errorf("job output is in unexpected bucket %s", bucket)
	}

	body, err := store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	out, err := topics.ParseOutputArchive(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse job output: %w", err)
	}

	return topics.BuildReport(jobID, out, topTermsPerTopic), nil
}

// validateOutput checks an emitted JSON file against its schema when the
// schema file can be located. A failed lookup is not an error; validation
// failures are surfaced as warnings.
func validateOutput(jsonPath, schemaRelPath string) {
	schemaPath := schemas.ResolveSchemaPath(schemaRelPath)
	if schemaPath == "" {
		return
	}
	if err := schemas.ValidateJSON(schemaPath, jsonPath); err != nil {
		fmt.Printf("Warning: %s failed schema validation: %v\n", filepath.Base(jsonPath), err)
	}
}
