//go:build integration

package db

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/uuid"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	db, err := Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		t.Fatalf("Failed to ensure schema: %v", err)
	}

	// Clean up test data before each test
	_, _ = db.pool.Exec(ctx, "DELETE FROM pipeline_runs WHERE dataset LIKE '%test.example.com%'")

	return db
}

func createTestRun(t *testing.T, db *DB, ctx context.Context) uuid.UUID {
	t.Helper()
	runID, err := db.CreateRun(ctx, "https://test.example.com/corpus/", "test-bucket")
	if err != nil {
		t.Fatalf("Failed to create test run: %v", err)
	}
	return runID
}

func cleanupTestRun(t *testing.T, db *DB, runID uuid.UUID) {
	t.Helper()
	_, _ = db.pool.Exec(context.Background(), "DELETE FROM pipeline_runs WHERE id = $1", runID)
}

func TestIntegration_RunLifecycle(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID := createTestRun(t, db, ctx)
	defer cleanupTestRun(t, db, runID)

	t.Run("get run", func(t *testing.T) {
		run, err := db.GetRun(ctx, runID)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if run == nil {
			t.Fatal("Run not found")
		}
		if run.Status != StatusRunning {
			t.Errorf("Status = %q, want running", run.Status)
		}
		if run.CompletedAt != nil {
			t.Error("CompletedAt should be nil for a running run")
		}
	})

	t.Run("complete run", func(t *testing.T) {
		if err := db.CompleteRun(ctx, runID, StatusCompleted); err != nil {
			t.Fatalf("CompleteRun failed: %v", err)
		}
		run, err := db.GetRun(ctx, runID)
		if err != nil {
			t.Fatalf("GetRun failed: %v", err)
		}
		if run.Status != StatusCompleted {
			t.Errorf("Status = %q, want completed", run.Status)
		}
		if run.CompletedAt == nil {
			t.Error("CompletedAt should be set after completion")
		}
	})

	t.Run("list runs filtered", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, RunFilters{Dataset: "test.example.com", Status: StatusCompleted})
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		found := false
		for _, r := range runs {
			if r.ID == runID {
				found = true
			}
		}
		if !found {
			t.Error("Completed test run not returned by filtered listing")
		}
	})
}

func TestIntegration_Artifacts(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID := createTestRun(t, db, ctx)
	defer cleanupTestRun(t, db, runID)

	t.Run("save and get JSON artifact", func(t *testing.T) {
		report := map[string]any{"job_id": "job-42", "rows": []any{}}
		if err := db.SaveArtifact(ctx, runID, StepTopicsReport, CategoryReport, report); err != nil {
			t.Fatalf("SaveArtifact failed: %v", err)
		}

		content, err := db.GetArtifact(ctx, runID, StepTopicsReport)
		if err != nil {
			t.Fatalf("GetArtifact failed: %v", err)
		}
		var got map[string]any
		if err := json.Unmarshal(content, &got); err != nil {
			t.Fatalf("Artifact content did not parse: %v", err)
		}
		if got["job_id"] != "job-42" {
			t.Errorf("job_id = %v, want job-42", got["job_id"])
		}
	})

	t.Run("upsert replaces on same step", func(t *testing.T) {
		if err := db.SaveArtifact(ctx, runID, StepTopicsReport, CategoryReport, map[string]any{"job_id": "job-43"}); err != nil {
			t.Fatalf("SaveArtifact failed: %v", err)
		}
		content, err := db.GetArtifact(ctx, runID, StepTopicsReport)
		if err != nil {
			t.Fatalf("GetArtifact failed: %v", err)
		}
		var got map[string]any
		_ = json.Unmarshal(content, &got)
		if got["job_id"] != "job-43" {
			t.Errorf("job_id = %v, want job-43 after upsert", got["job_id"])
		}
	})

	t.Run("save and get text artifact", func(t *testing.T) {
		if err := db.SaveTextArtifact(ctx, runID, StepSummaries, CategorySummary, "rendered table"); err != nil {
			t.Fatalf("SaveTextArtifact failed: %v", err)
		}
		text, err := db.GetTextArtifact(ctx, runID, StepSummaries)
		if err != nil {
			t.Fatalf("GetTextArtifact failed: %v", err)
		}
		if text != "rendered table" {
			t.Errorf("text = %q", text)
		}
	})

	t.Run("list artifacts", func(t *testing.T) {
		artifacts, err := db.ListArtifacts(ctx, ArtifactFilters{RunID: runID})
		if err != nil {
			t.Fatalf("ListArtifacts failed: %v", err)
		}
		if len(artifacts) != 2 {
			t.Errorf("Artifacts count = %d, want 2", len(artifacts))
		}
	})

	t.Run("delete run cascades", func(t *testing.T) {
		if err := db.DeleteRun(ctx, runID); err != nil {
			t.Fatalf("DeleteRun failed: %v", err)
		}
		artifacts, err := db.ListArtifacts(ctx, ArtifactFilters{RunID: runID})
		if err != nil {
			t.Fatalf("ListArtifacts failed: %v", err)
		}
		if len(artifacts) != 0 {
			t.Errorf("Artifacts remain after run deletion: %d", len(artifacts))
		}
	})
}
