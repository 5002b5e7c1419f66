package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/daniela/corpus-insights/internal/db"
)

// RunStore is the persistence surface the API serves. *db.DB satisfies it.
type RunStore interface {
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	ListRuns(ctx context.Context, filters db.RunFilters) ([]db.Run, error)
	DeleteRun(ctx context.Context, runID uuid.UUID) error
	ListArtifacts(ctx context.Context, filters db.ArtifactFilters) ([]db.ArtifactSummary, error)
	GetArtifactByID(ctx context.Context, artifactID uuid.UUID) (*db.Artifact, error)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleListRuns returns pipeline runs, optionally filtered by dataset
// and status query parameters.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	filters := db.RunFilters{
		Dataset: r.URL.Query().Get("dataset"),
		Status:  r.URL.Query().Get("status"),
	}

	runs, err := s.store.ListRuns(r.Context(), filters)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{"runs": runs, "count": len(runs)})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, ErrValidation)
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if run == nil {
		errorResponse(w, ErrRunNotFound)
		return
	}

	jsonResponse(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, ErrValidation)
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if run == nil {
		errorResponse(w, ErrRunNotFound)
		return
	}

	if err := s.store.DeleteRun(r.Context(), runID); err != nil {
		errorResponse(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"deleted": runID.String()})
}

// handleListRunArtifacts returns artifact summaries for a run, optionally
// filtered by step and category query parameters.
func (s *Server) handleListRunArtifacts(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, ErrValidation)
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if run == nil {
		errorResponse(w, ErrRunNotFound)
		return
	}

	filters := db.ArtifactFilters{
		RunID:    runID,
		Step:     r.URL.Query().Get("step"),
		Category: r.URL.Query().Get("category"),
	}

	artifacts, err := s.store.ListArtifacts(r.Context(), filters)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if artifacts == nil {
		artifacts = []db.ArtifactSummary{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{"run_id": runID, "artifacts": artifacts})
}

func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	artifactID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		errorResponse(w, ErrValidation)
		return
	}

	artifact, err := s.store.GetArtifactByID(r.Context(), artifactID)
	if err != nil {
		errorResponse(w, err)
		return
	}
	if artifact == nil {
		errorResponse(w, ErrArtifactNotFound)
		return
	}

	jsonResponse(w, http.StatusOK, artifact)
}
