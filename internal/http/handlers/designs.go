package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"wrapgen/internal/domain"
	"wrapgen/internal/sqlinline"
)

// DesignsCreate runs the full pipeline synchronously and returns the terminal
// result. Long-running but bounded by the per-request poll budgets; use the
// queue endpoint when the caller cannot hold a connection open.
func (a *App) DesignsCreate(w http.ResponseWriter, r *http.Request) {
	var inputs domain.BrandInputs
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	result, err := a.Orchestrator.Run(r.Context(), inputs)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.Logger.Error().Err(err).Msg("designs: pipeline run failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to run design pipeline")
		return
	}
	a.json(w, http.StatusOK, result)
}

// DesignsEnqueue queues the brief for the background worker and returns the
// queue item id immediately.
func (a *App) DesignsEnqueue(w http.ResponseWriter, r *http.Request) {
	var inputs domain.BrandInputs
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(inputs.BrandName) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "brand_name required")
		return
	}

	payload, err := json.Marshal(inputs)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	row := a.SQL.QueryRow(r.Context(), sqlinline.QEnqueueDesignJob, payload)
	var queueID string
	if err := row.Scan(&queueID); err != nil {
		a.Logger.Error().Err(err).Msg("designs: enqueue failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue design job")
		return
	}
	a.json(w, http.StatusAccepted, map[string]string{"queue_id": queueID, "status": "QUEUED"})
}

// DesignsGet returns the persisted job record.
func (a *App) DesignsGet(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "design job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("designs: load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load design job")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"id":            job.ID,
		"status":        job.Status,
		"current_stage": job.CurrentStage,
		"stage_name":    job.StageName,
		"inputs":        job.Inputs,
		"analysis":      job.Analysis,
		"artwork_refs":  job.ArtworkRefs,
		"composite_ref": job.CompositeRef,
		"concept_ref":   job.ConceptRef,
		"export":        job.Export,
		"failed_stage":  job.FailedStage,
		"error_message": job.ErrorMessage,
		"created_at":    job.CreatedAt,
		"updated_at":    job.UpdatedAt,
	})
}

type exportRequest struct {
	ApprovedRef string `json:"approved_ref"`
}

// DesignsExport produces the print-ready PDF for an approved concept.
func (a *App) DesignsExport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	var req exportRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
			return
		}
	}

	result, err := a.Orchestrator.ExportPrintReady(r.Context(), jobID, req.ApprovedRef)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			a.error(w, http.StatusNotFound, "not_found", "design job not found")
		case errors.Is(err, domain.ErrInvalidInput):
			a.error(w, http.StatusConflict, "not_ready", "design has no approved concept")
		default:
			a.Logger.Error().Err(err).Str("job_id", jobID).Msg("designs: export failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to export design")
		}
		return
	}
	a.json(w, http.StatusOK, result)
}

type pollRequest struct {
	RequestIDs []string `json:"request_ids"`
}

// RequestsPoll reports provider-side state for a batch of generation requests.
func (a *App) RequestsPoll(w http.ResponseWriter, r *http.Request) {
	var req pollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if len(req.RequestIDs) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "request_ids required")
		return
	}
	statuses := a.Orchestrator.PollProviderBatch(r.Context(), req.RequestIDs)
	a.json(w, http.StatusOK, map[string]any{"requests": statuses})
}
