package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"wrapgen/internal/domain"
	"wrapgen/pkg/zip"
)

// DesignsBundle streams a zip of every asset the pipeline produced for a job:
// the artwork candidates, the lettered composite, the polished concept, and
// the print PDF when one was exported.
func (a *App) DesignsBundle(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "design job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("bundle: load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load design job")
		return
	}

	var assets []zip.Asset
	add := func(ref, filename, mime string) {
		if ref == "" {
			return
		}
		data, err := a.Store.Download(r.Context(), ref)
		if err != nil {
			a.Logger.Warn().Err(err).Str("job_id", jobID).Str("ref", ref).Msg("bundle: asset fetch failed")
			return
		}
		assets = append(assets, zip.Asset{Filename: filename, MIME: mime, Data: data})
	}

	for idx, ref := range job.ArtworkRefs {
		add(ref, fmt.Sprintf("artwork-%02d.png", idx+1), "image/png")
	}
	add(job.CompositeRef, "composite.png", "image/png")
	add(job.ConceptRef, "concept.png", "image/png")
	if job.Export != nil {
		add(job.Export.URL, "print-ready.pdf", "application/pdf")
	}
	if len(assets) == 0 {
		a.error(w, http.StatusConflict, "not_ready", "design has no assets yet")
		return
	}

	archive := zip.ArchiveAssets(assets)
	if archive == nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "design-"+jobID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}
