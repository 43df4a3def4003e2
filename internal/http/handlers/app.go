package handlers

import (
	"encoding/json"
	"net/http"

	"wrapgen/internal/domain"
	"wrapgen/internal/infra"
	"wrapgen/internal/pipeline"
	"wrapgen/internal/storage"
)

// App carries the dependencies shared by the HTTP handlers.
type App struct {
	Orchestrator *pipeline.Orchestrator
	Jobs         domain.JobRepository
	Store        storage.BlobStore
	SQL          infra.SQLExecutor
	Logger       infra.Logger
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, errorResponse{Error: kind, Message: message})
}
