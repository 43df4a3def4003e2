package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"wrapgen/internal/domain"
	"wrapgen/internal/http/handlers"
	"wrapgen/internal/http/httpapi"
	"wrapgen/internal/pipeline"
	"wrapgen/internal/providers/artgen"
)

type stubJobs struct {
	domain.JobRepository
	jobs map[string]*domain.DesignJob
}

func (s *stubJobs) GetByID(_ context.Context, jobID string) (*domain.DesignJob, error) {
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

type stubProvider struct {
	status *artgen.RequestStatus
	err    error
}

func (s *stubProvider) Submit(_ context.Context, _ artgen.SubmitRequest) (*artgen.RequestHandle, error) {
	return &artgen.RequestHandle{ID: "req-0"}, nil
}

func (s *stubProvider) Poll(_ context.Context, handle *artgen.RequestHandle) (*artgen.RequestStatus, error) {
	if s.err != nil {
		return nil, s.err
	}
	st := *s.status
	st.ID = handle.ID
	return &st, nil
}

func newTestApp(jobs domain.JobRepository, provider pipeline.GenerationProvider) *handlers.App {
	logger := zerolog.Nop()
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorOptions{
		Jobs:     jobs,
		Provider: provider,
		Logger:   logger,
	})
	return &handlers.App{Orchestrator: orch, Jobs: jobs, Logger: logger}
}

func TestDesignsGet(t *testing.T) {
	jobs := &stubJobs{jobs: map[string]*domain.DesignJob{
		"job-1": {
			ID:         "job-1",
			Status:     domain.JobStatusConceptReady,
			ConceptRef: "concepts/job-1.png",
			StageName:  domain.StagePolish,
		},
	}}
	router := httpapi.NewRouter(newTestApp(jobs, &stubProvider{}), nil, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/designs/job-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["concept_ref"] != "concepts/job-1.png" {
		t.Fatalf("body = %v", body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/designs/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing job status = %d", rec.Code)
	}
}

func TestDesignsCreateRejectsBadPayload(t *testing.T) {
	router := httpapi.NewRouter(newTestApp(&stubJobs{}, &stubProvider{}), nil, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/designs", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDesignsEnqueueRequiresBrandName(t *testing.T) {
	router := httpapi.NewRouter(newTestApp(&stubJobs{}, &stubProvider{}), nil, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/designs/queue", strings.NewReader(`{"tagline":"no name"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestsPoll(t *testing.T) {
	provider := &stubProvider{status: &artgen.RequestStatus{State: artgen.StateSucceeded, ImageURL: "https://cdn.example/a.png"}}
	router := httpapi.NewRouter(newTestApp(&stubJobs{}, provider), nil, "")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/requests/poll", strings.NewReader(`{"request_ids":["r1","r2"]}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Requests []struct {
			RequestID string `json:"request_id"`
			State     string `json:"state"`
		} `json:"requests"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Requests) != 2 || body.Requests[0].State != "succeeded" {
		t.Fatalf("body = %+v", body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/requests/poll", strings.NewReader(`{"request_ids":[]}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty ids status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := httpapi.NewRouter(newTestApp(&stubJobs{}, &stubProvider{}), nil, "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
