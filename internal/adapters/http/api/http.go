// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitsim/hitsim/internal/domain/combo"
	"github.com/hitsim/hitsim/internal/domain/dedupe"
	"github.com/hitsim/hitsim/internal/domain/judgement"
	"github.com/hitsim/hitsim/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Simulate synthesizes a play synchronously.
	Simulate(ctx context.Context, p model.Play) (model.Result, error)

	// Enqueue pushes a play for async processing. Returns false on backpressure.
	Enqueue(ctx context.Context, p model.Play) bool

	// Result fetches the stored result for a job ID.
	Result(ctx context.Context, jobID string) (model.Result, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	simulateHandler *SimulateHandler
	jobsHandler     *JobsHandler
}

// NewServer creates a new API server with all handlers. maxObjects caps the
// judged-object count accepted per request.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxObjects int) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		simulateHandler: NewSimulateHandler(deps, maxObjects),
		jobsHandler:     NewJobsHandler(deps, maxObjects),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/simulate", MetricsMiddleware(s.simulateHandler.HandlePostSimulate, "simulate"))
	mux.HandleFunc("/jobs", MetricsMiddleware(s.jobsHandler.HandlePostJob, "jobs"))
	mux.HandleFunc("/jobs/", MetricsMiddleware(s.jobsHandler.HandleGetJob, "job_result"))
}

// playRequest mirrors the JSON schema for POST /simulate and POST /jobs.
type playRequest struct {
	JobID      string  `json:"job_id,omitempty"`
	Objects    int     `json:"objects"`
	Misses     int     `json:"misses"`
	Accuracy   float64 `json:"accuracy"`
	Good       *int    `json:"good,omitempty"`
	Acceptable *int    `json:"acceptable,omitempty"`
	Nested     []int   `json:"nested,omitempty"`
}

// validate checks request-level bounds before the domain sees the play.
func (p playRequest) validate(maxObjects int) error {
	switch {
	case p.Objects < 0:
		return NewKind("objects", ErrOutOfRange)
	case p.Objects > maxObjects:
		return NewKind("objects", ErrTooManyObjects)
	case p.Misses < 0 || p.Misses > p.Objects:
		return NewKind("misses", ErrOutOfRange)
	case p.Accuracy < 0 || p.Accuracy > 1:
		return NewKind("accuracy", ErrOutOfRange)
	case p.Good != nil && *p.Good < 0:
		return NewKind("good", ErrOutOfRange)
	case p.Acceptable != nil && *p.Acceptable < 0:
		return NewKind("acceptable", ErrOutOfRange)
	}
	for _, n := range p.Nested {
		if n < 0 {
			return NewKind("nested", ErrOutOfRange)
		}
	}
	return nil
}

// toPlay converts the wire request into the domain play.
func (p playRequest) toPlay() model.Play {
	objects := make([]combo.Object, len(p.Nested))
	for i, n := range p.Nested {
		objects[i] = combo.Object{Nested: n}
	}
	return model.Play{
		JobID:      p.JobID,
		Objects:    p.Objects,
		Misses:     p.Misses,
		Accuracy:   p.Accuracy,
		Good:       p.Good,
		Acceptable: p.Acceptable,
		Nested:     objects,
	}
}

// simulateResponse mirrors the JSON schema of a synchronous simulation.
type simulateResponse struct {
	Distribution judgement.Distribution `json:"distribution"`
	Accuracy     float64                `json:"accuracy"`
	MaxCombo     int                    `json:"max_combo"`
}

// ackResponse acknowledges an async job submission.
type ackResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
