package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hitsim/hitsim/internal/adapters/repository"
	"github.com/hitsim/hitsim/pkg/logger"
	"github.com/hitsim/hitsim/pkg/metrics"
)

// JobsHandler serves async job submission and result retrieval.
type JobsHandler struct {
	deps       Dependencies
	maxObjects int
	logger     logger.Logger
}

func NewJobsHandler(deps Dependencies, maxObjects int) *JobsHandler {
	return &JobsHandler{
		deps:       deps,
		maxObjects: maxObjects,
		logger:     logger.Named("api.jobs"),
	}
}

// HandlePostJob accepts a play for asynchronous synthesis. Duplicate job IDs
// are acknowledged without re-enqueueing.
func (h *JobsHandler) HandlePostJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed_body", ErrMalformedBody)
		return
	}
	if err := req.validate(h.maxObjects); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	if req.JobID == "" {
		req.JobID = uuid.NewString()
	}

	ctx := r.Context()
	if h.deps.SeenAndRecord(ctx, req.JobID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", JobID: req.JobID, Duplicate: true})
		return
	}

	if !h.deps.Enqueue(ctx, req.toPlay()) {
		// Roll back the dedupe record so the client may retry.
		h.deps.Unrecord(ctx, req.JobID)
		h.logger.Warn(ctx, "queue full, rejecting job", logger.String("job_id", req.JobID))
		metrics.RecordErrorByEndpoint("jobs", r.Method, "rate_limit")
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}

	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", JobID: req.JobID})
}

// HandleGetJob returns the stored result for a job, 202 while the job is
// still queued, or 404 for an unknown job ID.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	jobID := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if jobID == "" || strings.Contains(jobID, "/") {
		writeError(w, http.StatusBadRequest, "invalid_request", NewKind("job_id", ErrOutOfRange))
		return
	}

	ctx := r.Context()
	result, err := h.deps.Result(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if h.deps.Seen(ctx, jobID) {
				writeJSON(w, http.StatusAccepted, ackResponse{Status: "pending", JobID: jobID})
				return
			}
			writeError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		h.logger.Error(ctx, "result lookup failed", logger.String("job_id", jobID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
