package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hitsim/hitsim/internal/domain/synth"
	"github.com/hitsim/hitsim/pkg/logger"
	"github.com/hitsim/hitsim/pkg/metrics"
)

// SimulateHandler serves synchronous play synthesis.
type SimulateHandler struct {
	deps       Dependencies
	maxObjects int
	logger     logger.Logger
}

func NewSimulateHandler(deps Dependencies, maxObjects int) *SimulateHandler {
	return &SimulateHandler{
		deps:       deps,
		maxObjects: maxObjects,
		logger:     logger.Named("api.simulate"),
	}
}

// HandlePostSimulate synthesizes a judgement distribution in-request and
// returns it together with the achieved accuracy and max combo.
func (h *SimulateHandler) HandlePostSimulate(w http.ResponseWriter, r *http.Request) {
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

	result, err := h.deps.Simulate(r.Context(), req.toPlay())
	if err != nil {
		if errors.Is(err, synth.ErrInvalidRange) || errors.Is(err, synth.ErrNegativeCount) {
			writeError(w, http.StatusBadRequest, "invalid_request", err)
			return
		}
		h.logger.Error(r.Context(), "simulation failed", logger.Error(err))
		metrics.RecordErrorByEndpoint("simulate", r.Method, "server_error")
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	writeJSON(w, http.StatusOK, simulateResponse{
		Distribution: result.Distribution,
		Accuracy:     result.Accuracy,
		MaxCombo:     result.MaxCombo,
	})
}
