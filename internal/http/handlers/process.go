package handlers

import (
	"encoding/json"
	"net/http"
)

type processJobRequest struct {
	JobID string `json:"job_id"`
}

type processJobResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ProcessJob is the worker's internal entry point. A claim conflict inside
// the processor is a graceful no-op and still reports success; only partial,
// unreconciled state (settlement or persistence faults) maps to a 500.
func (a *App) ProcessJob(w http.ResponseWriter, r *http.Request) {
	var req processJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.JobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	if err := a.Processor.Process(r.Context(), req.JobID); err != nil {
		a.Logger.Error().Err(err).Str("job_id", req.JobID).Msg("process job failed")
		a.json(w, http.StatusInternalServerError, processJobResponse{Success: false, Error: err.Error()})
		return
	}
	a.json(w, http.StatusOK, processJobResponse{Success: true})
}
