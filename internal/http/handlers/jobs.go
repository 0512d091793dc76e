package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"contentforge/internal/domain"
	"contentforge/internal/domain/jsoncfg"
)

type enqueueJobRequest struct {
	ContentType     string         `json:"content_type"`
	Prompt          string         `json:"prompt"`
	SourceContentID string         `json:"source_content_id"`
	ProviderID      int64          `json:"provider_id"`
	Options         map[string]any `json:"options"`
}

type jobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

func (a *App) JobsEnqueue(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req enqueueJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	contentType := domain.ContentType(req.ContentType)
	if !domain.KnownContentType(contentType) {
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported content_type")
		return
	}
	if req.Prompt == "" && req.SourceContentID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt required")
		return
	}
	var optionsJSON []byte
	if len(req.Options) > 0 {
		optionsJSON = jsoncfg.MustMarshal(req.Options)
		if _, err := domain.ParseGenerateOptions(optionsJSON); err != nil {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
	}
	if req.SourceContentID != "" {
		source, err := a.Contents.GetByID(r.Context(), req.SourceContentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.error(w, http.StatusNotFound, "not_found", "source content not found")
				return
			}
			a.Logger.Error().Err(err).Msg("load source content failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to load source content")
			return
		}
		if source.UserID != userID {
			a.error(w, http.StatusForbidden, "forbidden", "not your content")
			return
		}
	}
	job := &domain.Job{
		ID:              uuid.NewString(),
		UserID:          userID,
		ContentType:     contentType,
		Prompt:          req.Prompt,
		SourceContentID: req.SourceContentID,
		ProviderID:      req.ProviderID,
		OptionsJSON:     optionsJSON,
		Status:          domain.JobStatusPending,
	}
	if err := a.Jobs.Create(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Msg("enqueue job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue job")
		return
	}
	a.recordUsage(r, userID, job.ID, "JOB_ENQUEUED", true, map[string]any{
		"content_type": req.ContentType,
		"repurpose":    req.SourceContentID != "",
	})
	a.json(w, http.StatusAccepted, jobResponse{JobID: job.ID, Status: string(job.Status)})
}

func (a *App) JobStatus(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "job_id required")
		return
	}
	job, err := a.Jobs.GetByID(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "job not found")
			return
		}
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("load job failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load job")
		return
	}
	if job.UserID != userID {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	resp := map[string]any{
		"id":           job.ID,
		"user_id":      job.UserID,
		"content_type": job.ContentType,
		"status":       job.Status,
		"created_at":   job.CreatedAt,
	}
	if job.SourceContentID != "" {
		resp["source_content_id"] = job.SourceContentID
	}
	if job.ProviderID != 0 {
		resp["provider_id"] = job.ProviderID
	}
	if job.ErrorMessage != "" {
		resp["error_message"] = job.ErrorMessage
	}
	if job.ContentID != "" {
		resp["content_id"] = job.ContentID
	}
	if job.StartedAt != nil {
		resp["started_at"] = job.StartedAt
	}
	if job.CompletedAt != nil {
		resp["completed_at"] = job.CompletedAt
	}
	a.json(w, http.StatusOK, resp)
}
