package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"contentforge/internal/domain"
	"contentforge/pkg/zip"
)

func (a *App) ContentByID(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	contentID := chi.URLParam(r, "content_id")
	if contentID == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "content_id required")
		return
	}
	content, err := a.Contents.GetByID(r.Context(), contentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "content not found")
			return
		}
		a.Logger.Error().Err(err).Str("content_id", contentID).Msg("load content failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load content")
		return
	}
	if content.UserID != userID {
		a.error(w, http.StatusNotFound, "not_found", "content not found")
		return
	}
	resp := map[string]any{
		"id":              content.ID,
		"job_id":          content.JobID,
		"content_type":    content.ContentType,
		"prompt":          content.Prompt,
		"status":          content.Status,
		"credits_charged": content.CreditsCharged,
		"provider_name":   content.ProviderName,
		"provider_model":  content.ProviderModel,
		"created_at":      content.CreatedAt,
		"result":          json.RawMessage(content.ResultJSON),
	}
	if content.SourceContentID != "" {
		resp["source_content_id"] = content.SourceContentID
	}
	if content.ErrorMessage != "" {
		resp["error_message"] = content.ErrorMessage
	}
	a.json(w, http.StatusOK, resp)
}

// JobArtifacts streams the job's generated output as a zip archive. Text
// results archive as a .txt entry; binary results are loaded from the file
// store or decoded from the inline payload.
func (a *App) JobArtifacts(w http.ResponseWriter, r *http.Request) {
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
	if err != nil || job.UserID != userID {
		a.error(w, http.StatusNotFound, "not_found", "job not found")
		return
	}
	if job.Status != domain.JobStatusCompleted || job.ContentID == "" {
		a.error(w, http.StatusConflict, "not_ready", "job has no completed output")
		return
	}
	content, err := a.Contents.GetByID(r.Context(), job.ContentID)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("load job content failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load content")
		return
	}
	artifact, err := a.artifactFor(r, content)
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("assemble artifact failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to assemble artifact")
		return
	}
	archive, err := zip.ArchiveArtifacts([]zip.Artifact{*artifact})
	if err != nil {
		a.Logger.Error().Err(err).Str("job_id", jobID).Msg("archive artifact failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build archive")
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "job-"+jobID+".zip"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

type resultPayload struct {
	Text       string `json:"text"`
	MIME       string `json:"mime"`
	StorageKey string `json:"storage_key"`
	DataBase64 string `json:"data_base64"`
}

func (a *App) artifactFor(r *http.Request, content *domain.Content) (*zip.Artifact, error) {
	var payload resultPayload
	if err := json.Unmarshal(content.ResultJSON, &payload); err != nil {
		return nil, fmt.Errorf("decode result payload: %w", err)
	}
	switch {
	case payload.StorageKey != "":
		if a.Artifacts == nil {
			return nil, errors.New("no artifact store configured")
		}
		data, err := a.Artifacts.Read(r.Context(), payload.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("read stored artifact: %w", err)
		}
		return &zip.Artifact{Filename: path.Base(payload.StorageKey), MIME: payload.MIME, Data: data}, nil
	case payload.DataBase64 != "":
		data, err := base64.StdEncoding.DecodeString(payload.DataBase64)
		if err != nil {
			return nil, fmt.Errorf("decode inline artifact: %w", err)
		}
		return &zip.Artifact{Filename: "output", MIME: payload.MIME, Data: data}, nil
	default:
		return &zip.Artifact{Filename: "output.txt", MIME: "text/plain", Data: []byte(payload.Text)}, nil
	}
}
