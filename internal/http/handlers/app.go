package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"contentforge/internal/domain"
	"contentforge/internal/infra"
	"contentforge/internal/middleware"
)

// JobProcessor runs one claimed job to a terminal state. Implemented by the
// worker package; faked in tests.
type JobProcessor interface {
	Process(ctx context.Context, jobID string) error
}

// UsageRecorder appends best-effort usage telemetry from the request path.
type UsageRecorder interface {
	Record(ctx context.Context, userID, jobID, eventType string, success bool, latencyMS int, properties map[string]any) error
}

// ArtifactReader loads stored binary output for archive downloads.
type ArtifactReader interface {
	Read(ctx context.Context, key string) ([]byte, error)
}

type App struct {
	Logger    infra.Logger
	Jobs      domain.JobStore
	Providers domain.ProviderRegistry
	Wallet    domain.WalletLedger
	Contents  domain.ContentRepository
	Usage     UsageRecorder
	Artifacts ArtifactReader
	Processor JobProcessor
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, message string) {
	a.json(w, code, map[string]any{
		"error":   kind,
		"message": message,
	})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}

func (a *App) recordUsage(r *http.Request, userID, jobID, eventType string, success bool, properties map[string]any) {
	if a.Usage == nil {
		return
	}
	if properties == nil {
		properties = map[string]any{}
	}
	if country := middleware.CountryFromContext(r.Context()); country != "" {
		properties["country"] = country
	}
	if locale := middleware.LocaleFromContext(r.Context()); locale != "" {
		properties["locale"] = locale
	}
	if err := a.Usage.Record(r.Context(), userID, jobID, eventType, success, 0, properties); err != nil {
		a.Logger.Warn().Err(err).Str("event_type", eventType).Msg("usage event dropped")
	}
}
