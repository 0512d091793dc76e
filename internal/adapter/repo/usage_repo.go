package repo

import (
	"context"

	"contentforge/internal/domain/jsoncfg"
	"contentforge/internal/infra"
	"contentforge/internal/sqlinline"
)

// UsageRecorder appends usage events. Events are best-effort telemetry: the
// callers log failures but never fail a request over them.
type UsageRecorder struct {
	sql infra.SQLExecutor
}

func NewUsageRecorder(sqlx infra.SQLExecutor) *UsageRecorder {
	return &UsageRecorder{sql: sqlx}
}

func (r *UsageRecorder) Record(ctx context.Context, userID, jobID, eventType string, success bool, latencyMS int, properties map[string]any) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertUsageEvent,
		userID,
		nullableString(jobID),
		eventType,
		success,
		latencyMS,
		jsoncfg.MustMarshal(properties),
	)
	return err
}
