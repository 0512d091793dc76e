package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"contentforge/internal/domain"
	"contentforge/internal/infra"
	"contentforge/internal/sqlinline"
)

// JobStorePG implements domain.JobStore on PostgreSQL. Claim exclusivity
// comes from the single-statement CTEs in sqlinline: the pending check, the
// row lock (skip locked) and the transition to processing all happen inside
// one statement, so two concurrent claims can never both win.
type JobStorePG struct {
	sql infra.SQLExecutor
}

func NewJobStore(sqlx infra.SQLExecutor) *JobStorePG {
	return &JobStorePG{sql: sqlx}
}

func (r *JobStorePG) Create(ctx context.Context, job *domain.Job) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertJob,
		job.ID,
		job.UserID,
		string(job.ContentType),
		job.Prompt,
		nullableString(job.SourceContentID),
		nullableInt64(job.ProviderID),
		nullableBytes(job.OptionsJSON),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobStorePG) GetByID(ctx context.Context, jobID string) (*domain.Job, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectJobByID, jobID)

	var (
		job         domain.Job
		contentType string
		status      string
		sourceID    sql.NullString
		providerID  sql.NullInt64
		errMsg      sql.NullString
		contentID   sql.NullString
		startedAt   sql.NullTime
		completedAt sql.NullTime
	)
	err := row.Scan(
		&job.ID, &job.UserID, &contentType, &job.Prompt, &sourceID, &providerID, &job.OptionsJSON,
		&status, &errMsg, &contentID, &job.CreatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	job.ContentType = domain.ContentType(contentType)
	job.Status = domain.JobStatus(status)
	job.SourceContentID = sourceID.String
	job.ProviderID = providerID.Int64
	job.ErrorMessage = errMsg.String
	job.ContentID = contentID.String
	job.StartedAt = nullableTime(startedAt)
	job.CompletedAt = nullableTime(completedAt)
	return &job, nil
}

// ClaimByID claims one specific job: the path taken by the HTTP trigger.
func (r *JobStorePG) ClaimByID(ctx context.Context, jobID string) (*domain.Job, error) {
	return r.scanClaim(r.sql.QueryRow(ctx, sqlinline.QClaimJobByID, jobID))
}

// ClaimNext claims the oldest pending job: the path taken by the poll loop.
func (r *JobStorePG) ClaimNext(ctx context.Context) (*domain.Job, error) {
	return r.scanClaim(r.sql.QueryRow(ctx, sqlinline.QClaimNextJob))
}

func (r *JobStorePG) scanClaim(row interface{ Scan(...any) error }) (*domain.Job, error) {
	var (
		job         domain.Job
		contentType string
		status      string
		sourceID    sql.NullString
		providerID  sql.NullInt64
		startedAt   sql.NullTime
	)
	err := row.Scan(
		&job.ID, &job.UserID, &contentType, &job.Prompt, &sourceID, &providerID, &job.OptionsJSON,
		&status, &job.CreatedAt, &startedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotClaimable
		}
		return nil, err
	}
	job.ContentType = domain.ContentType(contentType)
	job.Status = domain.JobStatus(status)
	job.SourceContentID = sourceID.String
	job.ProviderID = providerID.Int64
	job.StartedAt = nullableTime(startedAt)
	return &job, nil
}

func (r *JobStorePG) MarkCompleted(ctx context.Context, jobID, contentID string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QMarkJobCompleted, jobID, contentID)
	if err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark job completed: job %s not in processing state", jobID)
	}
	return nil
}

func (r *JobStorePG) MarkFailed(ctx context.Context, jobID, errMsg string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QMarkJobFailed, jobID, errMsg)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark job failed: job %s not in processing state", jobID)
	}
	return nil
}

func (r *JobStorePG) ReclaimStale(ctx context.Context, olderThan time.Duration) ([]string, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QReclaimStaleJobs, int(olderThan.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("reclaim stale jobs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}

func nullableTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

var _ domain.JobStore = (*JobStorePG)(nil)
