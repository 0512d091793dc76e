package repo

import (
	"context"
	"database/sql"
	"fmt"

	"contentforge/internal/domain"
	"contentforge/internal/infra"
	"contentforge/internal/sqlinline"
)

// ContentRepositoryPG implements domain.ContentRepository. Records are
// insert-only; there is no update path.
type ContentRepositoryPG struct {
	sql infra.SQLExecutor
}

func NewContentRepository(sqlx infra.SQLExecutor) *ContentRepositoryPG {
	return &ContentRepositoryPG{sql: sqlx}
}

func (r *ContentRepositoryPG) Create(ctx context.Context, content *domain.Content) error {
	_, err := r.sql.Exec(ctx, sqlinline.QInsertContent,
		content.ID,
		content.UserID,
		content.JobID,
		nullableString(content.SourceContentID),
		string(content.ContentType),
		content.Prompt,
		nullableBytes(content.ResultJSON),
		content.CreditsCharged,
		string(content.Status),
		content.ProviderName,
		content.ProviderModel,
		content.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

func (r *ContentRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Content, error) {
	row := r.sql.QueryRow(ctx, sqlinline.QSelectContentByID, id)

	var (
		content     domain.Content
		sourceID    sql.NullString
		contentType string
		status      string
	)
	err := row.Scan(
		&content.ID, &content.UserID, &content.JobID, &sourceID, &contentType, &content.Prompt,
		&content.ResultJSON, &content.CreditsCharged, &status, &content.ProviderName,
		&content.ProviderModel, &content.ErrorMessage, &content.CreatedAt,
	)
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	content.SourceContentID = sourceID.String
	content.ContentType = domain.ContentType(contentType)
	content.Status = domain.JobStatus(status)
	return &content, nil
}

var _ domain.ContentRepository = (*ContentRepositoryPG)(nil)
