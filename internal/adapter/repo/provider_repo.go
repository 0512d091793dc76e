package repo

import (
	"context"
	"fmt"

	"contentforge/internal/domain"
	"contentforge/internal/infra"
	"contentforge/internal/sqlinline"
)

// ProviderRegistryPG implements domain.ProviderRegistry. Provider rows are
// administered out-of-band; everything here is a read.
type ProviderRegistryPG struct {
	sql infra.SQLExecutor
}

func NewProviderRegistry(sqlx infra.SQLExecutor) *ProviderRegistryPG {
	return &ProviderRegistryPG{sql: sqlx}
}

func (r *ProviderRegistryPG) ListActive(ctx context.Context) ([]domain.Provider, error) {
	rows, err := r.sql.Query(ctx, sqlinline.QListActiveProviders)
	if err != nil {
		return nil, fmt.Errorf("list providers: %w", err)
	}
	defer rows.Close()

	var providers []domain.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		providers = append(providers, *p)
	}
	return providers, rows.Err()
}

func (r *ProviderRegistryPG) GetByID(ctx context.Context, id int64) (*domain.Provider, error) {
	p, err := scanProvider(r.sql.QueryRow(ctx, sqlinline.QSelectProviderByID, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProviderRegistryPG) DefaultFor(ctx context.Context, t domain.ContentType) (*domain.Provider, error) {
	p, err := scanProvider(r.sql.QueryRow(ctx, sqlinline.QSelectDefaultProvider, string(t)))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProvider(row interface{ Scan(...any) error }) (*domain.Provider, error) {
	var (
		p     domain.Provider
		types []string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Model, &types, &p.PricePerUnit, &p.IsDefault, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.ContentTypes = make([]domain.ContentType, 0, len(types))
	for _, t := range types {
		p.ContentTypes = append(p.ContentTypes, domain.ContentType(t))
	}
	return &p, nil
}

var _ domain.ProviderRegistry = (*ProviderRegistryPG)(nil)
