package worker

import (
	"contentforge/internal/domain"
	"contentforge/internal/infra"
)

// CostTable maps a content type to the credits one generation costs. The
// table is configuration, not a formula: operators override the entries via
// environment variables.
type CostTable struct {
	costs    map[domain.ContentType]int
	fallback int
}

// DefaultCostTable returns the stock pricing.
func DefaultCostTable() CostTable {
	return CostTable{
		costs: map[domain.ContentType]int{
			domain.ContentTypeText:  1,
			domain.ContentTypeAudio: 3,
			domain.ContentTypeImage: 5,
			domain.ContentTypeVideo: 20,
		},
		fallback: 2,
	}
}

// CostTableFromConfig builds the table from the loaded configuration.
func CostTableFromConfig(cfg *infra.Config) CostTable {
	return CostTable{
		costs: map[domain.ContentType]int{
			domain.ContentTypeText:  cfg.CreditCostText,
			domain.ContentTypeAudio: cfg.CreditCostAudio,
			domain.ContentTypeImage: cfg.CreditCostImage,
			domain.ContentTypeVideo: cfg.CreditCostVideo,
		},
		fallback: cfg.CreditCostFallback,
	}
}

// Cost returns the credits required for the content type, falling back to
// the generic price for anything outside the table.
func (t CostTable) Cost(contentType domain.ContentType) int {
	if cost, ok := t.costs[contentType]; ok {
		return cost
	}
	return t.fallback
}
