package domain

import (
	"context"
	"time"
)

// JobStore is the durable queue of generation requests. Claim methods are
// atomic: at most one caller transitions a given job out of pending.
type JobStore interface {
	Create(ctx context.Context, job *Job) error
	GetByID(ctx context.Context, jobID string) (*Job, error)
	// ClaimByID atomically moves the job to processing if and only if it is
	// pending and not locked by another worker; otherwise ErrNotClaimable.
	ClaimByID(ctx context.Context, jobID string) (*Job, error)
	// ClaimNext claims the oldest pending job, ErrNotClaimable when none.
	ClaimNext(ctx context.Context) (*Job, error)
	MarkCompleted(ctx context.Context, jobID, contentID string) error
	MarkFailed(ctx context.Context, jobID, errMsg string) error
	// ReclaimStale resets processing jobs whose claim is older than the
	// threshold back to pending, returning the affected ids.
	ReclaimStale(ctx context.Context, olderThan time.Duration) ([]string, error)
}

// ProviderRegistry resolves which provider handles a request. Pure reads.
type ProviderRegistry interface {
	ListActive(ctx context.Context) ([]Provider, error)
	GetByID(ctx context.Context, id int64) (*Provider, error)
	// DefaultFor returns the active default provider supporting the content
	// type; ties break on lowest id. ErrNotFound when none is configured.
	DefaultFor(ctx context.Context, t ContentType) (*Provider, error)
}

// WalletLedger maintains the credit balance invariant under concurrent
// debits. Debit is race-safe at the storage layer, not read-then-write.
type WalletLedger interface {
	Balance(ctx context.Context, userID string) (int, error)
	// Debit rejects with ErrInsufficientCredits rather than overdraw.
	Debit(ctx context.Context, userID string, amount int, description string) (*Transaction, error)
	Credit(ctx context.Context, userID string, amount int, description string) (*Transaction, error)
	Transactions(ctx context.Context, userID string, limit int) ([]Transaction, error)
}

// ContentRepository persists generated content records.
type ContentRepository interface {
	Create(ctx context.Context, content *Content) error
	GetByID(ctx context.Context, id string) (*Content, error)
}
