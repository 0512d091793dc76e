package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrNotClaimable signals a claim attempt on a job that is locked by
	// another worker, already terminal, or absent. Callers treat it as a
	// graceful no-op, not a failure.
	ErrNotClaimable = errors.New("job not claimable")

	// ErrNoProviderConfigured signals that no active default provider
	// exists for the requested content type.
	ErrNoProviderConfigured = errors.New("no provider configured")

	// ErrInsufficientCredits signals a debit that would overdraw the
	// wallet, or a pre-flight check that found the balance short.
	ErrInsufficientCredits = errors.New("insufficient credits")

	// ErrGenerationFailed wraps an external provider call failure.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrSettlementFailed signals that generation succeeded but the wallet
	// debit did not. The user received billable output without a charge,
	// so this must reach operational alerting.
	ErrSettlementFailed = errors.New("settlement failed")

	ErrInvalidPrompt = errors.New("invalid prompt")
)
