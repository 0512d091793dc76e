package domain

import "time"

// Content is the immutable record produced by one job: the prompt that was
// sent, the opaque result payload, what was charged, and which provider
// produced it. Written exactly once at job completion, success or failure.
type Content struct {
	ID              string
	UserID          string
	JobID           string
	SourceContentID string // set when this record was repurposed from prior output
	ContentType     ContentType
	Prompt          string
	ResultJSON      []byte
	CreditsCharged  int
	Status          JobStatus
	ProviderName    string
	ProviderModel   string
	ErrorMessage    string
	CreatedAt       time.Time
}
