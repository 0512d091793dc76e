package domain

import "time"

// ContentType enumerates the generation targets a job may request.
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeAudio ContentType = "audio"
	ContentTypeVideo ContentType = "video"
)

// KnownContentType reports whether t is a supported generation target.
func KnownContentType(t ContentType) bool {
	switch t {
	case ContentTypeText, ContentTypeImage, ContentTypeAudio, ContentTypeVideo:
		return true
	}
	return false
}

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is one queued request to produce or repurpose content. A job is
// created pending, claimed exclusively by a single worker invocation, and
// moved to exactly one terminal state.
type Job struct {
	ID              string
	UserID          string
	ContentType     ContentType
	Prompt          string
	SourceContentID string // non-empty when the job repurposes prior output
	ProviderID      int64  // non-zero when the caller pinned a provider
	OptionsJSON     []byte
	Status          JobStatus
	ErrorMessage    string
	ContentID       string // generated content reference, set on completion
	CreatedAt       time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
}

// Repurpose reports whether the job derives from an earlier content record.
func (j *Job) Repurpose() bool {
	return j.SourceContentID != ""
}
