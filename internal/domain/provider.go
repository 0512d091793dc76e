package domain

import "time"

// Provider describes an external content-generation backend. Rows are
// managed out-of-band by an administrator and are read-only here.
type Provider struct {
	ID           int64
	Name         string // generator client key, e.g. "openai", "gemini"
	Model        string
	ContentTypes []ContentType
	PricePerUnit int
	IsDefault    bool
	IsActive     bool
	CreatedAt    time.Time
}

// Supports reports whether the provider can generate the given content type.
func (p *Provider) Supports(t ContentType) bool {
	for _, ct := range p.ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}
