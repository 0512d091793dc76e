// Package providers holds the clients for external generation backends. A
// provider row in the database names one of the registered clients; the
// worker resolves the row to a client and issues a single Generate call per
// job.
package providers

import (
	"context"

	"contentforge/internal/domain"
)

// GenerateRequest carries everything one external call needs. Model is the
// provider row's model unless the job carried an override.
type GenerateRequest struct {
	ContentType domain.ContentType
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// GenerateResult is the opaque output of one call. Text generation fills
// Text; image/audio/video generation fills Data and MIME.
type GenerateResult struct {
	Text             string
	Data             []byte
	MIME             string
	Model            string
	PromptTokens     int
	CompletionTokens int
}

// Generator is one external generation backend. Implementations return an
// error for any transport, status, or payload fault; they never panic out of
// the call.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// Registry maps provider names (the providers.name column) to clients.
type Registry struct {
	clients map[string]Generator
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Generator)}
}

func (r *Registry) Register(name string, g Generator) {
	r.clients[name] = g
}

func (r *Registry) Resolve(name string) (Generator, bool) {
	g, ok := r.clients[name]
	return g, ok
}
