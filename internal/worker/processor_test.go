package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contentforge/internal/domain"
	"contentforge/internal/providers"
)

type fakeJobStore struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

func newFakeJobStore(jobs ...*domain.Job) *fakeJobStore {
	s := &fakeJobStore{jobs: map[string]*domain.Job{}}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (s *fakeJobStore) Create(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
	return nil
}

func (s *fakeJobStore) GetByID(_ context.Context, jobID string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *job
	return &copied, nil
}

func (s *fakeJobStore) ClaimByID(_ context.Context, jobID string) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok || job.Status != domain.JobStatusPending {
		return nil, domain.ErrNotClaimable
	}
	job.Status = domain.JobStatusProcessing
	copied := *job
	return &copied, nil
}

func (s *fakeJobStore) ClaimNext(_ context.Context) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.Status == domain.JobStatusPending {
			job.Status = domain.JobStatusProcessing
			copied := *job
			return &copied, nil
		}
	}
	return nil, domain.ErrNotClaimable
}

func (s *fakeJobStore) MarkCompleted(_ context.Context, jobID, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[jobID]
	job.Status = domain.JobStatusCompleted
	job.ContentID = contentID
	return nil
}

func (s *fakeJobStore) MarkFailed(_ context.Context, jobID, errMsg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[jobID]
	job.Status = domain.JobStatusFailed
	job.ErrorMessage = errMsg
	return nil
}

func (s *fakeJobStore) ReclaimStale(context.Context, time.Duration) ([]string, error) {
	return nil, nil
}

func (s *fakeJobStore) get(jobID string) domain.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.jobs[jobID]
}

type fakeProviderRegistry struct {
	providers []domain.Provider
}

func (r *fakeProviderRegistry) ListActive(context.Context) ([]domain.Provider, error) {
	return r.providers, nil
}

func (r *fakeProviderRegistry) GetByID(_ context.Context, id int64) (*domain.Provider, error) {
	for i := range r.providers {
		if r.providers[i].ID == id {
			return &r.providers[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProviderRegistry) DefaultFor(_ context.Context, t domain.ContentType) (*domain.Provider, error) {
	var best *domain.Provider
	for i := range r.providers {
		p := &r.providers[i]
		if !p.IsActive || !p.IsDefault || !p.Supports(t) {
			continue
		}
		if best == nil || p.ID < best.ID {
			best = p
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best, nil
}

type fakeWallet struct {
	mu      sync.Mutex
	balance int
	debits  []domain.Transaction
	fail    error
}

func (w *fakeWallet) Balance(_ context.Context, _ string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance, nil
}

func (w *fakeWallet) Debit(_ context.Context, userID string, amount int, description string) (*domain.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		return nil, w.fail
	}
	if w.balance < amount {
		return nil, domain.ErrInsufficientCredits
	}
	w.balance -= amount
	tx := domain.Transaction{UserID: userID, Amount: -amount, Description: description, BalanceAfter: w.balance}
	w.debits = append(w.debits, tx)
	return &tx, nil
}

func (w *fakeWallet) Credit(_ context.Context, userID string, amount int, description string) (*domain.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance += amount
	return &domain.Transaction{UserID: userID, Amount: amount, BalanceAfter: w.balance}, nil
}

func (w *fakeWallet) Transactions(context.Context, string, int) ([]domain.Transaction, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.debits, nil
}

type fakeContentRepo struct {
	mu       sync.Mutex
	contents map[string]*domain.Content
	fail     error
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{contents: map[string]*domain.Content{}}
}

func (r *fakeContentRepo) Create(_ context.Context, content *domain.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	copied := *content
	r.contents[content.ID] = &copied
	return nil
}

func (r *fakeContentRepo) GetByID(_ context.Context, id string) (*domain.Content, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	content, ok := r.contents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *content
	return &copied, nil
}

func (r *fakeContentRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.contents)
}

func (r *fakeContentRepo) only() *domain.Content {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.contents {
		return c
	}
	return nil
}

type countingGenerator struct {
	mu      sync.Mutex
	calls   int
	prompts []string
	result  *providers.GenerateResult
	err     error
}

func (g *countingGenerator) Generate(_ context.Context, req providers.GenerateRequest) (*providers.GenerateResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, req.Prompt)
	if g.err != nil {
		return nil, g.err
	}
	if g.result != nil {
		return g.result, nil
	}
	return &providers.GenerateResult{Text: "generated output", Model: req.Model}, nil
}

func (g *countingGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type processorHarness struct {
	jobs      *fakeJobStore
	wallet    *fakeWallet
	contents  *fakeContentRepo
	generator *countingGenerator
	processor *Processor
}

func textProvider() domain.Provider {
	return domain.Provider{
		ID:           1,
		Name:         "openai",
		Model:        "gpt-4o-mini",
		ContentTypes: []domain.ContentType{domain.ContentTypeText, domain.ContentTypeImage, domain.ContentTypeAudio},
		PricePerUnit: 1,
		IsDefault:    true,
		IsActive:     true,
	}
}

func newHarness(balance int, jobs ...*domain.Job) *processorHarness {
	h := &processorHarness{
		jobs:      newFakeJobStore(jobs...),
		wallet:    &fakeWallet{balance: balance},
		contents:  newFakeContentRepo(),
		generator: &countingGenerator{},
	}
	registry := providers.NewRegistry()
	registry.Register("openai", h.generator)
	h.processor = NewProcessor(ProcessorConfig{
		Jobs:            h.jobs,
		Providers:       &fakeProviderRegistry{providers: []domain.Provider{textProvider()}},
		Wallet:          h.wallet,
		Contents:        h.contents,
		Generators:      registry,
		Costs:           DefaultCostTable(),
		Logger:          zerolog.Nop(),
		GenerateTimeout: 5 * time.Second,
	})
	return h
}

func pendingTextJob(id string) *domain.Job {
	return &domain.Job{
		ID:          id,
		UserID:      "user-1",
		ContentType: domain.ContentTypeText,
		Prompt:      "write a product description",
		Status:      domain.JobStatusPending,
	}
}

func TestProcessCompletesJobAndSettlesExactCost(t *testing.T) {
	h := newHarness(10, pendingTextJob("job-1"))

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	job := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	require.NotEmpty(t, job.ContentID)

	content := h.contents.only()
	require.NotNil(t, content)
	assert.Equal(t, job.ContentID, content.ID)
	assert.Equal(t, domain.JobStatusCompleted, content.Status)
	assert.Equal(t, 1, content.CreditsCharged)

	var payload struct {
		Text string `json:"text"`
	}
	require.NoError(t, json.Unmarshal(content.ResultJSON, &payload))
	assert.Equal(t, "generated output", payload.Text)

	require.Len(t, h.wallet.debits, 1)
	assert.Equal(t, -1, h.wallet.debits[0].Amount)
	assert.Equal(t, 9, h.wallet.balance)
	assert.Equal(t, "Generate text", h.wallet.debits[0].Description)
}

func TestProcessInsufficientCreditsFailsWithoutGenerating(t *testing.T) {
	h := newHarness(0, pendingTextJob("job-1"))

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	job := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, "insufficient credits")

	assert.Zero(t, h.generator.callCount(), "generator must not be called")
	assert.Zero(t, h.contents.count(), "no content record for a pre-flight failure")
	assert.Empty(t, h.wallet.debits)
}

func TestProcessGenerationFailureDoesNotCharge(t *testing.T) {
	h := newHarness(10, pendingTextJob("job-1"))
	h.generator.err = errors.New("upstream 503")

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	job := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Equal(t, "upstream 503", job.ErrorMessage)

	content := h.contents.only()
	require.NotNil(t, content, "failed generations still leave an audit record")
	assert.Equal(t, domain.JobStatusFailed, content.Status)
	assert.Equal(t, "upstream 503", content.ErrorMessage)

	assert.Empty(t, h.wallet.debits, "no debit on failure")
	assert.Equal(t, 10, h.wallet.balance)
}

func TestProcessSettlementFailureKeepsOutputAndSurfacesFault(t *testing.T) {
	h := newHarness(10, pendingTextJob("job-1"))
	h.wallet.fail = errors.New("ledger write timeout")

	err := h.processor.Process(context.Background(), "job-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSettlementFailed))

	job := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusCompleted, job.Status, "user keeps the output")
	assert.Equal(t, 1, h.contents.count())
}

func TestProcessClaimConflictIsGracefulNoOp(t *testing.T) {
	job := pendingTextJob("job-1")
	job.Status = domain.JobStatusProcessing
	h := newHarness(10, job)

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Zero(t, h.generator.callCount())
	assert.Zero(t, h.contents.count())
}

func TestProcessUnknownJobIsGracefulNoOp(t *testing.T) {
	h := newHarness(10)

	err := h.processor.Process(context.Background(), "missing")
	require.NoError(t, err)
	assert.Zero(t, h.generator.callCount())
}

func TestProcessConcurrentInvocationsGenerateOnce(t *testing.T) {
	h := newHarness(10, pendingTextJob("job-1"))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = h.processor.Process(context.Background(), "job-1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "invocation %d", i)
	}
	assert.Equal(t, 1, h.generator.callCount(), "exactly one invocation must win the claim")
	require.Len(t, h.wallet.debits, 1, "the job is charged exactly once")
	assert.Equal(t, 9, h.wallet.balance)
}

func TestProcessRepurposeBuildsPromptFromSource(t *testing.T) {
	job := pendingTextJob("job-1")
	job.SourceContentID = "content-src"
	job.Prompt = "make it punchy"
	h := newHarness(10, job)
	require.NoError(t, h.contents.Create(context.Background(), &domain.Content{
		ID:         "content-src",
		UserID:     "user-1",
		JobID:      "job-0",
		ResultJSON: []byte(`{"text":"the original article"}`),
		Status:     domain.JobStatusCompleted,
	}))

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	require.Equal(t, 1, h.generator.callCount())
	prompt := h.generator.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "Repurpose the following content for a blog post."), "got prompt %q", prompt)
	assert.Contains(t, prompt, "the original article")
	assert.Contains(t, prompt, "Additional instructions: make it punchy")

	job1 := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusCompleted, job1.Status)

	content, err := h.contents.GetByID(context.Background(), job1.ContentID)
	require.NoError(t, err)
	assert.Equal(t, "content-src", content.SourceContentID)
	assert.Equal(t, "Repurpose to text", h.wallet.debits[0].Description)
}

func TestProcessRepurposeMissingSourceFailsJob(t *testing.T) {
	job := pendingTextJob("job-1")
	job.SourceContentID = "gone"
	h := newHarness(10, job)

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	got := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "gone")
	assert.Zero(t, h.generator.callCount())
}

func TestProcessPinnedProviderMustSupportContentType(t *testing.T) {
	job := pendingTextJob("job-1")
	job.ContentType = domain.ContentTypeVideo
	job.ProviderID = 1 // openai: no video support
	h := newHarness(100, job)

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	got := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "cannot generate video")
	assert.Zero(t, h.generator.callCount())
}

func TestProcessNoDefaultProviderFailsJob(t *testing.T) {
	job := pendingTextJob("job-1")
	job.ContentType = domain.ContentTypeVideo
	h := newHarness(100, job)

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	got := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "no default provider")
}

func TestProcessInvalidOptionsFailsJob(t *testing.T) {
	job := pendingTextJob("job-1")
	job.OptionsJSON = []byte(`{"temperature": 9}`)
	h := newHarness(10, job)

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	got := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "temperature")
	assert.Zero(t, h.generator.callCount())
}

func TestProcessModelOverrideFromOptions(t *testing.T) {
	job := pendingTextJob("job-1")
	job.OptionsJSON = []byte(`{"model":"gpt-4o"}`)
	h := newHarness(10, job)
	h.generator.result = &providers.GenerateResult{Text: "out", Model: "gpt-4o"}

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	content := h.contents.only()
	require.NotNil(t, content)
	assert.Equal(t, "gpt-4o", content.ProviderModel)
}

func TestProcessContentPersistFailureLeavesJobForReclaim(t *testing.T) {
	h := newHarness(10, pendingTextJob("job-1"))
	h.contents.fail = errors.New("db down")

	err := h.processor.Process(context.Background(), "job-1")
	require.Error(t, err)

	job := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusProcessing, job.Status, "stays claimed until the reclaim sweep")
	assert.Empty(t, h.wallet.debits)
}

func TestProcessNextReportsQueueState(t *testing.T) {
	h := newHarness(10, pendingTextJob("job-1"))

	claimed, err := h.processor.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = h.processor.ProcessNext(context.Background())
	require.NoError(t, err)
	assert.False(t, claimed, "empty queue is not an error")
}

func TestProcessUnregisteredGeneratorFailsJob(t *testing.T) {
	h := newHarness(10, pendingTextJob("job-1"))
	// Replace the registry with an empty one: provider row exists but no
	// client was configured for it.
	h.processor = NewProcessor(ProcessorConfig{
		Jobs:            h.jobs,
		Providers:       &fakeProviderRegistry{providers: []domain.Provider{textProvider()}},
		Wallet:          h.wallet,
		Contents:        h.contents,
		Generators:      providers.NewRegistry(),
		Costs:           DefaultCostTable(),
		Logger:          zerolog.Nop(),
		GenerateTimeout: time.Second,
	})

	err := h.processor.Process(context.Background(), "job-1")
	require.NoError(t, err)

	job := h.jobs.get("job-1")
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Contains(t, job.ErrorMessage, fmt.Sprintf("provider %q not configured", "openai"))
}
