package worker

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"contentforge/internal/domain"
	"contentforge/internal/domain/jsoncfg"
	"contentforge/internal/infra"
	"contentforge/internal/providers"
)

// UsageRecorder appends best-effort usage telemetry.
type UsageRecorder interface {
	Record(ctx context.Context, userID, jobID, eventType string, success bool, latencyMS int, properties map[string]any) error
}

// BinaryStore persists binary generation output and returns the storage key.
type BinaryStore interface {
	Write(ctx context.Context, key string, data []byte) (string, error)
}

// ProcessorConfig wires the processor's collaborators explicitly so tests
// can substitute in-memory fakes.
type ProcessorConfig struct {
	Jobs            domain.JobStore
	Providers       domain.ProviderRegistry
	Wallet          domain.WalletLedger
	Contents        domain.ContentRepository
	Generators      *providers.Registry
	Costs           CostTable
	Store           BinaryStore   // optional: binary output falls back inline when nil
	Usage           UsageRecorder // optional
	Logger          infra.Logger
	GenerateTimeout time.Duration
}

// Processor drives one job from claim to a terminal state: resolve the
// provider, build the prompt, call the external API, persist the result,
// settle the wallet. Credits are debited only after a successful external
// call, never before.
type Processor struct {
	jobs       domain.JobStore
	providers  domain.ProviderRegistry
	wallet     domain.WalletLedger
	contents   domain.ContentRepository
	generators *providers.Registry
	costs      CostTable
	store      BinaryStore
	usage      UsageRecorder
	logger     infra.Logger
	timeout    time.Duration
}

func NewProcessor(cfg ProcessorConfig) *Processor {
	return &Processor{
		jobs:       cfg.Jobs,
		providers:  cfg.Providers,
		wallet:     cfg.Wallet,
		contents:   cfg.Contents,
		generators: cfg.Generators,
		costs:      cfg.Costs,
		store:      cfg.Store,
		usage:      cfg.Usage,
		logger:     cfg.Logger,
		timeout:    cfg.GenerateTimeout,
	}
}

// Process handles the job with the given id. A claim conflict (duplicate or
// competing invocation, or a terminal job) is a graceful no-op. A non-nil
// return means partial, unreconciled state: a settlement fault after
// successful generation, or a storage write failure.
func (p *Processor) Process(ctx context.Context, jobID string) error {
	job, err := p.jobs.ClaimByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotClaimable) {
			claimConflicts.Inc()
			p.logger.Debug().Str("job_id", jobID).Msg("processor: job not claimable, skipping")
			return nil
		}
		return fmt.Errorf("claim job: %w", err)
	}
	return p.run(ctx, job)
}

// ProcessNext claims and handles the oldest pending job. The first return
// reports whether a job was claimed at all.
func (p *Processor) ProcessNext(ctx context.Context) (bool, error) {
	job, err := p.jobs.ClaimNext(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotClaimable) {
			return false, nil
		}
		return false, fmt.Errorf("claim next job: %w", err)
	}
	return true, p.run(ctx, job)
}

func (p *Processor) run(ctx context.Context, job *domain.Job) error {
	p.logger.Info().
		Str("job_id", job.ID).
		Str("content_type", string(job.ContentType)).
		Bool("repurpose", job.Repurpose()).
		Msg("processor: claimed job")

	opts, err := domain.ParseGenerateOptions(job.OptionsJSON)
	if err != nil {
		return p.failJob(ctx, job, outcomeInvalidRequest, err.Error())
	}

	prompt := job.Prompt
	if job.Repurpose() {
		source, err := p.contents.GetByID(ctx, job.SourceContentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return p.failJob(ctx, job, outcomeInvalidRequest,
					fmt.Sprintf("source content %s not found", job.SourceContentID))
			}
			return fmt.Errorf("load source content: %w", err)
		}
		prompt = BuildPrompt(job, originalText(source))
	}

	provider, err := p.resolveProvider(ctx, job)
	if err != nil {
		if errors.Is(err, domain.ErrNoProviderConfigured) {
			return p.failJob(ctx, job, outcomeNoProvider, err.Error())
		}
		return fmt.Errorf("resolve provider: %w", err)
	}

	creditsNeeded := p.costs.Cost(job.ContentType)

	// Pre-flight check before any external spend. The authoritative guard
	// is still the conditional decrement at settlement time.
	balance, err := p.wallet.Balance(ctx, job.UserID)
	if err != nil {
		return fmt.Errorf("read balance: %w", err)
	}
	if balance < creditsNeeded {
		msg := fmt.Sprintf("insufficient credits: need %d, have %d", creditsNeeded, balance)
		p.recordUsage(ctx, job, provider, false, 0, outcomeInsufficientCredits)
		return p.failJob(ctx, job, outcomeInsufficientCredits, msg)
	}

	generator, ok := p.generators.Resolve(provider.Name)
	if !ok {
		return p.failJob(ctx, job, outcomeNoProvider, fmt.Sprintf("provider %q not configured", provider.Name))
	}

	genReq := providers.GenerateRequest{
		ContentType: job.ContentType,
		Prompt:      prompt,
		Model:       provider.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if opts.Model != "" {
		genReq.Model = opts.Model
	}

	genCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	start := time.Now()
	result, genErr := generator.Generate(genCtx, genReq)
	latency := time.Since(start)
	generateDuration.WithLabelValues(provider.Name).Observe(latency.Seconds())

	content := &domain.Content{
		ID:              uuid.NewString(),
		UserID:          job.UserID,
		JobID:           job.ID,
		SourceContentID: job.SourceContentID,
		ContentType:     job.ContentType,
		Prompt:          prompt,
		CreditsCharged:  creditsNeeded,
		ProviderName:    provider.Name,
		ProviderModel:   genReq.Model,
	}
	if genErr != nil {
		content.Status = domain.JobStatusFailed
		content.ErrorMessage = genErr.Error()
	} else {
		content.Status = domain.JobStatusCompleted
		content.ResultJSON = p.encodeResult(ctx, job, result)
		if result.Model != "" {
			content.ProviderModel = result.Model
		}
	}
	if err := p.contents.Create(ctx, content); err != nil {
		// No terminal write succeeded: the reclaim sweep will retry.
		return fmt.Errorf("persist content record: %w", err)
	}

	if genErr != nil {
		p.recordUsage(ctx, job, provider, false, int(latency.Milliseconds()), outcomeGenerationFailed)
		if err := p.jobs.MarkFailed(ctx, job.ID, genErr.Error()); err != nil {
			return fmt.Errorf("mark job failed: %w", err)
		}
		jobsProcessed.WithLabelValues(outcomeGenerationFailed).Inc()
		p.logger.Info().Err(genErr).Str("job_id", job.ID).Str("provider", provider.Name).
			Msg("processor: generation failed")
		return nil
	}

	// Settlement. Generation succeeded, so the user keeps the output even
	// if the debit fails; the fault is surfaced for reconciliation instead
	// of being swallowed.
	var settleErr error
	if _, err := p.wallet.Debit(ctx, job.UserID, creditsNeeded, settlementDescription(job)); err != nil {
		settlementFailures.Inc()
		p.logger.Error().Err(err).
			Str("job_id", job.ID).
			Str("user_id", job.UserID).
			Int("credits", creditsNeeded).
			Msg("processor: settlement failed after successful generation")
		settleErr = fmt.Errorf("%w: job %s: %v", domain.ErrSettlementFailed, job.ID, err)
	}

	if err := p.jobs.MarkCompleted(ctx, job.ID, content.ID); err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	jobsProcessed.WithLabelValues(outcomeCompleted).Inc()
	p.recordUsage(ctx, job, provider, true, int(latency.Milliseconds()), outcomeCompleted)
	p.logger.Info().
		Str("job_id", job.ID).
		Str("content_id", content.ID).
		Str("provider", provider.Name).
		Int("credits", creditsNeeded).
		Dur("took", latency).
		Msg("processor: job completed")
	return settleErr
}

// resolveProvider honors an explicit provider pin when the job carries one,
// otherwise falls back to the active default for the content type.
func (p *Processor) resolveProvider(ctx context.Context, job *domain.Job) (*domain.Provider, error) {
	if job.ProviderID != 0 {
		provider, err := p.providers.GetByID(ctx, job.ProviderID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: provider %d not found", domain.ErrNoProviderConfigured, job.ProviderID)
			}
			return nil, err
		}
		if !provider.IsActive || !provider.Supports(job.ContentType) {
			return nil, fmt.Errorf("%w: provider %q cannot generate %s", domain.ErrNoProviderConfigured, provider.Name, job.ContentType)
		}
		return provider, nil
	}
	provider, err := p.providers.DefaultFor(ctx, job.ContentType)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no default provider for content type %q", domain.ErrNoProviderConfigured, job.ContentType)
		}
		return nil, err
	}
	return provider, nil
}

// encodeResult builds the opaque result payload. Binary output goes to the
// file store; when no store is configured or the write fails, the payload is
// embedded inline so the result is never lost.
func (p *Processor) encodeResult(ctx context.Context, job *domain.Job, result *providers.GenerateResult) []byte {
	payload := map[string]any{}
	if result.PromptTokens > 0 || result.CompletionTokens > 0 {
		payload["prompt_tokens"] = result.PromptTokens
		payload["completion_tokens"] = result.CompletionTokens
	}
	if len(result.Data) == 0 {
		payload["text"] = result.Text
		return jsoncfg.MustMarshal(payload)
	}

	payload["mime"] = result.MIME
	payload["size_bytes"] = len(result.Data)
	if p.store != nil {
		key := fmt.Sprintf("generated/%s/output%s", job.ID, extensionForMIME(result.MIME))
		savedKey, err := p.store.Write(ctx, key, result.Data)
		if err == nil {
			payload["storage_key"] = savedKey
			return jsoncfg.MustMarshal(payload)
		}
		p.logger.Warn().Err(err).Str("job_id", job.ID).Msg("processor: persist binary output failed, embedding inline")
	}
	payload["data_base64"] = base64.StdEncoding.EncodeToString(result.Data)
	return jsoncfg.MustMarshal(payload)
}

func (p *Processor) failJob(ctx context.Context, job *domain.Job, outcome, msg string) error {
	if err := p.jobs.MarkFailed(ctx, job.ID, msg); err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	jobsProcessed.WithLabelValues(outcome).Inc()
	p.logger.Info().Str("job_id", job.ID).Str("reason", msg).Msg("processor: job failed")
	return nil
}

func (p *Processor) recordUsage(ctx context.Context, job *domain.Job, provider *domain.Provider, success bool, latencyMS int, outcome string) {
	if p.usage == nil {
		return
	}
	props := map[string]any{
		"content_type": string(job.ContentType),
		"outcome":      outcome,
	}
	if provider != nil {
		props["provider"] = provider.Name
	}
	if err := p.usage.Record(ctx, job.UserID, job.ID, "job_processed", success, latencyMS, props); err != nil {
		p.logger.Warn().Err(err).Str("job_id", job.ID).Msg("processor: record usage event failed")
	}
}

// settlementDescription is the human-readable ledger line for the debit.
func settlementDescription(job *domain.Job) string {
	if job.Repurpose() {
		return fmt.Sprintf("Repurpose to %s", job.ContentType)
	}
	return fmt.Sprintf("Generate %s", job.ContentType)
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav":
		return ".wav"
	case "video/mp4":
		return ".mp4"
	case "text/plain":
		return ".txt"
	default:
		return ".bin"
	}
}
