package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"contentforge/internal/domain"
	"contentforge/internal/middleware"
)

const testUserID = "8d7f3a4e-1b2c-4d5e-8f90-123456789abc"

func newRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, testUserID)
	return req.WithContext(ctx)
}

type fakeJobs struct {
	created map[string]*domain.Job
	jobs    map[string]*domain.Job
	fail    error
}

func newFakeJobs(jobs ...*domain.Job) *fakeJobs {
	f := &fakeJobs{created: map[string]*domain.Job{}, jobs: map[string]*domain.Job{}}
	for _, j := range jobs {
		f.jobs[j.ID] = j
	}
	return f
}

func (f *fakeJobs) Create(_ context.Context, job *domain.Job) error {
	if f.fail != nil {
		return f.fail
	}
	f.created[job.ID] = job
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobs) GetByID(_ context.Context, jobID string) (*domain.Job, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobs) ClaimByID(context.Context, string) (*domain.Job, error) {
	return nil, domain.ErrNotClaimable
}

func (f *fakeJobs) ClaimNext(context.Context) (*domain.Job, error) {
	return nil, domain.ErrNotClaimable
}

func (f *fakeJobs) MarkCompleted(context.Context, string, string) error { return nil }

func (f *fakeJobs) MarkFailed(context.Context, string, string) error { return nil }

func (f *fakeJobs) ReclaimStale(context.Context, time.Duration) ([]string, error) {
	return nil, nil
}

type fakeContents struct {
	contents map[string]*domain.Content
}

func newFakeContents(contents ...*domain.Content) *fakeContents {
	f := &fakeContents{contents: map[string]*domain.Content{}}
	for _, c := range contents {
		f.contents[c.ID] = c
	}
	return f
}

func (f *fakeContents) Create(_ context.Context, content *domain.Content) error {
	f.contents[content.ID] = content
	return nil
}

func (f *fakeContents) GetByID(_ context.Context, id string) (*domain.Content, error) {
	content, ok := f.contents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return content, nil
}

type fakeWalletLedger struct {
	balance int
	credits []int
	txErr   error
}

func (f *fakeWalletLedger) Balance(context.Context, string) (int, error) {
	return f.balance, nil
}

func (f *fakeWalletLedger) Debit(_ context.Context, _ string, amount int, _ string) (*domain.Transaction, error) {
	if f.balance < amount {
		return nil, domain.ErrInsufficientCredits
	}
	f.balance -= amount
	return &domain.Transaction{Amount: -amount, BalanceAfter: f.balance}, nil
}

func (f *fakeWalletLedger) Credit(_ context.Context, userID string, amount int, description string) (*domain.Transaction, error) {
	if f.txErr != nil {
		return nil, f.txErr
	}
	f.balance += amount
	f.credits = append(f.credits, amount)
	return &domain.Transaction{
		ID:           "tx-1",
		UserID:       userID,
		Amount:       amount,
		Description:  description,
		BalanceAfter: f.balance,
	}, nil
}

func (f *fakeWalletLedger) Transactions(context.Context, string, int) ([]domain.Transaction, error) {
	return []domain.Transaction{{ID: "tx-1", Amount: 10, BalanceAfter: 10}}, nil
}

type fakeProviders struct {
	providers []domain.Provider
}

func (f *fakeProviders) ListActive(context.Context) ([]domain.Provider, error) {
	return f.providers, nil
}

func (f *fakeProviders) GetByID(_ context.Context, id int64) (*domain.Provider, error) {
	for i := range f.providers {
		if f.providers[i].ID == id {
			return &f.providers[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeProviders) DefaultFor(context.Context, domain.ContentType) (*domain.Provider, error) {
	return nil, domain.ErrNotFound
}

type recordedUsage struct {
	eventType string
	success   bool
}

type fakeUsage struct {
	events []recordedUsage
}

func (f *fakeUsage) Record(_ context.Context, _, _, eventType string, success bool, _ int, _ map[string]any) error {
	f.events = append(f.events, recordedUsage{eventType: eventType, success: success})
	return nil
}

type fakeProcessor struct {
	jobIDs []string
	err    error
}

func (f *fakeProcessor) Process(_ context.Context, jobID string) error {
	f.jobIDs = append(f.jobIDs, jobID)
	return f.err
}

func testApp() *App {
	return &App{
		Logger:    zerolog.Nop(),
		Jobs:      newFakeJobs(),
		Providers: &fakeProviders{},
		Wallet:    &fakeWalletLedger{},
		Contents:  newFakeContents(),
		Usage:     &fakeUsage{},
	}
}
