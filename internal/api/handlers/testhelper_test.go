package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/hoanghai1803/newsdraft/internal/models"
	"github.com/hoanghai1803/newsdraft/internal/pipeline"
	"github.com/hoanghai1803/newsdraft/internal/storage"
)

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

type fakeDrafter struct {
	got pipeline.DraftRequest
	res *pipeline.DraftResult
	err error
}

func (f *fakeDrafter) Execute(_ context.Context, req pipeline.DraftRequest) (*pipeline.DraftResult, error) {
	f.got = req
	return f.res, f.err
}

type fakeBatch struct {
	got pipeline.BatchRequest
	res *pipeline.BatchResult
	err error
}

func (f *fakeBatch) Collect(_ context.Context, req pipeline.BatchRequest) (*pipeline.BatchResult, error) {
	f.got = req
	return f.res, f.err
}

type fakeDaily struct {
	got pipeline.DailyRequest
	res *pipeline.DailyResult
	err error

	sentID      string
	sentSubject string
	sentTo      []models.Recipient
}

func (f *fakeDaily) Run(_ context.Context, req pipeline.DailyRequest) (*pipeline.DailyResult, error) {
	f.got = req
	return f.res, f.err
}

func (f *fakeDaily) Send(_ context.Context, draftID string, _ models.NewsletterDraft, subject string, to []models.Recipient) (models.DeliveryReport, error) {
	if f.err != nil {
		return models.DeliveryReport{}, f.err
	}
	f.sentID = draftID
	f.sentSubject = subject
	f.sentTo = to
	return models.DeliveryReport{Total: 1, Successful: 1}, nil
}

var errRun = errors.New("relevance stage failed: quota exceeded")
