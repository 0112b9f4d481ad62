package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

func sampleDraft(subject string) models.NewsletterDraft {
	return models.NewsletterDraft{
		Subject: subject,
		Categories: []models.CategoryNews{
			{Category: "SKT", Items: []models.DraftItem{
				{Title: "SKT 5G", URL: "https://ex.com/1", Summary: "요약", Source: "etnews"},
			}},
		},
		HTMLContent: `<h3>SKT</h3><ul><li><a href="https://ex.com/1">SKT 5G</a><br/><small>요약</small></li></ul>`,
	}
}

func TestSaveDraft_GetDraft(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	draft := sampleDraft("주간 뉴스레터")
	id, err := store.SaveDraft(ctx, draft)
	if err != nil {
		t.Fatalf("SaveDraft() error: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("SaveDraft() id = %q, want a UUID: %v", id, err)
	}

	got, err := store.GetDraft(ctx, id)
	if err != nil {
		t.Fatalf("GetDraft() error: %v", err)
	}
	if got.Subject != draft.Subject {
		t.Errorf("Subject = %q, want %q", got.Subject, draft.Subject)
	}
	if got.HTMLContent != draft.HTMLContent {
		t.Errorf("HTMLContent = %q, want %q", got.HTMLContent, draft.HTMLContent)
	}
	if len(got.Categories) != 1 || got.Categories[0].Items[0].Source != "etnews" {
		t.Errorf("Categories = %+v, want round-tripped categories", got.Categories)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

func TestGetDraft_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDraft(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("GetDraft(missing) error = %v, want ErrNotFound", err)
	}
}

func TestListDrafts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, subject := range []string{"first", "second", "third"} {
		if _, err := store.SaveDraft(ctx, sampleDraft(subject)); err != nil {
			t.Fatalf("SaveDraft(%q) error: %v", subject, err)
		}
	}

	tests := []struct {
		name   string
		limit  int
		offset int
		want   []string
	}{
		{"all newest first", 0, 0, []string{"third", "second", "first"}},
		{"limit", 2, 0, []string{"third", "second"}},
		{"offset", 2, 1, []string{"second", "first"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListDrafts(ctx, tt.limit, tt.offset)
			if err != nil {
				t.Fatalf("ListDrafts() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ListDrafts() returned %d drafts, want %d", len(got), len(tt.want))
			}
			for i, d := range got {
				if d.Subject != tt.want[i] {
					t.Errorf("drafts[%d].Subject = %q, want %q", i, d.Subject, tt.want[i])
				}
			}
		})
	}
}

func TestRecordDeliveries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.SaveDraft(ctx, sampleDraft("s"))
	if err != nil {
		t.Fatalf("SaveDraft() error: %v", err)
	}

	results := []models.RecipientResult{
		{Recipient: models.Recipient{Email: "a@example.com"}, Success: true, MessageID: "m-1"},
		{Recipient: models.Recipient{Email: "bad"}, Success: false, Error: "invalid email address"},
	}
	if err := store.RecordDeliveries(ctx, id, results); err != nil {
		t.Fatalf("RecordDeliveries() error: %v", err)
	}

	got, err := store.ListDeliveries(ctx, id)
	if err != nil {
		t.Fatalf("ListDeliveries() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListDeliveries() returned %d rows, want 2", len(got))
	}
	if !got[0].Success || got[0].MessageID != "m-1" {
		t.Errorf("deliveries[0] = %+v, want success with message id m-1", got[0])
	}
	if got[1].Success || got[1].Error != "invalid email address" {
		t.Errorf("deliveries[1] = %+v, want failure with error", got[1])
	}
}
