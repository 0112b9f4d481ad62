package storage

import (
	"context"
	"testing"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

func TestSaveRawPosts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pub := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	posts := []models.RawPost{
		{SourceName: "etnews", URL: "https://ex.com/1", Title: "SKT 5G", ContentSnippet: "본문1", PublishedAt: &pub},
		{SourceName: "etnews", URL: "https://ex.com/2", Title: "KT 요금", ContentSnippet: "본문2"},
		{SourceName: "ppomppu", URL: "https://ex.com/3", Title: "LGU 품질", ContentSnippet: "본문3"},
	}

	n, err := store.SaveRawPosts(ctx, posts)
	if err != nil {
		t.Fatalf("SaveRawPosts() error: %v", err)
	}
	if n != 3 {
		t.Errorf("SaveRawPosts() = %d, want 3", n)
	}

	got, err := store.ListRawPosts(ctx, "etnews", 0)
	if err != nil {
		t.Fatalf("ListRawPosts() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListRawPosts(etnews) returned %d posts, want 2", len(got))
	}
	for _, p := range got {
		if p.URL == "https://ex.com/1" {
			if p.PublishedAt == nil || !p.PublishedAt.Equal(pub) {
				t.Errorf("PublishedAt = %v, want %v", p.PublishedAt, pub)
			}
		}
	}
}

func TestSaveRawPosts_UpsertByURL(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveRawPosts(ctx, []models.RawPost{
		{SourceName: "a", URL: "https://ex.com/1", Title: "old", ContentSnippet: "old"},
	}); err != nil {
		t.Fatalf("first SaveRawPosts() error: %v", err)
	}
	if _, err := store.SaveRawPosts(ctx, []models.RawPost{
		{SourceName: "a", URL: "https://ex.com/1", Title: "new", ContentSnippet: "new"},
	}); err != nil {
		t.Fatalf("second SaveRawPosts() error: %v", err)
	}

	count, err := store.CountRawPosts(ctx)
	if err != nil {
		t.Fatalf("CountRawPosts() error: %v", err)
	}
	if count != 1 {
		t.Errorf("CountRawPosts() = %d, want 1", count)
	}

	got, err := store.ListRawPosts(ctx, "", 10)
	if err != nil {
		t.Fatalf("ListRawPosts() error: %v", err)
	}
	if got[0].Title != "new" {
		t.Errorf("Title = %q, want %q", got[0].Title, "new")
	}
}

func TestSaveRawPosts_Empty(t *testing.T) {
	store := newTestStore(t)

	n, err := store.SaveRawPosts(context.Background(), nil)
	if err != nil {
		t.Fatalf("SaveRawPosts(nil) error: %v", err)
	}
	if n != 0 {
		t.Errorf("SaveRawPosts(nil) = %d, want 0", n)
	}
}
