package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

var draftColumns = []string{"id", "subject", "categories_json", "html_content", "created_at"}

// SaveDraft persists a draft under a new UUID and returns the id.
func (s *Store) SaveDraft(ctx context.Context, draft models.NewsletterDraft) (string, error) {
	categories := draft.Categories
	if categories == nil {
		categories = []models.CategoryNews{}
	}
	categoriesJSON, err := json.Marshal(categories)
	if err != nil {
		return "", fmt.Errorf("marshaling draft categories: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO newsletter_drafts (id, subject, categories_json, html_content, item_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, draft.Subject, string(categoriesJSON), draft.HTMLContent, draft.ItemCount(), formatTime(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("saving draft: %w", err)
	}
	return id, nil
}

// GetDraft returns the draft with the given id.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetDraft(ctx context.Context, id string) (*models.StoredDraft, error) {
	query, args, err := sq.Select(draftColumns...).
		From("newsletter_drafts").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building draft query: %w", err)
	}

	d, err := scanDraft(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting draft: %w", err)
	}
	return d, nil
}

// ListDrafts returns stored drafts newest first.
func (s *Store) ListDrafts(ctx context.Context, limit, offset int) ([]models.StoredDraft, error) {
	q := sq.Select(draftColumns...).
		From("newsletter_drafts").
		OrderBy("created_at DESC", "rowid DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building drafts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	drafts := []models.StoredDraft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning draft: %w", err)
		}
		drafts = append(drafts, *d)
	}
	return drafts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*models.StoredDraft, error) {
	var d models.StoredDraft
	var categoriesJSON, createdAt string
	if err := row.Scan(&d.ID, &d.Subject, &categoriesJSON, &d.HTMLContent, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(categoriesJSON), &d.Categories); err != nil {
		return nil, fmt.Errorf("decoding categories of draft %s: %w", d.ID, err)
	}
	d.CreatedAt = parseTime(createdAt)
	return &d, nil
}
