package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

// RecordDeliveries stores one row per recipient result for a draft.
func (s *Store) RecordDeliveries(ctx context.Context, draftID string, results []models.RecipientResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO deliveries (draft_id, email, success, message_id, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing delivery insert: %w", err)
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			draftID, r.Recipient.Email, r.Success,
			nullableString(r.MessageID), nullableString(r.Error), now,
		); err != nil {
			return fmt.Errorf("recording delivery to %s: %w", r.Recipient.Email, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing deliveries: %w", err)
	}
	return nil
}

// ListDeliveries returns the delivery records of a draft in send order.
func (s *Store) ListDeliveries(ctx context.Context, draftID string) ([]models.Delivery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, draft_id, email, success, COALESCE(message_id, ''), COALESCE(error, ''), created_at
		 FROM deliveries WHERE draft_id = ? ORDER BY id`, draftID)
	if err != nil {
		return nil, fmt.Errorf("querying deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := []models.Delivery{}
	for rows.Next() {
		var d models.Delivery
		var createdAt string
		if err := rows.Scan(&d.ID, &d.DraftID, &d.Email, &d.Success, &d.MessageID, &d.Error, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		d.CreatedAt = parseTime(createdAt)
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
