package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

// ListSubscribers returns all subscribers ordered by email.
func (s *Store) ListSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	return s.querySubscribers(ctx, nil)
}

// ListActiveSubscribers returns only active subscribers ordered by email.
func (s *Store) ListActiveSubscribers(ctx context.Context) ([]models.Subscriber, error) {
	return s.querySubscribers(ctx, sq.Eq{"is_active": 1})
}

// ActiveRecipients returns the active subscribers as send destinations.
func (s *Store) ActiveRecipients(ctx context.Context) ([]models.Recipient, error) {
	subs, err := s.ListActiveSubscribers(ctx)
	if err != nil {
		return nil, err
	}
	recipients := make([]models.Recipient, len(subs))
	for i, sub := range subs {
		recipients[i] = sub.Recipient()
	}
	return recipients, nil
}

func (s *Store) querySubscribers(ctx context.Context, where sq.Sqlizer) ([]models.Subscriber, error) {
	q := sq.Select("id", "email", "name", "is_active", "created_at").
		From("subscribers").
		OrderBy("email")
	if where != nil {
		q = q.Where(where)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building subscribers query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying subscribers: %w", err)
	}
	defer rows.Close()

	subs := []models.Subscriber{}
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning subscriber: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

// AddSubscriber inserts an active subscriber. Emails are stored lower-cased;
// a repeated email returns ErrConflict.
func (s *Store) AddSubscriber(ctx context.Context, email, name string) (*models.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO subscribers (email, name) VALUES (?, ?)`,
		email, strings.TrimSpace(name),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("adding subscriber: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting subscriber id: %w", err)
	}
	return s.GetSubscriber(ctx, id)
}

// GetSubscriber returns the subscriber with the given ID.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetSubscriber(ctx context.Context, id int64) (*models.Subscriber, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, is_active, created_at FROM subscribers WHERE id = ?`, id)
	sub, err := scanSubscriber(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting subscriber: %w", err)
	}
	return sub, nil
}

// SetSubscriberActive sets the active flag of a subscriber.
// Returns ErrNotFound if no row was updated.
func (s *Store) SetSubscriberActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE subscribers SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("updating subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSubscriber removes a subscriber.
// Returns ErrNotFound if no row was deleted.
func (s *Store) DeleteSubscriber(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting subscriber: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubscriber(row rowScanner) (*models.Subscriber, error) {
	var sub models.Subscriber
	var createdAt string
	if err := row.Scan(&sub.ID, &sub.Email, &sub.Name, &sub.IsActive, &createdAt); err != nil {
		return nil, err
	}
	sub.CreatedAt = parseTime(createdAt)
	return &sub, nil
}
