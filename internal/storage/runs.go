package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

// RecordRun inserts a crawl run audit record and returns its ID.
func (s *Store) RecordRun(ctx context.Context, run models.CrawlRun) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO crawl_runs (kind, status, sources, posts_collected, posts_saved,
				items_drafted, draft_id, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Kind, run.Status, run.Sources, run.PostsCollected, run.PostsSaved,
		run.ItemsDrafted, nullableString(run.DraftID), nullableString(run.Error),
		formatTime(run.StartedAt), formatTime(run.FinishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("recording crawl run: %w", err)
	}
	return res.LastInsertId()
}

// GetRecentRuns returns the most recent crawl runs, newest first.
func (s *Store) GetRecentRuns(ctx context.Context, limit int) ([]models.CrawlRun, error) {
	q := sq.Select("id", "kind", "status", "sources", "posts_collected", "posts_saved",
		"items_drafted", "COALESCE(draft_id, '')", "COALESCE(error, '')", "started_at", "finished_at").
		From("crawl_runs").
		OrderBy("started_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building runs query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying crawl runs: %w", err)
	}
	defer rows.Close()

	runs := []models.CrawlRun{}
	for rows.Next() {
		var r models.CrawlRun
		var startedAt, finishedAt string
		if err := rows.Scan(&r.ID, &r.Kind, &r.Status, &r.Sources, &r.PostsCollected, &r.PostsSaved,
			&r.ItemsDrafted, &r.DraftID, &r.Error, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scanning crawl run: %w", err)
		}
		r.StartedAt = parseTime(startedAt)
		r.FinishedAt = parseTime(finishedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
