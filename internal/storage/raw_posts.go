package storage

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

// SaveRawPosts upserts posts keyed by URL inside one transaction and returns
// the number of posts written. On conflict the title, snippet, source and
// crawl time are refreshed. An empty slice is a no-op.
func (s *Store) SaveRawPosts(ctx context.Context, posts []models.RawPost) (int, error) {
	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO raw_posts (source_name, url, title, content_snippet, published_at, crawled_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			source_name     = excluded.source_name,
			title           = excluded.title,
			content_snippet = excluded.content_snippet,
			published_at    = COALESCE(excluded.published_at, raw_posts.published_at),
			crawled_at      = excluded.crawled_at`)
	if err != nil {
		return 0, fmt.Errorf("preparing raw post upsert: %w", err)
	}
	defer stmt.Close()

	crawledAt := formatTime(time.Now())
	saved := 0
	for _, p := range posts {
		var publishedAt *string
		if p.PublishedAt != nil {
			v := formatTime(*p.PublishedAt)
			publishedAt = &v
		}
		if _, err := stmt.ExecContext(ctx,
			p.SourceName, p.URL, p.Title, p.ContentSnippet, publishedAt, crawledAt,
		); err != nil {
			return 0, fmt.Errorf("saving raw post %q: %w", p.URL, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing raw posts: %w", err)
	}
	return saved, nil
}

// ListRawPosts returns the most recently crawled posts, optionally limited
// to one source.
func (s *Store) ListRawPosts(ctx context.Context, source string, limit int) ([]models.RawPost, error) {
	q := sq.Select("source_name", "url", "title", "content_snippet", "published_at").
		From("raw_posts").
		OrderBy("crawled_at DESC", "id DESC")
	if source != "" {
		q = q.Where(sq.Eq{"source_name": source})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building raw posts query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing raw posts: %w", err)
	}
	defer rows.Close()

	var posts []models.RawPost
	for rows.Next() {
		var p models.RawPost
		var publishedAt *string
		if err := rows.Scan(&p.SourceName, &p.URL, &p.Title, &p.ContentSnippet, &publishedAt); err != nil {
			return nil, fmt.Errorf("scanning raw post: %w", err)
		}
		p.PublishedAt = parseTimePtr(publishedAt)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountRawPosts returns the number of stored raw posts.
func (s *Store) CountRawPosts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM raw_posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting raw posts: %w", err)
	}
	return n, nil
}
