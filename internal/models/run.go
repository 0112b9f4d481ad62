package models

import "time"

// Run kinds.
const (
	RunKindDraft = "draft"
	RunKindBatch = "batch"
	RunKindDaily = "daily"
)

// Run statuses.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// CrawlRun records an audit trail of each pipeline execution.
type CrawlRun struct {
	ID             int64     `json:"id"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	Sources        string    `json:"sources"`
	PostsCollected int       `json:"posts_collected"`
	PostsSaved     int       `json:"posts_saved"`
	ItemsDrafted   int       `json:"items_drafted"`
	DraftID        string    `json:"draft_id,omitempty"`
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
