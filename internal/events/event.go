// Package events publishes newsletter lifecycle events to downstream sinks
// such as webhooks, AWS SQS/SNS and Google Cloud Pub/Sub.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

// TypeDraftCreated is emitted after a draft is persisted.
const TypeDraftCreated = "draft.created"

// Event is the payload published downstream.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	DraftID    string    `json:"draft_id"`
	Subject    string    `json:"subject"`
	ItemCount  int       `json:"item_count"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewDraftCreated builds a draft.created event for a stored draft.
func NewDraftCreated(draftID string, draft models.NewsletterDraft) Event {
	cats := make([]string, 0, len(draft.Categories))
	for _, c := range draft.Categories {
		cats = append(cats, c.Category)
	}
	return Event{
		ID:         uuid.NewString(),
		Type:       TypeDraftCreated,
		DraftID:    draftID,
		Subject:    draft.Subject,
		ItemCount:  draft.ItemCount(),
		Categories: cats,
		CreatedAt:  time.Now().UTC(),
	}
}
