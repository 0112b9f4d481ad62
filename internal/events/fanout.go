package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

// Fanout dispatches events to all configured publishers.
type Fanout struct {
	publishers []Publisher
}

// NewFanout builds a dispatcher over pubs. Nil entries are dropped.
func NewFanout(pubs []Publisher) *Fanout {
	cp := make([]Publisher, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			cp = append(cp, p)
		}
	}
	return &Fanout{publishers: cp}
}

// Publish forwards the event to every publisher and returns how many
// accepted it. Failures are joined into one error.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil || len(f.publishers) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, p := range f.publishers {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", p.Type(), p.ID(), err))
			continue
		}
		successful++
	}
	return successful, errors.Join(errs...)
}

// DraftCreated publishes a draft.created event for a persisted draft.
func (f *Fanout) DraftCreated(ctx context.Context, draftID string, draft models.NewsletterDraft) error {
	n, err := f.Publish(ctx, NewDraftCreated(draftID, draft))
	if f.Size() > 0 {
		slog.Debug("draft.created published", "draft_id", draftID, "publishers", f.Size(), "delivered", n)
	}
	return err
}

// Size returns the number of active publishers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.publishers)
}

// Close releases publishers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, p := range f.publishers {
		if c, ok := p.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
