package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/email"
	"github.com/hoanghai1803/newsdraft/internal/models"
)

// DefaultDailySubjectLayout formats the subject of a daily newsletter.
const DefaultDailySubjectLayout = "일일 뉴스레터 - 2006년 01월 02일"

// DailyConfig tunes the daily workflow.
type DailyConfig struct {
	SubjectLayout string
	SendTimeout   time.Duration
	Footer        string
}

// DailyRequest overrides sources and recipients for one run. Empty
// Recipients means every active subscriber.
type DailyRequest struct {
	Sources        []string           `json:"sources"`
	LimitPerSource int                `json:"limit_per_source,omitempty"`
	Recipients     []models.Recipient `json:"recipients,omitempty"`
}

// DailyResult is the outcome of a daily run.
type DailyResult struct {
	DraftID  string                `json:"draft_id"`
	Subject  string                `json:"subject"`
	Report   Report                `json:"report"`
	Delivery models.DeliveryReport `json:"delivery"`
}

// DailyWorkflow drafts a newsletter and mails it to subscribers.
type DailyWorkflow struct {
	drafter    *Drafter
	sender     email.Sender
	recipients RecipientSource
	deliveries DeliveryRecorder
	seen       SeenFilter
	cfg        DailyConfig
	now        func() time.Time
}

// NewDailyWorkflow builds a DailyWorkflow. deliveries and seen may be nil.
func NewDailyWorkflow(drafter *Drafter, sender email.Sender, recipients RecipientSource, deliveries DeliveryRecorder, seen SeenFilter, cfg DailyConfig) (*DailyWorkflow, error) {
	if drafter == nil || sender == nil || recipients == nil {
		return nil, errors.New("daily workflow: drafter, sender and recipient source are required")
	}
	if cfg.SubjectLayout == "" {
		cfg.SubjectLayout = DefaultDailySubjectLayout
	}
	return &DailyWorkflow{
		drafter:    drafter,
		sender:     sender,
		recipients: recipients,
		deliveries: deliveries,
		seen:       seen,
		cfg:        cfg,
		now:        time.Now,
	}, nil
}

// Run drafts today's newsletter and delivers it. A draft with no items is
// persisted but not sent.
func (w *DailyWorkflow) Run(ctx context.Context, req DailyRequest) (*DailyResult, error) {
	res, err := w.drafter.execute(ctx, DraftRequest{Sources: req.Sources, LimitPerSource: req.LimitPerSource}, models.RunKindDaily)
	if err != nil {
		return nil, err
	}

	out := &DailyResult{
		DraftID:  res.ID,
		Subject:  w.now().Format(w.cfg.SubjectLayout),
		Report:   res.Report,
		Delivery: models.DeliveryReport{Results: []models.RecipientResult{}},
	}
	if res.ItemCount() == 0 {
		slog.Info("daily draft is empty; skipping delivery", "draft_id", res.ID)
		return out, nil
	}

	out.Delivery, err = w.Send(ctx, res.ID, res.NewsletterDraft, out.Subject, req.Recipients)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Send delivers a draft to recipients, or to all active subscribers when
// recipients is empty. Each recipient is attempted independently. Delivered
// URLs are marked seen once at least one send succeeded.
func (w *DailyWorkflow) Send(ctx context.Context, draftID string, draft models.NewsletterDraft, subject string, recipients []models.Recipient) (models.DeliveryReport, error) {
	if subject == "" {
		subject = draft.Subject
	}
	if len(recipients) == 0 {
		var err error
		recipients, err = w.recipients.ActiveRecipients(ctx)
		if err != nil {
			return models.DeliveryReport{}, fmt.Errorf("loading recipients: %w", err)
		}
	}

	body, err := email.RenderMessage(subject, draft.HTMLContent, w.cfg.Footer)
	if err != nil {
		return models.DeliveryReport{}, err
	}

	report := email.Deliver(ctx, w.sender, subject, body, recipients, w.cfg.SendTimeout)

	if w.deliveries != nil && draftID != "" {
		if err := w.deliveries.RecordDeliveries(context.WithoutCancel(ctx), draftID, report.Results); err != nil {
			slog.Warn("recording deliveries failed", "draft_id", draftID, "error", err)
		}
	}

	if w.seen != nil && report.Successful > 0 {
		for _, u := range draft.URLs() {
			if err := w.seen.Mark(ctx, u); err != nil {
				slog.Warn("marking url seen failed", "url", u, "error", err)
			}
		}
	}
	return report, nil
}
