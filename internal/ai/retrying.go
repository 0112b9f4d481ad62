package ai

import (
	"context"

	"github.com/hoanghai1803/newsdraft/internal/retry"
)

// retrying wraps a Provider so every call is retried on transient failures.
type retrying struct {
	next Provider
	cfg  retry.Config
}

// WithRetry wraps p so that each operation is retried with exponential
// backoff. A config with MaxRetries of zero returns p unchanged.
func WithRetry(p Provider, cfg retry.Config) Provider {
	if cfg.MaxRetries <= 0 {
		return p
	}
	return &retrying{next: p, cfg: cfg}
}

func (r *retrying) IsRelevant(ctx context.Context, text string) (bool, error) {
	var ok bool
	err := retry.WithBackoff(ctx, r.cfg, func(ctx context.Context) error {
		var err error
		ok, err = r.next.IsRelevant(ctx, text)
		return err
	})
	return ok, err
}

func (r *retrying) Deduplicate(ctx context.Context, titles []string) ([]int, error) {
	var keep []int
	err := retry.WithBackoff(ctx, r.cfg, func(ctx context.Context) error {
		var err error
		keep, err = r.next.Deduplicate(ctx, titles)
		return err
	})
	return keep, err
}

func (r *retrying) Classify(ctx context.Context, text string) (string, error) {
	var label string
	err := retry.WithBackoff(ctx, r.cfg, func(ctx context.Context) error {
		var err error
		label, err = r.next.Classify(ctx, text)
		return err
	})
	return label, err
}

func (r *retrying) Summarize(ctx context.Context, text string, sentences int) (string, error) {
	var summary string
	err := retry.WithBackoff(ctx, r.cfg, func(ctx context.Context) error {
		var err error
		summary, err = r.next.Summarize(ctx, text, sentences)
		return err
	})
	return summary, err
}
