package crawl

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// DefaultRateLimitDelay is the minimum spacing between two requests to the
// same host.
const DefaultRateLimitDelay = 1 * time.Second

// DomainLimiter enforces a minimum delay between requests to the same host.
// A nil *DomainLimiter never waits.
type DomainLimiter struct {
	delay time.Duration
	mu    sync.Mutex
	next  map[string]time.Time // per-domain earliest next request
}

// NewDomainLimiter creates a limiter with the given per-domain delay.
func NewDomainLimiter(delay time.Duration) *DomainLimiter {
	return &DomainLimiter{
		delay: delay,
		next:  make(map[string]time.Time),
	}
}

// Wait blocks until a request to rawURL's host is allowed or ctx is done.
// Slots are reserved under the lock, so concurrent callers for the same
// host are spaced by delay.
func (l *DomainLimiter) Wait(ctx context.Context, rawURL string) error {
	if l == nil || l.delay <= 0 {
		return nil
	}

	domain := extractDomain(rawURL)
	now := time.Now()

	l.mu.Lock()
	slot := l.next[domain]
	if slot.Before(now) {
		slot = now
	}
	l.next[domain] = slot.Add(l.delay)
	l.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}
