package events

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Publisher sends events to a downstream sink.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}

// Builder creates a Publisher from a config entry.
type Builder func(ctx context.Context, cfg Config) (Publisher, error)

// Registry maps publisher types to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns a registry with optional pre-registered builders.
func NewRegistry(builders map[string]Builder) *Registry {
	r := &Registry{builders: make(map[string]Builder)}
	for typ, b := range builders {
		r.Register(typ, b)
	}
	return r
}

// DefaultRegistry wires up every built-in publisher type.
func DefaultRegistry() *Registry {
	return NewRegistry(map[string]Builder{
		TypeWebhook: newWebhookPublisher,
		TypeSQS:     newSQSPublisher,
		TypeSNS:     newSNSPublisher,
		TypePubSub:  newPubSubPublisher,
	})
}

// Register associates a builder with a publisher type.
func (r *Registry) Register(typ string, builder Builder) {
	if typ = strings.TrimSpace(strings.ToLower(typ)); typ == "" || builder == nil {
		return
	}
	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// PublisherFor builds the publisher described by cfg.
func (r *Registry) PublisherFor(ctx context.Context, cfg Config) (Publisher, error) {
	r.mu.RLock()
	builder := r.builders[cfg.Type]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no publisher registered for type %q", cfg.Type)
	}
	return builder(ctx, cfg)
}

// BuildAll sanitizes, validates and instantiates every enabled config.
// Duplicate ids are rejected.
func BuildAll(ctx context.Context, reg *Registry, cfgs []Config) ([]Publisher, error) {
	seen := make(map[string]bool, len(cfgs))
	var pubs []Publisher
	for i, raw := range cfgs {
		cfg := raw.Sanitize()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("publishers[%d]: %w", i, err)
		}
		if seen[cfg.ID] {
			return nil, fmt.Errorf("duplicate publisher id %q", cfg.ID)
		}
		seen[cfg.ID] = true
		if !cfg.EnabledValue() {
			continue
		}

		pub, err := reg.PublisherFor(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("publisher %q: %w", cfg.ID, err)
		}
		pubs = append(pubs, pub)
	}
	return pubs, nil
}
