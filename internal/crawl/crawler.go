// Package crawl provides crawl providers for newsletter sources and the
// registry that resolves them.
//
// A crawler lists recent posts for one logical target. Concrete crawlers
// parse RSS/Atom feeds, scrape HTML boards with CSS selectors, or replay
// static posts declared in the source catalog.
package crawl

import (
	"context"
	"sort"
	"sync"

	"github.com/hoanghai1803/newsdraft/internal/models"
)

// Defaults applied when Options leave a field unset.
const (
	DefaultPages = 1
	DefaultDays  = 7
	DefaultLimit = 20
)

// Options are per-target crawl options forwarded verbatim from a batch
// request. The zero value means provider defaults.
type Options struct {
	Pages int `json:"pages" yaml:"pages"`
	Days  int `json:"days" yaml:"days"`
	Limit int `json:"limit" yaml:"limit"`
}

// withDefaults fills unset fields with the package defaults.
func (o Options) withDefaults() Options {
	if o.Pages <= 0 {
		o.Pages = DefaultPages
	}
	if o.Days <= 0 {
		o.Days = DefaultDays
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Crawler lists posts for a target. Implementations return an empty slice,
// not an error, for targets they do not support.
type Crawler interface {
	ListPosts(ctx context.Context, target models.CrawlTarget, opts Options) ([]models.RawPost, error)
}

// effectiveLimit resolves the number of posts a crawler should return.
func effectiveLimit(target models.CrawlTarget, opts Options) int {
	if target.Limit > 0 {
		return target.Limit
	}
	return opts.withDefaults().Limit
}

// Key identifies a registered crawler. Flat pipeline lookups use only
// Source; hierarchical lookups use all three fields.
type Key struct {
	Group  string
	Source string
	Target string
}

// SourceKey returns the key of the source-level crawler for name.
func SourceKey(name string) Key {
	return Key{Source: name}
}

// Name renders the key as "group:source:target", or just the source for a
// source-level key.
func (k Key) Name() string {
	if k.Group == "" && k.Target == "" {
		return k.Source
	}
	return k.Group + ":" + k.Source + ":" + k.Target
}

// Registry maps keys to crawlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	crawlers map[Key]Crawler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{crawlers: make(map[Key]Crawler)}
}

// Register associates a crawler with key, replacing any previous entry.
// A nil crawler is ignored.
func (r *Registry) Register(key Key, c Crawler) {
	if c == nil {
		return
	}
	r.mu.Lock()
	r.crawlers[key] = c
	r.mu.Unlock()
}

// Lookup returns the crawler registered under key. A miss returns false and
// is never an error.
func (r *Registry) Lookup(key Key) (Crawler, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	c, ok := r.crawlers[key]
	r.mu.RUnlock()
	return c, ok
}

// Keys returns all registered keys sorted by group, source, then target.
func (r *Registry) Keys() []Key {
	r.mu.RLock()
	keys := make([]Key, 0, len(r.crawlers))
	for k := range r.crawlers {
		keys = append(keys, k)
	}
	r.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Group != keys[j].Group {
			return keys[i].Group < keys[j].Group
		}
		if keys[i].Source != keys[j].Source {
			return keys[i].Source < keys[j].Source
		}
		return keys[i].Target < keys[j].Target
	})
	return keys
}

// Len returns the number of registered crawlers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.crawlers)
}
