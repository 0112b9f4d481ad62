// Package seen remembers which article URLs were already delivered so later
// runs can skip them.
package seen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Store tracks delivered article URLs.
type Store interface {
	Seen(ctx context.Context, url string) (bool, error)
	Mark(ctx context.Context, url string) error
	Close() error
}

// Options controls retention for concrete store implementations.
type Options struct {
	TTL             time.Duration
	CleanupInterval time.Duration
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
}

const (
	defaultTTL             = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured backend. typ is one of "none", "bbolt"
// or "redis"; path is the bbolt file.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt seen store requires a path")
		}
		return openBolt(path, opts)
	case "redis":
		if strings.TrimSpace(opts.RedisAddr) == "" {
			return nil, fmt.Errorf("redis seen store requires an address")
		}
		return newRedisStore(opts), nil
	default:
		return nil, fmt.Errorf("unsupported seen store type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// keyFor hashes a URL so keys have a fixed size regardless of query strings.
func keyFor(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return hex.EncodeToString(sum[:])
}

type noopStore struct{}

func (noopStore) Close() error                               { return nil }
func (noopStore) Seen(context.Context, string) (bool, error) { return false, nil }
func (noopStore) Mark(context.Context, string) error         { return nil }
