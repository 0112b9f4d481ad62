package crawl

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/hoanghai1803/newsdraft/internal/models"
	"gopkg.in/yaml.v3"
)

// Target kinds understood by BuildRegistry.
const (
	KindRSS    = "rss"
	KindBoard  = "board"
	KindStatic = "static"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// Catalog describes every crawlable source as groups of sources, each with
// one or more named targets.
type Catalog struct {
	Groups map[string]map[string]SourceSpec `yaml:"groups" json:"groups"`
}

// SourceSpec is one source inside a group.
type SourceSpec struct {
	BaseURL string                `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Targets map[string]TargetSpec `yaml:"targets" json:"targets"`
}

// TargetSpec is one crawlable leaf.
type TargetSpec struct {
	Kind       string       `yaml:"kind" json:"kind"`
	URL        string       `yaml:"url,omitempty" json:"url,omitempty"`
	PageParam  string       `yaml:"page_param,omitempty" json:"page_param,omitempty"`
	DateLayout string       `yaml:"date_layout,omitempty" json:"date_layout,omitempty"`
	Enrich     bool         `yaml:"enrich,omitempty" json:"enrich,omitempty"`
	Selectors  Selectors    `yaml:"selectors,omitempty" json:"selectors,omitempty"`
	Options    Options      `yaml:"options,omitempty" json:"options,omitempty"`
	Posts      []StaticPost `yaml:"posts,omitempty" json:"posts,omitempty"`
}

// LoadCatalog reads the catalog at path. A missing file is created with the
// built-in default catalog first.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path is empty")
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := writeDefaultCatalog(path); err != nil {
			return nil, err
		}
		slog.Info("created default source catalog", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data, filepath.Ext(path))
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog, ".yaml")
}

func writeDefaultCatalog(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating catalog directory: %w", err)
		}
	}
	if err := os.WriteFile(path, defaultCatalog, 0o644); err != nil {
		return fmt.Errorf("writing default catalog: %w", err)
	}
	return nil
}

// ParseCatalog decodes a YAML or JSON catalog, then sanitizes and validates
// it. ext selects the decoder; an empty ext tries YAML.
func ParseCatalog(data []byte, ext string) (*Catalog, error) {
	var cat Catalog
	var err error
	switch strings.ToLower(strings.TrimSpace(ext)) {
	case ".json":
		err = json.Unmarshal(data, &cat)
	default:
		err = yaml.Unmarshal(data, &cat)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	cat.sanitize()
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) sanitize() {
	for g, sources := range c.Groups {
		for s, src := range sources {
			src.BaseURL = strings.TrimSpace(src.BaseURL)
			for t, tgt := range src.Targets {
				tgt.Kind = strings.ToLower(strings.TrimSpace(tgt.Kind))
				tgt.URL = strings.TrimSpace(tgt.URL)
				tgt.PageParam = strings.TrimSpace(tgt.PageParam)
				if tgt.URL == "" && tgt.Kind != KindStatic {
					tgt.URL = src.BaseURL
				}
				src.Targets[t] = tgt
			}
			sources[s] = src
		}
		c.Groups[g] = sources
	}
}

func (c *Catalog) validate() error {
	if len(c.Groups) == 0 {
		return errors.New("catalog contains no groups")
	}

	owner := make(map[string]string)
	for _, g := range sortedKeys(c.Groups) {
		for _, s := range sortedKeys(c.Groups[g]) {
			if prev, ok := owner[s]; ok {
				return fmt.Errorf("source %q declared in groups %q and %q", s, prev, g)
			}
			owner[s] = g

			src := c.Groups[g][s]
			if len(src.Targets) == 0 {
				return fmt.Errorf("source %s:%s has no targets", g, s)
			}
			for _, t := range sortedKeys(src.Targets) {
				if err := src.Targets[t].validate(); err != nil {
					return fmt.Errorf("target %s: %w", Key{g, s, t}.Name(), err)
				}
			}
		}
	}
	return nil
}

func (t TargetSpec) validate() error {
	switch t.Kind {
	case KindRSS:
		if t.URL == "" {
			return errors.New("url is required for rss targets")
		}
	case KindBoard:
		if t.URL == "" {
			return errors.New("url is required for board targets")
		}
		if t.Selectors.Item == "" || t.Selectors.Title == "" {
			return errors.New("selectors.item and selectors.title are required for board targets")
		}
	case KindStatic:
	case "":
		return errors.New("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", t.Kind)
	}
	return nil
}

// Env carries the shared clients used to build crawlers.
type Env struct {
	HTTPClient *http.Client
	Resty      *resty.Client
	Limiter    *DomainLimiter
	// Extract enriches targets marked enrich. Nil disables enrichment.
	Extract ExtractFunc
}

// BuildRegistry registers every catalog leaf under its full key and one
// multi crawler per source under SourceKey(source). Targets are combined
// in sorted name order.
func BuildRegistry(cat *Catalog, env Env) (*Registry, error) {
	if cat == nil {
		return nil, errors.New("catalog is nil")
	}

	reg := NewRegistry()
	for _, g := range sortedKeys(cat.Groups) {
		for _, s := range sortedKeys(cat.Groups[g]) {
			src := cat.Groups[g][s]

			var parts []Crawler
			for _, t := range sortedKeys(src.Targets) {
				c, err := buildTarget(src.Targets[t], env)
				if err != nil {
					return nil, fmt.Errorf("target %s: %w", Key{g, s, t}.Name(), err)
				}
				reg.Register(Key{Group: g, Source: s, Target: t}, c)
				parts = append(parts, c)
			}

			if len(parts) == 1 {
				reg.Register(SourceKey(s), parts[0])
			} else {
				reg.Register(SourceKey(s), NewMultiCrawler(s, parts...))
			}
		}
	}
	return reg, nil
}

func buildTarget(t TargetSpec, env Env) (Crawler, error) {
	var c Crawler
	switch t.Kind {
	case KindRSS:
		c = NewRSSCrawler(t.URL, env.HTTPClient, env.Limiter)
	case KindBoard:
		c = NewBoardCrawler(BoardConfig{
			URL:        t.URL,
			PageParam:  t.PageParam,
			DateLayout: t.DateLayout,
			Selectors:  t.Selectors,
		}, env.Resty, env.Limiter)
	case KindStatic:
		c = StaticCrawler(t.Posts)
	default:
		return nil, fmt.Errorf("unknown kind %q", t.Kind)
	}

	if t.Enrich && env.Extract != nil {
		c = NewEnricher(c, env.Extract)
	}
	if t.Options != (Options{}) {
		c = withOptionDefaults{next: c, defaults: t.Options}
	}
	return c, nil
}

// withOptionDefaults fills unset request options from the catalog entry.
type withOptionDefaults struct {
	next     Crawler
	defaults Options
}

func (w withOptionDefaults) ListPosts(ctx context.Context, target models.CrawlTarget, opts Options) ([]models.RawPost, error) {
	if opts.Pages <= 0 {
		opts.Pages = w.defaults.Pages
	}
	if opts.Days <= 0 {
		opts.Days = w.defaults.Days
	}
	if opts.Limit <= 0 {
		opts.Limit = w.defaults.Limit
	}
	return w.next.ListPosts(ctx, target, opts)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
