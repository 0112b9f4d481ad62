package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hoanghai1803/newsdraft/internal/config"
)

func TestDrafterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[ai]
provider = "keyword"

[pipeline]
max_per_category = 4
concurrency = 2
call_timeout_seconds = 15

[crawl]
timeout_seconds = 10
source_timeout_seconds = 45
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got := drafterConfig(cfg)
	if got.CrawlTimeout != 45*time.Second {
		t.Errorf("CrawlTimeout = %v, want %v", got.CrawlTimeout, 45*time.Second)
	}
	if got.CallTimeout != 15*time.Second {
		t.Errorf("CallTimeout = %v, want %v", got.CallTimeout, 15*time.Second)
	}
	if got.MaxPerCategory != 4 || got.Concurrency != 2 {
		t.Errorf("MaxPerCategory, Concurrency = %d, %d, want 4, 2", got.MaxPerCategory, got.Concurrency)
	}
}
