package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/robfig/cron/v3"

	"github.com/hoanghai1803/newsdraft/internal/events"
)

// Config holds all application configuration.
type Config struct {
	AI       AIConfig       `toml:"ai"`
	Server   ServerConfig   `toml:"server"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Crawl    CrawlConfig    `toml:"crawl"`
	Email    EmailConfig    `toml:"email"`
	Seen     SeenConfig     `toml:"seen"`
	Schedule ScheduleConfig `toml:"schedule"`
	Events   EventsConfig   `toml:"events"`
	Logging  LoggingConfig  `toml:"logging"`
}

// AIConfig holds AI provider settings.
type AIConfig struct {
	Provider       string   `toml:"provider"`
	APIKey         string   `toml:"api_key"`
	Model          string   `toml:"model"`
	BaseURL        string   `toml:"base_url"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	MaxRetries     int      `toml:"max_retries"`
	Keywords       []string `toml:"keywords"`
}

// Timeout returns the per-request HTTP timeout.
func (c AIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// PipelineConfig holds draft pipeline settings.
type PipelineConfig struct {
	Sources            []string `toml:"sources"`
	LimitPerSource     int      `toml:"limit_per_source"`
	Subject            string   `toml:"subject"`
	MaxPerCategory     int      `toml:"max_per_category"`
	SummarySentences   int      `toml:"summary_sentences"`
	Concurrency        int      `toml:"concurrency"`
	CallTimeoutSeconds int      `toml:"call_timeout_seconds"`
	DailySubjectLayout string   `toml:"daily_subject_layout"`
}

// CallTimeout returns the per-provider-call timeout.
func (c PipelineConfig) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// CrawlConfig holds crawler settings.
type CrawlConfig struct {
	CatalogPath          string `toml:"catalog_path"`
	UserAgent            string `toml:"user_agent"`
	TimeoutSeconds       int    `toml:"timeout_seconds"`
	SourceTimeoutSeconds int    `toml:"source_timeout_seconds"`
	RateLimitMillis      int    `toml:"rate_limit_ms"`
	EnrichSnippets       bool   `toml:"enrich_snippets"`
}

// Timeout returns the per-request HTTP timeout.
func (c CrawlConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SourceTimeout bounds one whole source or target crawl, across pages.
func (c CrawlConfig) SourceTimeout() time.Duration {
	return time.Duration(c.SourceTimeoutSeconds) * time.Second
}

// RateLimit returns the minimum delay between requests to one domain.
func (c CrawlConfig) RateLimit() time.Duration {
	return time.Duration(c.RateLimitMillis) * time.Millisecond
}

// EmailConfig holds outbound email settings.
type EmailConfig struct {
	Provider       string         `toml:"provider"`
	FromEmail      string         `toml:"from_email"`
	FromName       string         `toml:"from_name"`
	TimeoutSeconds int            `toml:"timeout_seconds"`
	Footer         string         `toml:"footer"`
	SMTP           SMTPConfig     `toml:"smtp"`
	SendGrid       SendGridConfig `toml:"sendgrid"`
}

// Timeout returns the per-recipient send timeout.
func (c EmailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// SendGridConfig holds SendGrid API settings.
type SendGridConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// SeenConfig holds the delivered-URL store settings.
type SeenConfig struct {
	Type          string `toml:"type"`
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	TTLHours      int    `toml:"ttl_hours"`
}

// TTL returns how long a delivered URL is remembered.
func (c SeenConfig) TTL() time.Duration {
	return time.Duration(c.TTLHours) * time.Hour
}

// ScheduleConfig holds the daily workflow schedule.
type ScheduleConfig struct {
	Enabled bool     `toml:"enabled"`
	Cron    string   `toml:"cron"`
	Sources []string `toml:"sources"`
}

// EventsConfig lists draft-created publishers.
type EventsConfig struct {
	Publishers []events.Config `toml:"publishers"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// SlogLevel maps Level to a slog.Level.
func (c LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var defaultModels = map[string]string{
	"anthropic": "claude-haiku-4-5",
	"openai":    "gpt-4o-mini",
	"gemini":    "gemini-1.5-flash",
	"ollama":    "llama3.1",
}

const defaultConfigContent = `[ai]
provider = "anthropic"            # "anthropic", "openai", "gemini", "ollama" or "keyword"
api_key = ""                      # Your API key (or set AI_API_KEY env var)
model = "claude-haiku-4-5"
timeout_seconds = 60
max_retries = 3

[server]
host = "127.0.0.1"
port = 8080

[pipeline]
sources = ["etnews", "yonhap"]
limit_per_source = 20
subject = "통신시장 주간 뉴스레터(초안)"
max_per_category = 3
summary_sentences = 3
concurrency = 1
call_timeout_seconds = 30
daily_subject_layout = "일일 뉴스레터 - 2006년 01월 02일"

[crawl]
catalog_path = ""                 # Defaults to <data-dir>/catalog.yaml
timeout_seconds = 30
source_timeout_seconds = 120      # Bounds one source crawl, across pages
rate_limit_ms = 1000
enrich_snippets = false

[email]
provider = "log"                  # "smtp", "sendgrid" or "log"
from_email = "newsletter@example.com"
from_name = "통신시장 뉴스레터"
timeout_seconds = 30

[email.smtp]
host = ""
port = 587
username = ""
password = ""                     # Or set SMTP_PASSWORD env var

[email.sendgrid]
api_key = ""                      # Or set SENDGRID_API_KEY env var

[seen]
type = "bbolt"                    # "none", "bbolt" or "redis"
path = ""                         # Defaults to <data-dir>/seen.db
ttl_hours = 720

[schedule]
enabled = false
cron = "0 8 * * 1-5"

[logging]
level = "info"
format = "text"
`

// Load reads and parses the TOML config from the given path. If the file does
// not exist, it creates a default config file at that path. Environment
// variables override values from the file with highest priority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := createDefault(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		slog.Info("created default config file", "path", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Explicit zeros are errors, not requests for the default.
	if err := validateExplicit(&cfg, md); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// createDefault writes the default config content to the given path,
// creating any parent directories as needed.
func createDefault(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}

// validateExplicit checks values that were explicitly set in the TOML file.
func validateExplicit(cfg *Config, md toml.MetaData) error {
	if md.IsDefined("server", "port") {
		if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
		}
	}

	positive := []struct {
		key   []string
		value int
	}{
		{[]string{"pipeline", "limit_per_source"}, cfg.Pipeline.LimitPerSource},
		{[]string{"pipeline", "max_per_category"}, cfg.Pipeline.MaxPerCategory},
		{[]string{"pipeline", "summary_sentences"}, cfg.Pipeline.SummarySentences},
		{[]string{"pipeline", "concurrency"}, cfg.Pipeline.Concurrency},
		{[]string{"pipeline", "call_timeout_seconds"}, cfg.Pipeline.CallTimeoutSeconds},
		{[]string{"crawl", "timeout_seconds"}, cfg.Crawl.TimeoutSeconds},
		{[]string{"crawl", "source_timeout_seconds"}, cfg.Crawl.SourceTimeoutSeconds},
		{[]string{"email", "timeout_seconds"}, cfg.Email.TimeoutSeconds},
		{[]string{"seen", "ttl_hours"}, cfg.Seen.TTLHours},
	}
	for _, p := range positive {
		if md.IsDefined(p.key...) && p.value < 1 {
			return fmt.Errorf("invalid %s %d: must be >= 1", strings.Join(p.key, "."), p.value)
		}
	}

	if md.IsDefined("ai", "max_retries") && cfg.AI.MaxRetries < 0 {
		return fmt.Errorf("invalid ai.max_retries %d: must be >= 0", cfg.AI.MaxRetries)
	}
	if md.IsDefined("crawl", "rate_limit_ms") && cfg.Crawl.RateLimitMillis < 0 {
		return fmt.Errorf("invalid crawl.rate_limit_ms %d: must be >= 0", cfg.Crawl.RateLimitMillis)
	}
	return nil
}

// applyDefaults sets default values for any zero-valued fields.
func applyDefaults(cfg *Config) {
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "anthropic"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModels[cfg.AI.Provider]
	}
	if cfg.AI.TimeoutSeconds == 0 {
		cfg.AI.TimeoutSeconds = 60
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}

	p := &cfg.Pipeline
	if p.LimitPerSource == 0 {
		p.LimitPerSource = 20
	}
	if p.Subject == "" {
		p.Subject = "통신시장 주간 뉴스레터(초안)"
	}
	if p.MaxPerCategory == 0 {
		p.MaxPerCategory = 3
	}
	if p.SummarySentences == 0 {
		p.SummarySentences = 3
	}
	if p.Concurrency == 0 {
		p.Concurrency = 1
	}
	if p.CallTimeoutSeconds == 0 {
		p.CallTimeoutSeconds = 30
	}
	if p.DailySubjectLayout == "" {
		p.DailySubjectLayout = "일일 뉴스레터 - 2006년 01월 02일"
	}

	if cfg.Crawl.TimeoutSeconds == 0 {
		cfg.Crawl.TimeoutSeconds = 30
	}
	if cfg.Crawl.SourceTimeoutSeconds == 0 {
		cfg.Crawl.SourceTimeoutSeconds = 120
	}

	if cfg.Email.Provider == "" {
		cfg.Email.Provider = "log"
	}
	if cfg.Email.TimeoutSeconds == 0 {
		cfg.Email.TimeoutSeconds = 30
	}
	if cfg.Email.SMTP.Port == 0 {
		cfg.Email.SMTP.Port = 587
	}

	if cfg.Seen.Type == "" {
		cfg.Seen.Type = "none"
	}
	if cfg.Seen.TTLHours == 0 {
		cfg.Seen.TTLHours = 720
	}

	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = "0 8 * * 1-5"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// applyEnvOverrides applies environment variable overrides. Environment
// variables take highest priority over config file values.
//
// Priority for ai.api_key:
//  1. AI_API_KEY (generic, highest)
//  2. ANTHROPIC_API_KEY, OPENAI_API_KEY or GEMINI_API_KEY, matching the
//     configured provider
func applyEnvOverrides(cfg *Config) {
	providerEnv := map[string]string{
		"anthropic": "ANTHROPIC_API_KEY",
		"openai":    "OPENAI_API_KEY",
		"gemini":    "GEMINI_API_KEY",
	}
	if name, ok := providerEnv[cfg.AI.Provider]; ok {
		if v := os.Getenv(name); v != "" {
			cfg.AI.APIKey = v
		}
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}

	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Email.SMTP.Password = v
	}
	if v := os.Getenv("SENDGRID_API_KEY"); v != "" {
		cfg.Email.SendGrid.APIKey = v
	}
}

// validate checks that configuration values are within acceptable ranges.
func validate(cfg *Config) error {
	switch cfg.AI.Provider {
	case "anthropic", "openai", "gemini", "ollama", "keyword":
	default:
		return fmt.Errorf("invalid ai.provider %q: must be one of anthropic, openai, gemini, ollama, keyword", cfg.AI.Provider)
	}
	if cfg.AI.Provider == "ollama" && cfg.AI.BaseURL == "" {
		return errors.New("ai.base_url is required for the ollama provider")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d: must be between 1 and 65535", cfg.Server.Port)
	}

	switch cfg.Email.Provider {
	case "log":
	case "smtp":
		if cfg.Email.SMTP.Host == "" {
			return errors.New("email.smtp.host is required for the smtp provider")
		}
	case "sendgrid":
		if cfg.Email.SendGrid.APIKey == "" {
			slog.Warn("email.sendgrid.api_key is empty: set it in the config file or via SENDGRID_API_KEY environment variable")
		}
	default:
		return fmt.Errorf("invalid email.provider %q: must be smtp, sendgrid or log", cfg.Email.Provider)
	}

	switch cfg.Seen.Type {
	case "none", "bbolt":
	case "redis":
		if cfg.Seen.RedisAddr == "" {
			return errors.New("seen.redis_addr is required for the redis store")
		}
	default:
		return fmt.Errorf("invalid seen.type %q: must be none, bbolt or redis", cfg.Seen.Type)
	}

	if cfg.Schedule.Enabled {
		if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
			return fmt.Errorf("invalid schedule.cron %q: %w", cfg.Schedule.Cron, err)
		}
	}

	for i, pub := range cfg.Events.Publishers {
		if err := pub.Sanitize().Validate(); err != nil {
			return fmt.Errorf("invalid events.publishers[%d]: %w", i, err)
		}
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid logging.format %q: must be text or json", cfg.Logging.Format)
	}

	if cfg.AI.APIKey == "" && cfg.AI.Provider != "keyword" && cfg.AI.Provider != "ollama" {
		slog.Warn("ai.api_key is empty: set it in the config file or via AI_API_KEY environment variable")
	}

	return nil
}
