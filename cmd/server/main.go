package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/hoanghai1803/newsdraft/internal/ai"
	"github.com/hoanghai1803/newsdraft/internal/api"
	"github.com/hoanghai1803/newsdraft/internal/config"
	"github.com/hoanghai1803/newsdraft/internal/crawl"
	"github.com/hoanghai1803/newsdraft/internal/email"
	"github.com/hoanghai1803/newsdraft/internal/events"
	"github.com/hoanghai1803/newsdraft/internal/pipeline"
	"github.com/hoanghai1803/newsdraft/internal/retry"
	"github.com/hoanghai1803/newsdraft/internal/seen"
	"github.com/hoanghai1803/newsdraft/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	dataDir := flag.String("data-dir", "./data", "path to data directory")
	once := flag.Bool("once", false, "run the daily workflow once and exit")
	flag.Parse()

	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	// Load configuration (auto-creates default if missing).
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Logging)

	if err := run(cfg, *dataDir, *once); err != nil {
		slog.Error("newsdraft failed", "error", err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.LoggingConfig) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func run(cfg *config.Config, dataDir string, once bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode and pragmas.
	db, err := storage.OpenDatabase(filepath.Join(dataDir, "newsdraft.db"))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	store := storage.NewStore(db)

	provider, err := ai.NewProvider(ctx, ai.ProviderConfig{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		Model:    cfg.AI.Model,
		BaseURL:  cfg.AI.BaseURL,
		Timeout:  cfg.AI.Timeout(),
		Keywords: cfg.AI.Keywords,
	})
	if err != nil {
		return fmt.Errorf("creating AI provider: %w", err)
	}
	if cfg.AI.MaxRetries > 0 {
		provider = ai.WithRetry(provider, retry.Config{MaxRetries: cfg.AI.MaxRetries, BaseDelay: time.Second})
	}
	slog.Info("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)

	registry, err := buildRegistry(cfg.Crawl, dataDir)
	if err != nil {
		return err
	}

	seenPath := cfg.Seen.Path
	if seenPath == "" {
		seenPath = filepath.Join(dataDir, "seen.db")
	}
	seenStore, err := seen.NewStore(cfg.Seen.Type, seenPath, seen.Options{
		TTL:           cfg.Seen.TTL(),
		RedisAddr:     cfg.Seen.RedisAddr,
		RedisPassword: cfg.Seen.RedisPassword,
		RedisDB:       cfg.Seen.RedisDB,
	})
	if err != nil {
		return fmt.Errorf("opening seen store: %w", err)
	}
	defer seenStore.Close()

	sender, err := email.NewSender(email.Config{
		Provider:        cfg.Email.Provider,
		FromEmail:       cfg.Email.FromEmail,
		FromName:        cfg.Email.FromName,
		Timeout:         cfg.Email.Timeout(),
		SMTPHost:        cfg.Email.SMTP.Host,
		SMTPPort:        cfg.Email.SMTP.Port,
		SMTPUsername:    cfg.Email.SMTP.Username,
		SMTPPassword:    cfg.Email.SMTP.Password,
		SendGridAPIKey:  cfg.Email.SendGrid.APIKey,
		SendGridBaseURL: cfg.Email.SendGrid.BaseURL,
	})
	if err != nil {
		return fmt.Errorf("creating email sender: %w", err)
	}

	publishers, err := events.BuildAll(ctx, events.DefaultRegistry(), cfg.Events.Publishers)
	if err != nil {
		return fmt.Errorf("building event publishers: %w", err)
	}
	fanout := events.NewFanout(publishers)
	defer fanout.Close()
	slog.Info("event publishers configured", "count", fanout.Size())

	drafter, err := pipeline.NewDrafter(pipeline.Deps{
		Registry:   registry,
		Relevance:  provider,
		Dedup:      provider,
		Classifier: provider,
		Summarizer: provider,
		Repository: store,
		Runs:       store,
		Seen:       seenStore,
		Notifier:   fanout,
	}, drafterConfig(cfg))
	if err != nil {
		return err
	}

	batch, err := pipeline.NewBatchCollector(registry, store, store, cfg.Crawl.SourceTimeout())
	if err != nil {
		return err
	}

	daily, err := pipeline.NewDailyWorkflow(drafter, sender, store, store, seenStore, pipeline.DailyConfig{
		SubjectLayout: cfg.Pipeline.DailySubjectLayout,
		SendTimeout:   cfg.Email.Timeout(),
		Footer:        cfg.Email.Footer,
	})
	if err != nil {
		return err
	}

	dailySources := cfg.Schedule.Sources
	if len(dailySources) == 0 {
		dailySources = cfg.Pipeline.Sources
	}
	runDaily := func(ctx context.Context) error {
		res, err := daily.Run(ctx, pipeline.DailyRequest{Sources: dailySources, LimitPerSource: cfg.Pipeline.LimitPerSource})
		if err != nil {
			return err
		}
		slog.Info("daily workflow finished",
			"draft_id", res.DraftID,
			"items", res.Report.Drafted,
			"sent", res.Delivery.Successful,
			"failed", res.Delivery.Failed,
		)
		return nil
	}

	if once {
		return runDaily(ctx)
	}

	if cfg.Schedule.Enabled {
		c := cron.New()
		if _, err := c.AddFunc(cfg.Schedule.Cron, func() {
			if err := runDaily(ctx); err != nil {
				slog.Error("scheduled daily workflow failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("scheduling daily workflow: %w", err)
		}
		c.Start()
		defer func() { <-c.Stop().Done() }()
		slog.Info("daily workflow scheduled", "cron", cfg.Schedule.Cron)
	}

	router := api.NewRouter(api.Deps{
		Store:          store,
		Drafter:        drafter,
		Batch:          batch,
		Daily:          daily,
		Sources:        registry,
		DefaultSources: cfg.Pipeline.Sources,
		ProviderName:   cfg.AI.Provider,
		SenderName:     cfg.Email.Provider,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", "http://"+srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func drafterConfig(cfg *config.Config) pipeline.DrafterConfig {
	return pipeline.DrafterConfig{
		Subject:          cfg.Pipeline.Subject,
		MaxPerCategory:   cfg.Pipeline.MaxPerCategory,
		SummarySentences: cfg.Pipeline.SummarySentences,
		CallTimeout:      cfg.Pipeline.CallTimeout(),
		CrawlTimeout:     cfg.Crawl.SourceTimeout(),
		Concurrency:      cfg.Pipeline.Concurrency,
	}
}

// buildRegistry loads the source catalog and builds crawlers for it.
func buildRegistry(cfg config.CrawlConfig, dataDir string) (*crawl.Registry, error) {
	path := cfg.CatalogPath
	if path == "" {
		path = filepath.Join(dataDir, "catalog.yaml")
	}
	cat, err := crawl.LoadCatalog(path)
	if err != nil {
		return nil, fmt.Errorf("loading source catalog: %w", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = crawl.DefaultUserAgent
	}
	limiter := crawl.NewDomainLimiter(cfg.RateLimit())

	env := crawl.Env{
		HTTPClient: crawl.NewHTTPClient(cfg.Timeout(), userAgent),
		Resty:      crawl.NewRestyClient(cfg.Timeout(), userAgent),
		Limiter:    limiter,
	}
	if cfg.EnrichSnippets {
		env.Extract = crawl.ReadabilityExtractor(cfg.Timeout(), userAgent, limiter)
	}

	registry, err := crawl.BuildRegistry(cat, env)
	if err != nil {
		return nil, fmt.Errorf("building crawlers: %w", err)
	}
	slog.Info("crawlers registered", "count", registry.Len(), "catalog", path)
	return registry, nil
}
