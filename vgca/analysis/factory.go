package analysis

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/adapters"
	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/config"
	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/fetch"
	"github.com/rs/zerolog"
)

// Factory creates and wires pipeline components from configuration.
type Factory struct {
	cfg    *config.Config
	db     *sql.DB // optional, for the analysis history store
	logger zerolog.Logger
}

// NewFactory creates a pipeline factory.
func NewFactory(cfg *config.Config, db *sql.DB, logger zerolog.Logger) *Factory {
	return &Factory{cfg: cfg, db: db, logger: logger}
}

// CreateComponents builds a fully wired Orchestrator from config, plus a
// TemplateWatcher when prompt hot-reload is enabled (nil otherwise). The
// watcher shares the orchestrator's prompt builder, so reloads take
// effect on the next analysis.
func (f *Factory) CreateComponents() (*Orchestrator, *TemplateWatcher, error) {
	provider, err := f.createProvider()
	if err != nil {
		return nil, nil, err
	}

	builder, err := f.createBuilder()
	if err != nil {
		return nil, nil, err
	}

	orchestrator := NewOrchestrator(Deps{
		Fetcher:  f.createFetcher(),
		Builder:  builder,
		Packer:   NewContentPacker(Budget{MaxRunes: f.cfg.Analyzer.ContentBudgetRunes}),
		Parser:   NewResponseParser(),
		Provider: provider,
		Cache:    f.createCache(),
		Limiter:  f.createRateLimiter(),
		Tracer:   f.createTracer(),
		Store:    f.createStore(),
		Logger:   f.logger,
	}, Settings{
		CacheTTL:       f.cfg.Analyzer.CacheTTL,
		IncludeImages:  f.cfg.Fetch.IncludeImages,
		ValidateExport: f.cfg.Analyzer.ValidateExport,
		Completion: ports.Options{
			MaxOutputTokens: f.cfg.Completion.MaxOutputTokens,
			Temperature:     f.cfg.Completion.Temperature,
			TopP:            f.cfg.Completion.TopP,
			TimeoutMs:       int(f.cfg.Completion.Timeout.Milliseconds()),
		},
	})

	watcher, err := f.createTemplateWatcher(builder)
	if err != nil {
		return nil, nil, err
	}
	return orchestrator, watcher, nil
}

// createProvider builds the completion provider named in config.
func (f *Factory) createProvider() (ports.Provider, error) {
	name := strings.ToLower(strings.TrimSpace(f.cfg.Completion.Provider))
	switch name {
	case "", "gemini":
		return adapters.NewGeminiProvider(adapters.GeminiConfig{
			APIKey:     f.cfg.Completion.APIKey,
			BaseURL:    f.cfg.Completion.BaseURL,
			Model:      f.cfg.Completion.Model,
			Timeout:    f.cfg.Completion.Timeout,
			MaxRetries: f.cfg.Completion.MaxRetries,
			BaseDelay:  f.cfg.Completion.RetryBaseDelay,
			MaxDelay:   f.cfg.Completion.RetryMaxDelay,
		}, f.logger), nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", f.cfg.Completion.Provider)
	}
}

// createBuilder loads the prompt template override and restricted list
// from config. A missing or invalid template file is a config error.
func (f *Factory) createBuilder() (*PromptBuilder, error) {
	builder := NewPromptBuilder()
	if path := f.cfg.Prompt.TemplatePath; path != "" {
		tpl, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read prompt template: %w", err)
		}
		if err := builder.SetTemplate(string(tpl)); err != nil {
			return nil, fmt.Errorf("prompt template %s: %w", path, err)
		}
	}
	builder.SetRestricted(f.cfg.Prompt.Restricted)
	return builder, nil
}

// createTemplateWatcher starts nothing; it only constructs the watcher
// when hot-reload is configured and a template file exists to watch.
func (f *Factory) createTemplateWatcher(builder *PromptBuilder) (*TemplateWatcher, error) {
	if !f.cfg.Prompt.WatchTemplate || f.cfg.Prompt.TemplatePath == "" {
		return nil, nil
	}
	watcher, err := NewTemplateWatcher(f.cfg.Prompt.TemplatePath, builder, f.logger)
	if err != nil {
		return nil, fmt.Errorf("watch prompt template: %w", err)
	}
	return watcher, nil
}

// createFetcher builds the article fetcher from config.
func (f *Factory) createFetcher() ArticleFetcher {
	return fetch.New(fetch.Config{
		Timeout:       f.cfg.Fetch.Timeout,
		MaxBodyBytes:  f.cfg.Fetch.MaxBodyBytes,
		MinBlockRunes: f.cfg.Fetch.MinBlockRunes,
		MaxImages:     f.cfg.Fetch.MaxImages,
		MaxImageBytes: f.cfg.Fetch.MaxImageBytes,
	}, f.logger)
}

// createCache builds the result cache from config.
func (f *Factory) createCache() ports.Cache {
	if !f.cfg.Analyzer.CacheEnabled {
		return &noopCache{}
	}
	return adapters.NewMemoryCache(ports.SystemClock{})
}

// createRateLimiter builds the completion rate limiter from config.
func (f *Factory) createRateLimiter() ports.RateLimiter {
	if !f.cfg.Analyzer.RateLimitEnabled {
		return &noopRateLimiter{}
	}
	return adapters.NewTokenBucket(
		f.cfg.Analyzer.RateLimitCapacity,
		f.cfg.Analyzer.RateLimitRefillRate,
		ports.SystemClock{},
	)
}

// createTracer builds the span tracer from config.
func (f *Factory) createTracer() ports.Tracer {
	if !f.cfg.Analyzer.EnableTracing {
		return &noopTracer{}
	}
	return adapters.NewZerologTracer(f.logger)
}

// createStore builds the history store when a database is attached.
func (f *Factory) createStore() ports.HistoryStore {
	if f.db == nil {
		return &noopHistoryStore{}
	}
	return adapters.NewLibSQLHistoryStore(f.db)
}

// noopCache implements Cache with no-op behavior for disabled caching.
type noopCache struct{}

func (c *noopCache) Get(ctx context.Context, key string) ([]byte, bool) { return nil, false }
func (c *noopCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}
func (c *noopCache) Delete(ctx context.Context, key string) error { return nil }
func (c *noopCache) Entries(ctx context.Context) []ports.Entry    { return nil }
func (c *noopCache) Stats(ctx context.Context) ports.CacheStats   { return ports.CacheStats{} }
func (c *noopCache) Clear(ctx context.Context) error              { return nil }

// noopRateLimiter implements RateLimiter with no-op behavior.
type noopRateLimiter struct{}

func (r *noopRateLimiter) Acquire(ctx context.Context, key string) (release func(), err error) {
	return func() {}, nil
}

// noopTracer implements Tracer with no-op behavior.
type noopTracer struct{}

func (t *noopTracer) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, func(err error)) {
	return ctx, func(err error) {}
}

func (t *noopTracer) Event(ctx context.Context, name string, attrs map[string]any) {}

// noopHistoryStore implements HistoryStore with no-op behavior.
type noopHistoryStore struct{}

func (s *noopHistoryStore) SaveAnalysis(ctx context.Context, rec ports.HistoryRecord) error {
	return nil
}

func (s *noopHistoryStore) ListRecent(ctx context.Context, k int) ([]ports.HistoryRecord, error) {
	return nil, nil
}

// Ensure all no-op types implement their ports.
var (
	_ ports.Cache        = (*noopCache)(nil)
	_ ports.RateLimiter  = (*noopRateLimiter)(nil)
	_ ports.Tracer       = (*noopTracer)(nil)
	_ ports.HistoryStore = (*noopHistoryStore)(nil)
)
