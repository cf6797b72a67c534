// Package analysis runs the article-to-team pipeline: packed article text
// goes through the prompt builder to the completion provider, the raw
// response is parsed into a structured team, and results are cached by
// source URL.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/fetch"
	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/team"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

// Source is one analysis request: an article URL to fetch, or raw pasted
// text that bypasses retrieval and goes straight to normalization.
// Exactly one of the two must be set.
type Source struct {
	URL  string
	Text string
}

// ArticleFetcher retrieves article content and image payloads. It is the
// seam between the pipeline and the network; *fetch.Fetcher is the
// production implementation.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.ExtractedContent, error)
	FetchImages(ctx context.Context, urls []string) []fetch.ImageData
}

var _ ArticleFetcher = (*fetch.Fetcher)(nil)

// Deps carries the pipeline's collaborators. Nil ports fall back to
// no-op implementations, so tests can wire only what they observe.
type Deps struct {
	Fetcher  ArticleFetcher
	Builder  *PromptBuilder
	Packer   *ContentPacker
	Parser   *ResponseParser
	Provider ports.Provider
	Cache    ports.Cache
	Limiter  ports.RateLimiter
	Tracer   ports.Tracer
	Store    ports.HistoryStore
	Guards   *Guardrails
	Exporter *ExportValidator
	Clock    ports.Clock
	Logger   zerolog.Logger
}

// Settings are the per-process pipeline knobs.
type Settings struct {
	CacheTTL       time.Duration // lifetime of a cached result
	IncludeImages  bool          // download image payloads for the prompt
	ValidateExport bool          // schema-check result JSON before persisting
	Completion     ports.Options // forwarded to every provider call
}

// completionLimitKey is the rate limiter bucket shared by all completion
// calls in this process.
const completionLimitKey = "completion"

// Orchestrator coordinates one strictly sequential pipeline per request:
// cache read, fetch, normalize, pack, prompt, complete, parse, cache
// write. Requests for different sources are independent; the cache is the
// only shared state and resolves same-key races last-write-wins.
type Orchestrator struct {
	fetcher  ArticleFetcher
	builder  *PromptBuilder
	packer   *ContentPacker
	parser   *ResponseParser
	provider ports.Provider
	cache    ports.Cache
	limiter  ports.RateLimiter
	tracer   ports.Tracer
	store    ports.HistoryStore
	guards   *Guardrails
	exporter *ExportValidator
	clock    ports.Clock
	logger   zerolog.Logger
	settings Settings
}

// NewOrchestrator wires the pipeline. Provider is required for Analyze;
// everything else defaults to a usable zero-behavior implementation.
func NewOrchestrator(deps Deps, settings Settings) *Orchestrator {
	if deps.Builder == nil {
		deps.Builder = NewPromptBuilder()
	}
	if deps.Packer == nil {
		deps.Packer = NewContentPacker(Budget{})
	}
	if deps.Parser == nil {
		deps.Parser = NewResponseParser()
	}
	if deps.Cache == nil {
		deps.Cache = &noopCache{}
	}
	if deps.Limiter == nil {
		deps.Limiter = &noopRateLimiter{}
	}
	if deps.Tracer == nil {
		deps.Tracer = &noopTracer{}
	}
	if deps.Store == nil {
		deps.Store = &noopHistoryStore{}
	}
	if deps.Guards == nil {
		deps.Guards = NewGuardrails()
	}
	if deps.Exporter == nil {
		deps.Exporter = NewExportValidator()
	}
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if settings.CacheTTL <= 0 {
		settings.CacheTTL = 24 * time.Hour
	}
	return &Orchestrator{
		fetcher:  deps.Fetcher,
		builder:  deps.Builder,
		packer:   deps.Packer,
		parser:   deps.Parser,
		provider: deps.Provider,
		cache:    deps.Cache,
		limiter:  deps.Limiter,
		tracer:   deps.Tracer,
		store:    deps.Store,
		guards:   deps.Guards,
		exporter: deps.Exporter,
		clock:    deps.Clock,
		logger:   deps.Logger,
		settings: settings,
	}
}

// Analyze runs the pipeline for one source and returns the structured
// team. Fetch and completion failures abort the request; parse and EV
// validation issues degrade field-by-field inside the result instead.
func (o *Orchestrator) Analyze(ctx context.Context, src Source) (*team.Analysis, error) {
	if err := o.guards.CheckSource(src); err != nil {
		return nil, err
	}

	ctx, finish := o.tracer.StartSpan(ctx, "analyze", map[string]any{
		"source_url": src.URL,
		"pasted":     src.URL == "",
	})

	var analysis *team.Analysis
	var err error
	if src.URL != "" {
		analysis, err = o.analyzeURL(ctx, strings.TrimSpace(src.URL))
	} else {
		analysis, err = o.analyzeText(ctx, src.Text)
	}
	finish(err)
	return analysis, err
}

// analyzeURL serves from cache when fresh, otherwise fetches the article
// and runs the completion stages. The parsed result is cached under the
// normalized URL's key and recorded in history.
func (o *Orchestrator) analyzeURL(ctx context.Context, rawURL string) (*team.Analysis, error) {
	key := CacheKey(rawURL)
	if data, ok := o.cache.Get(ctx, key); ok {
		if analysis, err := decodeAnalysis(data); err == nil {
			o.tracer.Event(ctx, "cache_hit", map[string]any{"key": key})
			return analysis, nil
		}
		// Undecodable entry: drop it and analyze fresh.
		_ = o.cache.Delete(ctx, key)
		o.logger.Warn().Str("key", key).Msg("discarded corrupt cache entry")
	}

	content, err := o.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	// Image payloads download while the text is normalized and packed;
	// both read the already-fetched page and nothing orders them.
	var images []fetch.ImageData
	var wg conc.WaitGroup
	if o.settings.IncludeImages && len(content.ImageURLs) > 0 {
		wg.Go(func() {
			images = o.fetcher.FetchImages(ctx, content.ImageURLs)
		})
	}
	packed := o.packBlocks(content.Blocks())
	wg.Wait()

	if packed == "" {
		return nil, &fetch.EmptyContentError{URL: rawURL}
	}

	analysis, err := o.complete(ctx, packed, imagePayloads(images), map[string]string{"source_url": rawURL})
	if err != nil {
		return nil, err
	}
	analysis.SourceURL = rawURL

	if data, err := o.exporter.Marshal(analysis, o.settings.ValidateExport); err != nil {
		o.tracer.Event(ctx, "export_invalid", map[string]any{"error": err.Error()})
		o.logger.Warn().Err(err).Str("url", rawURL).Msg("result failed export validation; not persisted")
	} else {
		if err := o.cache.Set(ctx, key, data, o.settings.CacheTTL); err != nil {
			o.tracer.Event(ctx, "cache_error", map[string]any{"error": err.Error()})
		}
		o.saveHistory(ctx, analysis, data)
	}
	return analysis, nil
}

// analyzeText runs the pipeline on pasted article text. There is no
// source URL to key a cache slot on, so pasted analyses are computed
// fresh each time; they are still recorded in history.
func (o *Orchestrator) analyzeText(ctx context.Context, text string) (*team.Analysis, error) {
	packed := o.packBlocks(splitTextBlocks(text))
	if packed == "" {
		return nil, ErrEmptyInput
	}

	analysis, err := o.complete(ctx, packed, nil, map[string]string{"source": "pasted"})
	if err != nil {
		return nil, err
	}

	if data, err := o.exporter.Marshal(analysis, o.settings.ValidateExport); err != nil {
		o.tracer.Event(ctx, "export_invalid", map[string]any{"error": err.Error()})
	} else {
		o.saveHistory(ctx, analysis, data)
	}
	return analysis, nil
}

// complete builds the prompt, makes the single provider call and parses
// the response. The provider owns transient-failure retries; a rate limit
// refusal from our own bucket is reported in the same taxonomy so the
// caller renders one "try again later" path.
func (o *Orchestrator) complete(ctx context.Context, text string, images []ports.ImagePayload, meta map[string]string) (*team.Analysis, error) {
	release, err := o.limiter.Acquire(ctx, completionLimitKey)
	if err != nil {
		return nil, &ports.CompletionError{Kind: ports.CompletionRateLimited, Err: err}
	}
	defer release()

	input := o.builder.Build(text, images, meta)

	callCtx, finish := o.tracer.StartSpan(ctx, "provider_call", map[string]any{
		"prompt_runes": utf8.RuneCountInString(input.Prompt),
		"images":       len(images),
	})
	completion, err := o.provider.Complete(callCtx, input, o.settings.Completion)
	finish(err)
	if err != nil {
		return nil, err
	}

	analysis := o.parser.Parse(completion.Text)
	analysis.ID = uuid.NewString()
	analysis.ProducedAt = o.clock.Now()

	attrs := map[string]any{
		"members":        len(analysis.Members),
		"low_confidence": analysis.LowConfidence,
	}
	if completion.Usage != nil {
		attrs["total_tokens"] = completion.Usage.TotalTokens
	}
	o.tracer.Event(ctx, "parsed", attrs)
	return analysis, nil
}

// saveHistory records a finished analysis. Store failures never fail the
// analysis.
func (o *Orchestrator) saveHistory(ctx context.Context, analysis *team.Analysis, data []byte) {
	err := o.store.SaveAnalysis(ctx, ports.HistoryRecord{
		ID:        analysis.ID,
		SourceURL: analysis.SourceURL,
		Title:     analysis.Title,
		Result:    data,
		CreatedAt: analysis.ProducedAt,
	})
	if err != nil {
		o.tracer.Event(ctx, "store_error", map[string]any{"error": err.Error()})
		o.logger.Warn().Err(err).Msg("history save failed")
	}
}

// packBlocks normalizes each text block and packs the survivors into the
// prompt budget.
func (o *Orchestrator) packBlocks(blocks []string) string {
	normalized := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if n := fetch.Normalize(block); n != "" {
			normalized = append(normalized, n)
		}
	}
	return o.packer.Pack(normalized, nil)
}

// CacheEntries lists the cached results with age and remaining TTL.
func (o *Orchestrator) CacheEntries(ctx context.Context) []ports.Entry {
	return o.cache.Entries(ctx)
}

// CacheStats summarizes cache occupancy.
func (o *Orchestrator) CacheStats(ctx context.Context) ports.CacheStats {
	return o.cache.Stats(ctx)
}

// ClearCache removes every cached result.
func (o *Orchestrator) ClearCache(ctx context.Context) error {
	return o.cache.Clear(ctx)
}

// History returns up to k persisted analyses, most recent first. Without
// a configured store it is always empty.
func (o *Orchestrator) History(ctx context.Context, k int) ([]ports.HistoryRecord, error) {
	return o.store.ListRecent(ctx, k)
}

// Export renders an analysis as indented JSON, schema-validated when
// export validation is enabled.
func (o *Orchestrator) Export(analysis *team.Analysis) ([]byte, error) {
	return o.exporter.Marshal(analysis, o.settings.ValidateExport)
}

// imagePayloads converts downloaded images into provider payloads.
func imagePayloads(images []fetch.ImageData) []ports.ImagePayload {
	if len(images) == 0 {
		return nil
	}
	payloads := make([]ports.ImagePayload, len(images))
	for i, img := range images {
		payloads[i] = ports.ImagePayload{MIMEType: img.MIMEType, Data: img.Data}
	}
	return payloads
}

// splitTextBlocks cuts pasted text into paragraph blocks on blank lines.
func splitTextBlocks(text string) []string {
	parts := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			blocks = append(blocks, trimmed)
		}
	}
	return blocks
}

func decodeAnalysis(data []byte) (*team.Analysis, error) {
	var analysis team.Analysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return nil, fmt.Errorf("decode cached analysis: %w", err)
	}
	return &analysis, nil
}

// NormalizeSourceURL canonicalizes an article URL for key derivation:
// lowercased scheme and host, default port and fragment stripped,
// trailing slash stripped. Two spellings of the same address share one
// cache slot; the article body is deliberately not part of the key, so a
// changed article behind the same URL stays stale until the TTL passes.
func NormalizeSourceURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.Scheme = strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Host)
	switch {
	case u.Scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}
	u.Host = host
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// CacheKey derives the cache slot for a source URL.
func CacheKey(rawURL string) string {
	return fmt.Sprintf("article:%08x", hashString(NormalizeSourceURL(rawURL)))
}

// hashString is djb2, kept for short deterministic keys.
func hashString(s string) uint32 {
	hash := uint32(5381)
	for _, r := range s {
		hash = ((hash << 5) + hash) + uint32(r)
	}
	return hash
}
