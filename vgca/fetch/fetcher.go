// Package fetch retrieves Japanese VGC articles and distills them into
// prompt-ready text blocks and image references.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// Config controls article retrieval. Zero values select the defaults.
type Config struct {
	Timeout       time.Duration
	MaxBodyBytes  int64
	MinBlockRunes int
	MaxImages     int
	MaxImageBytes int64
	Profiles      []Profile
	Sites         *SiteProfiles
}

// Fetcher retrieves a page with a sequence of header profiles and extracts
// its article content. It holds no per-request state and is safe for
// concurrent use.
type Fetcher struct {
	client        *http.Client
	profiles      []Profile
	extractor     *Extractor
	maxBodyBytes  int64
	maxImages     int
	maxImageBytes int64
	logger        zerolog.Logger
}

// New builds a Fetcher from cfg.
func New(cfg Config, logger zerolog.Logger) *Fetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 2 << 20
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 4
	}
	if cfg.MaxImageBytes <= 0 {
		cfg.MaxImageBytes = 4 << 20
	}
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = DefaultProfiles()
	}
	sites := cfg.Sites
	if sites == nil {
		sites = DefaultSiteProfiles()
	}
	return &Fetcher{
		client:        &http.Client{Timeout: cfg.Timeout},
		profiles:      cfg.Profiles,
		extractor:     NewExtractor(cfg.MinBlockRunes, sites),
		maxBodyBytes:  cfg.MaxBodyBytes,
		maxImages:     cfg.MaxImages,
		maxImageBytes: cfg.MaxImageBytes,
		logger:        logger,
	}
}

// Fetch retrieves rawURL, trying each header profile in order, and returns
// the extracted article content. The first profile that yields a non-error
// response with extractable content wins; later profiles are not tried.
// All profiles failing with HTTP or network errors is a FetchError; pages
// that respond but carry no article text are an EmptyContentError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*ExtractedContent, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || pageURL.Host == "" || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("not a fetchable url")}
	}

	var lastErr error
	responded := false
	for _, profile := range f.profiles {
		content, err := f.fetchWith(ctx, pageURL, profile)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &FetchError{URL: rawURL, Err: ctx.Err()}
			}
			f.logger.Debug().Str("url", rawURL).Str("profile", profile.Name).Err(err).Msg("fetch attempt failed")
			lastErr = err
			continue
		}
		responded = true
		if !content.Empty() {
			f.logger.Debug().
				Str("url", rawURL).
				Str("profile", profile.Name).
				Int("headings", len(content.Headings)).
				Int("paragraphs", len(content.Paragraphs)).
				Int("images", len(content.ImageURLs)).
				Msg("article extracted")
			return content, nil
		}
		f.logger.Debug().Str("url", rawURL).Str("profile", profile.Name).Msg("response had no extractable content")
	}

	if responded {
		return nil, &EmptyContentError{URL: rawURL}
	}
	return nil, &FetchError{URL: rawURL, Err: lastErr}
}

func (f *Fetcher) fetchWith(ctx context.Context, pageURL *url.URL, profile Profile) (*ExtractedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, err
	}
	for key, value := range profile.Headers {
		req.Header.Set(key, value)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	base := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		base = resp.Request.URL // follow redirects for relative image resolution
	}
	return f.extractor.Extract(base, io.LimitReader(resp.Body, f.maxBodyBytes))
}
