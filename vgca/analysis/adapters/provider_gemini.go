package adapters

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
	"github.com/rs/zerolog"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel   = "gemini-2.0-flash"
)

// GeminiConfig holds the settings for the Gemini REST provider.
type GeminiConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// GeminiProvider implements the Provider interface against the Gemini
// generateContent REST endpoint. Transient failures (429, 5xx, network
// errors) are retried with exponential backoff; request errors (4xx)
// fail fast.
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	logger     zerolog.Logger
}

// NewGeminiProvider creates a Gemini provider. Zero-valued settings fall
// back to defaults; the API key has no default and is checked on use.
func NewGeminiProvider(cfg GeminiConfig, logger zerolog.Logger) *GeminiProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGeminiBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = 8 * cfg.BaseDelay
	}
	return &GeminiProvider{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		maxDelay:   cfg.MaxDelay,
		logger:     logger,
	}
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

// geminiInlineData carries an image as base64 alongside the prompt text.
type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature,omitempty"`
	TopP            float32 `json:"topP,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// geminiResponse is the subset of the generateContent response we read.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// Complete sends the prompt (and any inline images) to Gemini and returns
// the concatenated candidate text.
func (p *GeminiProvider) Complete(ctx context.Context, in ports.PromptInput, opts ports.Options) (ports.Completion, error) {
	if p.apiKey == "" {
		return ports.Completion{}, &ports.CompletionError{
			Kind:     ports.CompletionConfig,
			Attempts: 0,
			Err:      fmt.Errorf("gemini api key is not configured"),
		}
	}

	if opts.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	body, err := json.Marshal(p.buildRequest(in, opts))
	if err != nil {
		return ports.Completion{}, &ports.CompletionError{
			Kind:     ports.CompletionConfig,
			Attempts: 0,
			Err:      fmt.Errorf("marshal request: %w", err),
		}
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, p.apiKey)

	var lastErr error
	var lastKind ports.CompletionErrorKind
	var attempt int
	for ; ; attempt++ {
		completion, kind, err := p.send(ctx, url, body)
		if err == nil {
			return completion, nil
		}
		if ctx.Err() != nil {
			return ports.Completion{}, ctx.Err()
		}

		lastErr = err
		lastKind = kind

		retry, delay := p.decideRetry(attempt, kind)
		if !retry {
			break
		}

		p.logger.Debug().
			Str("model", p.model).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("retrying gemini request")

		select {
		case <-ctx.Done():
			return ports.Completion{}, ctx.Err()
		case <-time.After(delay):
		}
	}

	return ports.Completion{}, &ports.CompletionError{
		Kind:     lastKind,
		Attempts: attempt + 1,
		Err:      lastErr,
	}
}

func (p *GeminiProvider) buildRequest(in ports.PromptInput, opts ports.Options) geminiRequest {
	parts := []geminiPart{{Text: in.Prompt}}
	for _, img := range in.Images {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: img.MIMEType,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}

	req := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
	}
	if opts.MaxOutputTokens > 0 || opts.Temperature > 0 || opts.TopP > 0 {
		req.GenerationConfig = &geminiGenerationConfig{
			Temperature:     opts.Temperature,
			TopP:            opts.TopP,
			MaxOutputTokens: opts.MaxOutputTokens,
		}
	}
	return req
}

// send performs one HTTP round trip. On failure it classifies the error
// so the retry loop can decide whether another attempt makes sense.
func (p *GeminiProvider) send(ctx context.Context, url string, body []byte) (ports.Completion, ports.CompletionErrorKind, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ports.Completion{}, ports.CompletionConfig, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ports.Completion{}, ports.CompletionTransient, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return ports.Completion{}, ports.CompletionTransient, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return ports.Completion{}, classifyStatus(resp.StatusCode), apiError(resp.StatusCode, respBody)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return ports.Completion{}, ports.CompletionTransient, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return ports.Completion{}, ports.CompletionConfig, fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	completion := ports.Completion{Text: text.String(), Raw: parsed}
	if parsed.UsageMetadata != nil {
		completion.Usage = &ports.Usage{
			PromptTokens:     parsed.UsageMetadata.PromptTokenCount,
			CompletionTokens: parsed.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      parsed.UsageMetadata.TotalTokenCount,
		}
	}
	return completion, "", nil
}

// decideRetry reports whether a failed attempt (zero-based) should be
// retried and how long to back off first. Delays double from baseDelay
// and are capped at maxDelay.
func (p *GeminiProvider) decideRetry(attempt int, kind ports.CompletionErrorKind) (bool, time.Duration) {
	if kind == ports.CompletionConfig {
		return false, 0
	}
	if attempt >= p.maxRetries {
		return false, 0
	}
	delay := p.baseDelay << uint(attempt)
	if delay > p.maxDelay {
		delay = p.maxDelay
	}
	return true, delay
}

func classifyStatus(code int) ports.CompletionErrorKind {
	switch {
	case code == http.StatusTooManyRequests:
		return ports.CompletionRateLimited
	case code >= 500:
		return ports.CompletionTransient
	default:
		return ports.CompletionConfig
	}
}

// apiError extracts the API error message from an error response body,
// falling back to the raw status when the body is not the documented
// error envelope.
func apiError(code int, body []byte) error {
	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return fmt.Errorf("gemini api error (HTTP %d, %s): %s", code, parsed.Error.Status, parsed.Error.Message)
	}
	return fmt.Errorf("gemini api error (HTTP %d)", code)
}

// Ensure GeminiProvider implements the Provider interface.
var _ ports.Provider = (*GeminiProvider)(nil)
