package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/team"
	"github.com/xeipuuv/gojsonschema"
)

// Input validation errors. They abort an analysis before any network
// call is made.
var (
	ErrNoSource      = errors.New("no source: provide an article url or pasted text")
	ErrTwoSources    = errors.New("ambiguous source: provide either a url or pasted text, not both")
	ErrInvalidURL    = errors.New("source url must be http or https")
	ErrEmptyInput    = errors.New("input text is empty after normalization")
	ErrInputTooShort = errors.New("pasted text is too short to describe a team")
	ErrInputTooLong  = errors.New("pasted text exceeds the input limit")
)

// Default pasted-text limits. A team report is rarely under a sentence,
// and anything past a few hundred KB is a dump, not an article.
const (
	defaultMinInputRunes = 40
	defaultMaxInputRunes = 200_000
)

// Guardrails validates pipeline input before any work is spent on it.
type Guardrails struct {
	minInputRunes int
	maxInputRunes int
}

// NewGuardrails creates guardrails with the default input limits.
func NewGuardrails() *Guardrails {
	return &Guardrails{
		minInputRunes: defaultMinInputRunes,
		maxInputRunes: defaultMaxInputRunes,
	}
}

// SetTextLimits overrides the pasted-text rune bounds. Non-positive
// values keep the current bound.
func (g *Guardrails) SetTextLimits(minRunes, maxRunes int) {
	if minRunes > 0 {
		g.minInputRunes = minRunes
	}
	if maxRunes > 0 {
		g.maxInputRunes = maxRunes
	}
}

// CheckSource verifies that exactly one source is set and that it is
// usable: a well-formed http(s) URL, or pasted text within the limits.
func (g *Guardrails) CheckSource(src Source) error {
	rawURL := strings.TrimSpace(src.URL)
	text := strings.TrimSpace(src.Text)

	switch {
	case rawURL == "" && text == "":
		return ErrNoSource
	case rawURL != "" && text != "":
		return ErrTwoSources
	case rawURL != "":
		return g.checkURL(rawURL)
	default:
		return g.CheckText(text)
	}
}

func (g *Guardrails) checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return nil
}

// CheckText enforces the pasted-text length bounds.
func (g *Guardrails) CheckText(text string) error {
	runes := utf8.RuneCountInString(strings.TrimSpace(text))
	if runes < g.minInputRunes {
		return fmt.Errorf("%w (%d runes, minimum %d)", ErrInputTooShort, runes, g.minInputRunes)
	}
	if runes > g.maxInputRunes {
		return fmt.Errorf("%w (%d runes, maximum %d)", ErrInputTooLong, runes, g.maxInputRunes)
	}
	return nil
}

// analysisSchema is the export contract for persisted and emitted
// results. Fields that carry the sentinel must never be empty strings,
// EV value tuples are exactly six EV-ranged integers, and a team never
// exceeds six members.
const analysisSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["id", "title", "members", "summary", "produced_at", "confidence", "low_confidence"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"title": {"type": "string", "minLength": 1},
		"members": {
			"type": "array",
			"maxItems": 6,
			"items": {
				"type": "object",
				"required": ["name", "ability", "held_item", "tera_type", "nature", "ev_spread", "ev_explanation"],
				"properties": {
					"name": {"type": "string", "minLength": 1},
					"ability": {"type": "string", "minLength": 1},
					"held_item": {"type": "string", "minLength": 1},
					"tera_type": {"type": "string", "minLength": 1},
					"moves": {
						"type": "array",
						"maxItems": 4,
						"items": {"type": "string", "minLength": 1}
					},
					"nature": {"type": "string", "minLength": 1},
					"ev_spread": {"type": "string", "minLength": 1},
					"ev_values": {
						"type": "array",
						"minItems": 6,
						"maxItems": 6,
						"items": {"type": "integer", "minimum": 0, "maximum": 252}
					},
					"ev_explanation": {"type": "string", "minLength": 1}
				}
			}
		},
		"summary": {"type": "string", "minLength": 1},
		"source_url": {"type": "string"},
		"produced_at": {"type": "string"},
		"confidence": {"type": "number", "minimum": 0, "maximum": 1},
		"low_confidence": {"type": "boolean"}
	}
}`

// ExportValidator renders analyses as JSON and checks them against the
// export schema before they leave the process or reach storage.
type ExportValidator struct {
	schema gojsonschema.JSONLoader
}

// NewExportValidator creates a validator on the built-in schema.
func NewExportValidator() *ExportValidator {
	return &ExportValidator{schema: gojsonschema.NewStringLoader(analysisSchema)}
}

// Marshal renders the analysis as indented JSON and, when validate is
// set, checks it against the export schema.
func (v *ExportValidator) Marshal(analysis *team.Analysis, validate bool) ([]byte, error) {
	data, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal analysis: %w", err)
	}
	if validate {
		if err := v.Validate(data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Validate checks one JSON document against the export schema.
func (v *ExportValidator) Validate(data []byte) error {
	result, err := gojsonschema.Validate(v.schema, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("export schema violations: %s", strings.Join(msgs, "; "))
	}
	return nil
}
