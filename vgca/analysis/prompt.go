package analysis

import (
	"fmt"
	"strings"
	"sync"

	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
)

// Placeholders the prompt template must carry.
const (
	placeholderRestricted = "{restrict_poke}"
	placeholderText       = "{text}"
)

// PromptBuilder assembles model-ready inputs from the packed article text
// and the active template. The template is swappable at runtime, so the
// builder is safe for concurrent use.
type PromptBuilder struct {
	mu         sync.RWMutex
	template   string
	restricted string
}

// NewPromptBuilder creates a builder on the built-in template and
// restricted Pokémon list.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		template:   defaultPromptTemplate,
		restricted: defaultRestrictedPokemon,
	}
}

// SetTemplate replaces the active template. Templates without the {text}
// placeholder are rejected; {restrict_poke} is optional.
func (b *PromptBuilder) SetTemplate(tpl string) error {
	if !strings.Contains(tpl, placeholderText) {
		return fmt.Errorf("prompt template is missing the %s placeholder", placeholderText)
	}
	b.mu.Lock()
	b.template = tpl
	b.mu.Unlock()
	return nil
}

// SetRestricted replaces the restricted Pokémon reference list. An empty
// list restores the built-in one.
func (b *PromptBuilder) SetRestricted(entries []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(entries) == 0 {
		b.restricted = defaultRestrictedPokemon
		return
	}
	b.restricted = strings.Join(entries, "\n")
}

// Build substitutes the placeholders and attaches image payloads.
func (b *PromptBuilder) Build(text string, images []ports.ImagePayload, meta map[string]string) ports.PromptInput {
	b.mu.RLock()
	tpl, restricted := b.template, b.restricted
	b.mu.RUnlock()

	// Normalize newlines and trim whitespace to reduce prompt diffs for caching
	norm := func(s string) string { return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n")) }

	prompt := strings.ReplaceAll(tpl, placeholderRestricted, norm(restricted))
	prompt = strings.ReplaceAll(prompt, placeholderText, norm(text))

	return ports.PromptInput{
		Prompt: prompt,
		Images: images,
		Meta:   meta,
	}
}
