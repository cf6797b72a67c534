package analysis

import (
	"strings"
	"testing"

	ports "github.com/ZanzyTHEbar/vgc-analyzer/vgca/analysis/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptBuilder_SubstitutesPlaceholders(t *testing.T) {
	builder := NewPromptBuilder()
	require.NoError(t, builder.SetTemplate("restricted:\n{restrict_poke}\n\narticle:\n{text}"))
	builder.SetRestricted([]string{"コライドン (Koraidon)", "ミライドン (Miraidon)"})

	input := builder.Build("記事本文です。", nil, map[string]string{"source_url": "https://example.jp/a"})

	assert.Equal(t,
		"restricted:\nコライドン (Koraidon)\nミライドン (Miraidon)\n\narticle:\n記事本文です。",
		input.Prompt)
	assert.Equal(t, "https://example.jp/a", input.Meta["source_url"])
	assert.Empty(t, input.Images)
}

func TestPromptBuilder_DefaultTemplateCarriesInstructions(t *testing.T) {
	input := NewPromptBuilder().Build("本文", nil, nil)

	assert.Contains(t, input.Prompt, "本文")
	assert.Contains(t, input.Prompt, "TITLE:")
	assert.Contains(t, input.Prompt, "EV Spread:")
	assert.NotContains(t, input.Prompt, placeholderText, "placeholders must be substituted")
	assert.NotContains(t, input.Prompt, placeholderRestricted)
}

func TestPromptBuilder_RejectsTemplateWithoutTextPlaceholder(t *testing.T) {
	builder := NewPromptBuilder()
	before := builder.Build("本文", nil, nil).Prompt

	err := builder.SetTemplate("no placeholders at all")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "{text}")

	assert.Equal(t, before, builder.Build("本文", nil, nil).Prompt, "failed swap keeps the active template")
}

func TestPromptBuilder_NormalizesTextNewlines(t *testing.T) {
	builder := NewPromptBuilder()
	require.NoError(t, builder.SetTemplate("[{text}]"))

	input := builder.Build("  一行目\r\n二行目\r\n", nil, nil)
	assert.Equal(t, "[一行目\n二行目]", input.Prompt)
}

func TestPromptBuilder_EmptyRestrictedListRestoresDefault(t *testing.T) {
	builder := NewPromptBuilder()
	require.NoError(t, builder.SetTemplate("{restrict_poke}|{text}"))

	builder.SetRestricted([]string{"X"})
	assert.Equal(t, "X|t", builder.Build("t", nil, nil).Prompt)

	builder.SetRestricted(nil)
	prompt := builder.Build("t", nil, nil).Prompt
	assert.True(t, strings.Contains(prompt, "Koraidon"), "nil restores the built-in list")
}

func TestPromptBuilder_AttachesImagePayloads(t *testing.T) {
	images := []ports.ImagePayload{{MIMEType: "image/png", Data: []byte{1, 2, 3}}}
	input := NewPromptBuilder().Build("本文", images, nil)

	require.Len(t, input.Images, 1)
	assert.Equal(t, "image/png", input.Images[0].MIMEType)
}

func BenchmarkPromptBuilder_Build(b *testing.B) {
	builder := NewPromptBuilder()
	builder.SetRestricted([]string{"コライドン (Koraidon)", "ミライドン (Miraidon)"})

	for i := 0; i < b.N; i++ {
		builder.Build("努力値は252 0 4 252 0 0に調整しました。", nil, nil)
	}
}
