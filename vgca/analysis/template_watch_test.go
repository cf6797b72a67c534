package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newWatchedBuilder(t *testing.T, initial string) (*PromptBuilder, *TemplateWatcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompt.txt")
	writeTemplate(t, path, initial)

	builder := NewPromptBuilder()
	watcher, err := NewTemplateWatcher(path, builder, zerolog.New(zerolog.Nop()))
	require.NoError(t, err)
	return builder, watcher, path
}

func TestTemplateWatcher_LoadsTemplateOnStart(t *testing.T) {
	builder, watcher, _ := newWatchedBuilder(t, "VERSION ONE\n{text}")

	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	prompt := builder.Build("記事本文", nil, nil).Prompt
	assert.Contains(t, prompt, "VERSION ONE")
	assert.Contains(t, prompt, "記事本文")

	// A second Start on a running watcher is a no-op.
	require.NoError(t, watcher.Start(context.Background()))
}

func TestTemplateWatcher_ReloadsOnFileChange(t *testing.T) {
	builder, watcher, path := newWatchedBuilder(t, "VERSION ONE\n{text}")

	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	writeTemplate(t, path, "VERSION TWO\n{text}")

	assert.Eventually(t, func() bool {
		return strings.Contains(builder.Build("x", nil, nil).Prompt, "VERSION TWO")
	}, 10*time.Second, 25*time.Millisecond, "rewritten template should load after the debounce window")
}

func TestTemplateWatcher_BadRewriteKeepsPreviousTemplate(t *testing.T) {
	builder, watcher, path := newWatchedBuilder(t, "VERSION ONE\n{text}")

	require.NoError(t, watcher.Start(context.Background()))
	defer watcher.Stop()

	// Without the text placeholder the reload is rejected.
	writeTemplate(t, path, "BROKEN TEMPLATE")

	assert.Never(t, func() bool {
		return strings.Contains(builder.Build("x", nil, nil).Prompt, "BROKEN")
	}, 2*time.Second, 100*time.Millisecond)
	assert.Contains(t, builder.Build("x", nil, nil).Prompt, "VERSION ONE")
}

func TestTemplateWatcher_StartFailsOnMissingFile(t *testing.T) {
	builder := NewPromptBuilder()
	watcher, err := NewTemplateWatcher(filepath.Join(t.TempDir(), "absent.txt"), builder, zerolog.New(zerolog.Nop()))
	require.NoError(t, err)

	err = watcher.Start(context.Background())
	assert.ErrorContains(t, err, "read template")
}

func TestTemplateWatcher_StopIsIdempotent(t *testing.T) {
	_, watcher, _ := newWatchedBuilder(t, "{text}")

	require.NoError(t, watcher.Start(context.Background()))
	watcher.Stop()
	watcher.Stop()
}
