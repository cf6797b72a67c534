package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeLogLines parses one JSON object per buffered log line.
func decodeLogLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var line map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &line), "log line %q", raw)
		lines = append(lines, line)
	}
	return lines
}

func TestZerologTracer_SpanLifecycle(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf))

	_, finish := tracer.StartSpan(context.Background(), "analyze", map[string]any{"source_url": "https://example.jp/a"})
	finish(nil)

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 2)

	assert.Equal(t, "span_start", lines[0]["event"])
	assert.Equal(t, "analyze", lines[0]["span"])
	assert.Equal(t, "https://example.jp/a", lines[0]["source_url"])

	assert.Equal(t, "span_end", lines[1]["event"])
	assert.Equal(t, "info", lines[1]["level"])
	assert.Contains(t, lines[1], "duration")
}

func TestZerologTracer_SpanEndCarriesError(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf))

	_, finish := tracer.StartSpan(context.Background(), "provider_call", nil)
	finish(errors.New("upstream unavailable"))

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "error", lines[1]["level"])
	assert.Equal(t, "upstream unavailable", lines[1]["error"])
}

func TestZerologTracer_EventInheritsSpanContext(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf))

	ctx, finish := tracer.StartSpan(context.Background(), "analyze", nil)
	tracer.Event(ctx, "cache_hit", map[string]any{"key": "article:0000abcd"})
	finish(nil)

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 3)
	assert.Equal(t, "cache_hit", lines[1]["event"])
	assert.Equal(t, "analyze", lines[1]["span"], "events inside a span carry its name")
	assert.Equal(t, "article:0000abcd", lines[1]["key"])
}

func TestZerologTracer_EventWithoutSpanFallsBack(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewZerologTracer(zerolog.New(&buf))

	tracer.Event(context.Background(), "parsed", map[string]any{"members": 6})

	lines := decodeLogLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "parsed", lines[0]["event"])
	assert.NotContains(t, lines[0], "span")
	assert.InDelta(t, 6, lines[0]["members"], 0.01)
}
