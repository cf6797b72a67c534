package analysis

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestContentPacker_UnderBudgetKeepsDocumentOrder(t *testing.T) {
	packer := NewContentPacker(Budget{MaxRunes: 1000})
	blocks := []string{"見出し", "本文の段落です。", "まとめの段落です。"}

	got := packer.Pack(blocks, nil)
	assert.Equal(t, "見出し\n\n本文の段落です。\n\nまとめの段落です。", got)
}

func TestContentPacker_OverBudgetKeepsKeywordBlocks(t *testing.T) {
	packer := NewContentPacker(Budget{MaxRunes: 70, MaxBlocks: 16})

	item := "持ち物はこだわりメガネを採用。"
	filler := strings.Repeat("あ", 200)
	spread := "努力値は 252 0 4 252 0 0 に調整しました。"

	got := packer.Pack([]string{item, filler, spread}, nil)

	assert.Equal(t, item+"\n\n"+spread, got,
		"keyword blocks win over filler and keep document order")
}

func TestContentPacker_TruncatesAtSentenceBoundary(t *testing.T) {
	packer := NewContentPacker(Budget{MaxRunes: 100})
	article := strings.Repeat("これはとても長い文章です。", 30)

	got := packer.Pack([]string{article}, nil)

	assert.True(t, strings.HasSuffix(got, "。"), "cut should land on a sentence boundary")
	assert.Equal(t, 91, utf8.RuneCountInString(got))
}

func TestContentPacker_HardCutWithoutBoundary(t *testing.T) {
	got := truncateAtSentence(strings.Repeat("あ", 100), 50)
	assert.Equal(t, 50, utf8.RuneCountInString(got))
}

func TestContentPacker_MaxBlocksBound(t *testing.T) {
	packer := NewContentPacker(Budget{MaxRunes: 10000, MaxBlocks: 2})
	blocks := []string{"一つ目の段落。", "二つ目の段落。", "三つ目の段落。", "四つ目の段落。"}

	got := packer.Pack(blocks, nil)
	assert.Equal(t, "一つ目の段落。\n\n二つ目の段落。", got)
}

func TestContentPacker_EmptyInput(t *testing.T) {
	packer := NewContentPacker(Budget{})

	assert.Empty(t, packer.Pack(nil, nil))
	assert.Empty(t, packer.Pack([]string{"", "   ", "\n"}, nil))
}

func TestContentPacker_BudgetOverride(t *testing.T) {
	packer := NewContentPacker(Budget{MaxRunes: 10})
	article := "一文目はここまで。二文目はもっと長く続きます。"

	cut := packer.Pack([]string{article}, nil)
	assert.NotEqual(t, article, cut, "default budget should truncate")

	whole := packer.Pack([]string{article}, &Budget{MaxRunes: 1000, MaxBlocks: 10})
	assert.Equal(t, article, whole)
}

func TestScoreBlock(t *testing.T) {
	spread := "努力値は 252 0 4 252 0 0 に調整しました。"
	filler := "昨日は天気がよかったので散歩に出かけました。"

	assert.Greater(t, scoreBlock(spread), scoreBlock(filler))
	assert.Zero(t, scoreBlock(filler))
}

func BenchmarkContentPacker_Pack(b *testing.B) {
	packer := NewContentPacker(Budget{MaxRunes: 1000})

	blocks := make([]string, 100)
	for i := range blocks {
		blocks[i] = "努力値は 252 0 4 252 0 0 に調整した個体です。"
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		packer.Pack(blocks, nil)
	}
}
