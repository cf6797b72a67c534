package analysis

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Budget specifies how much article text is packed into one prompt.
type Budget struct {
	MaxRunes  int // hard cap on packed text length
	MaxBlocks int // safety bound on number of blocks
}

// minTailRunes is the smallest truncated fragment worth appending when
// filling the budget's tail.
const minTailRunes = 40

// keywordWeights biases packing toward the lines a team report carries
// its substance in: spreads, items, abilities, tera types and move sets.
var keywordWeights = map[string]float32{
	"努力値":  3,
	"実数値":  3,
	"調整":   3,
	"持ち物":  2,
	"特性":   2,
	"性格":   2,
	"テラス":  2,
	"技構成":  2,
	"選出":   2,
	"構築":   2,
	"ダメージ": 1,
	"ポケモン": 1,
}

var evDigitRuns = regexp.MustCompile(`\d+`)

// ContentPacker selects and packs article blocks within a rune budget.
type ContentPacker struct {
	defaultBudget Budget
}

func NewContentPacker(b Budget) *ContentPacker {
	if b.MaxRunes <= 0 {
		b.MaxRunes = 8000
	}
	if b.MaxBlocks <= 0 {
		b.MaxBlocks = 256
	}
	return &ContentPacker{defaultBudget: b}
}

type packCandidate struct {
	index int
	text  string
	runes int
	score float32
}

// Pack joins blocks with blank lines when everything fits the budget.
// When the text overflows, blocks are ranked by VGC keyword weight, the
// winners are emitted in document order, and the remaining tail of the
// budget is filled with the best skipped block cut at a sentence boundary.
func (p *ContentPacker) Pack(blocks []string, b *Budget) string {
	if b == nil {
		b = &p.defaultBudget
	}
	if len(blocks) == 0 || b.MaxRunes <= 0 || b.MaxBlocks <= 0 {
		return ""
	}

	norm := func(s string) string { return strings.TrimSpace(strings.ReplaceAll(s, "\r\n", "\n")) }

	candidates := make([]packCandidate, 0, len(blocks))
	total := 0
	for i, block := range blocks {
		text := norm(block)
		if text == "" {
			continue
		}
		n := utf8.RuneCountInString(text)
		candidates = append(candidates, packCandidate{index: i, text: text, runes: n, score: scoreBlock(text)})
		total += n
	}
	if len(candidates) == 0 {
		return ""
	}
	total += 2 * (len(candidates) - 1)

	if total <= b.MaxRunes && len(candidates) <= b.MaxBlocks {
		return joinCandidates(candidates)
	}

	// Rank by score desc; stable sort keeps earlier blocks first on ties.
	ranked := make([]packCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	remaining := b.MaxRunes
	taken := make([]packCandidate, 0, len(ranked))
	for _, c := range ranked {
		if len(taken) >= b.MaxBlocks || remaining <= 0 {
			break
		}
		cost := c.runes
		if len(taken) > 0 {
			cost += 2
		}
		if cost > remaining {
			continue
		}
		taken = append(taken, c)
		remaining -= cost
	}

	if remaining >= minTailRunes && len(taken) < b.MaxBlocks {
		for _, c := range ranked {
			if takenIndex(taken, c.index) {
				continue
			}
			allow := remaining
			if len(taken) > 0 {
				allow -= 2
			}
			cut := truncateAtSentence(c.text, allow)
			if utf8.RuneCountInString(cut) >= minTailRunes {
				taken = append(taken, packCandidate{index: c.index, text: cut})
			}
			break
		}
	}

	sort.Slice(taken, func(i, j int) bool { return taken[i].index < taken[j].index })
	return joinCandidates(taken)
}

func joinCandidates(candidates []packCandidate) string {
	parts := make([]string, len(candidates))
	for i, c := range candidates {
		parts[i] = c.text
	}
	return strings.Join(parts, "\n\n")
}

func takenIndex(taken []packCandidate, index int) bool {
	for _, c := range taken {
		if c.index == index {
			return true
		}
	}
	return false
}

// scoreBlock weights a block by the VGC vocabulary it carries. Six digit
// runs in one block get a bonus: that shape is how spreads appear.
func scoreBlock(text string) float32 {
	var score float32
	for kw, w := range keywordWeights {
		if n := strings.Count(text, kw); n > 0 {
			score += w * float32(n)
		}
	}
	if len(evDigitRuns.FindAllString(text, 7)) >= 6 {
		score += 3
	}
	return score
}

// truncateAtSentence cuts s to at most maxRunes, preferring the last
// sentence boundary (。 or newline) inside the window.
func truncateAtSentence(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	if maxRunes <= 0 {
		return ""
	}
	window := runes[:maxRunes]
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '。' || window[i] == '\n' {
			return strings.TrimSpace(string(window[:i+1]))
		}
	}
	return strings.TrimSpace(string(window))
}
