package fetch

import (
	"strings"
	"unicode"
)

// invisibleRunes are zero-width and directional marks that Japanese blog
// editors leave behind. They become plain spaces before collapsing so
// they never glue two words together.
var invisibleRunes = map[rune]bool{
	'​': true, // zero width space
	' ': true, // no-break space
	'‎': true, // left-to-right mark
	'‏': true, // right-to-left mark
}

// allowedPunct is the punctuation kept by normalization, covering both
// ASCII and the Japanese forms articles actually use.
const allowedPunct = "。、！？!?．，,.-~〜・:：;；()（）「」『』[]【】/%&+='\""

// Normalize prepares raw article text for prompt embedding. Rules apply
// in order: invisible runes become spaces, whitespace runs collapse to a
// single space, runes outside the allowed set are dropped, and the result
// is trimmed. The function is total; any input yields a valid string.
func Normalize(text string) string {
	var visible strings.Builder
	visible.Grow(len(text))
	for _, r := range text {
		if invisibleRunes[r] {
			visible.WriteRune(' ')
		} else {
			visible.WriteRune(r)
		}
	}

	collapsed := collapseWhitespace(visible.String())

	stripped := strings.Map(func(r rune) rune {
		if allowedRune(r) {
			return r
		}
		return -1
	}, collapsed)

	return strings.TrimSpace(stripped)
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inRun = true
			continue
		}
		if inRun && b.Len() > 0 {
			b.WriteRune(' ')
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

func allowedRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '_' {
		return true
	}
	if r >= 0x3000 && r <= 0x303f { // CJK symbols and punctuation
		return true
	}
	if r >= 0xff00 && r <= 0xffef { // fullwidth and halfwidth forms
		return true
	}
	return strings.ContainsRune(allowedPunct, r)
}
