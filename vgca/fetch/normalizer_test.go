package fetch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNormalize_InvisibleRunes replaces zero-width characters with spaces
// instead of silently gluing words together.
func TestNormalize_InvisibleRunes(t *testing.T) {
	assert.Equal(t, "ポケモン 徹底攻略", Normalize("ポケモン​徹底攻略"))
	assert.Equal(t, "a b", Normalize("a b"))
	assert.Equal(t, "left right", Normalize("left‎right"))
}

// TestNormalize_CollapsesWhitespace folds runs of any whitespace kind.
func TestNormalize_CollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "one two three", Normalize("one  two\t\n three"))
	assert.Equal(t, "全角 スペース", Normalize("全角　　スペース"))
}

// TestNormalize_DropsDisallowedRunes keeps letters, digits, CJK text and
// common punctuation while removing symbols that confuse the prompt.
func TestNormalize_DropsDisallowedRunes(t *testing.T) {
	assert.Equal(t, "価格は500円です。", Normalize("価格は500円です。©"))
	assert.Equal(t, "EV: 252/0/4/252/0/0", Normalize("EV: 252/0/4/252/0/0★"))
	assert.Equal(t, "「ガチグマ」と【パオジアン】", Normalize("「ガチグマ」と【パオジアン】"))
}

// TestNormalize_Trims strips leading and trailing whitespace last.
func TestNormalize_Trims(t *testing.T) {
	assert.Equal(t, "カイリュー", Normalize("  カイリュー \n"))
}

// TestNormalize_Total never fails, whatever the input.
func TestNormalize_Total(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("​‎‏"))
	assert.Equal(t, "", Normalize("   \t\n  "))
}

// TestNormalize_Idempotent applies cleanly to already-clean text.
func TestNormalize_Idempotent(t *testing.T) {
	clean := "ようきガブリアスはA252振りが基本。"
	assert.Equal(t, clean, Normalize(clean))
	assert.Equal(t, Normalize(clean), Normalize(Normalize(clean)))
}
