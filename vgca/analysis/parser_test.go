package analysis

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullCompletion = `TITLE: レギュレーションG優勝構築

Pokémon 1: ガブリアス
- Ability: さめはだ
- Held Item: こだわりスカーフ
- Tera Type: はがね
- Moves: じしん / げきりん / アイアンヘッド / がんせきふうじ
- Nature: ようき
- EV Spread: 252 0 4 252 0 0
- EV Explanation: 最速。Aに全振りして上から殴る。

Pokémon 2: カイリュー
- Ability: マルチスケイル
- Held Item: いかさまダイス
- Tera Type: ノーマル
- Moves: しんそく / スケイルショット
- Nature: いじっぱり
- EV Spread: 4 252 0 0 0 252
- EV Explanation: 珠ダメージを考慮した配分。

Conclusion Summary: スカーフガブリアスを軸にした対面構築。
`

func TestResponseParser_FullCompletion(t *testing.T) {
	analysis := NewResponseParser().Parse(fullCompletion)

	assert.Equal(t, "レギュレーションG優勝構築", analysis.Title)
	assert.Equal(t, "スカーフガブリアスを軸にした対面構築。", analysis.Summary)
	assert.False(t, analysis.LowConfidence)
	assert.InDelta(t, 1.0, analysis.Confidence, 1e-9)
	require.Len(t, analysis.Members, 2)

	first := analysis.Members[0]
	assert.Equal(t, "ガブリアス", first.Name)
	assert.Equal(t, "さめはだ", first.Ability)
	assert.Equal(t, "こだわりスカーフ", first.HeldItem)
	assert.Equal(t, "はがね", first.TeraType)
	assert.Equal(t, []string{"じしん", "げきりん", "アイアンヘッド", "がんせきふうじ"}, first.Moves)
	assert.Equal(t, "Jolly", first.Nature)
	assert.Equal(t, "252/0/4/252/0/0", first.EVSpread)
	assert.Equal(t, []int{252, 0, 4, 252, 0, 0}, first.EVValues)
	assert.Equal(t, "最速。Aに全振りして上から殴る。", first.EVExplanation)

	second := analysis.Members[1]
	assert.Equal(t, "カイリュー", second.Name)
	assert.Equal(t, "Adamant", second.Nature)
	assert.Equal(t, []string{"しんそく", "スケイルショット"}, second.Moves)
	assert.Equal(t, []int{4, 252, 0, 0, 0, 252}, second.EVValues)
}

func TestResponseParser_TitlePreservedVerbatim(t *testing.T) {
	analysis := NewResponseParser().Parse("TITLE: テスト記事（Test Article）\n")
	assert.Equal(t, "テスト記事（Test Article）", analysis.Title)
}

func TestResponseParser_BoldTitle(t *testing.T) {
	analysis := NewResponseParser().Parse("**TITLE: 晴れパ構築記事**\n")
	assert.Equal(t, "晴れパ構築記事", analysis.Title)
}

func TestResponseParser_CapsMembersAtSix(t *testing.T) {
	var b strings.Builder
	b.WriteString("TITLE: 八匹の記事\n\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&b, "Pokémon %d: メンバー%d\n- Ability: 特性%d\n\n", i, i, i)
	}

	analysis := NewResponseParser().Parse(b.String())

	require.Len(t, analysis.Members, team.MaxMembers)
	for i, m := range analysis.Members {
		assert.Equal(t, fmt.Sprintf("メンバー%d", i+1), m.Name, "first six markers win")
	}
}

func TestResponseParser_MissingFieldsDegradeIndependently(t *testing.T) {
	analysis := NewResponseParser().Parse(`TITLE: 欠損テスト

Pokémon 1: ハバタクカミ
- Ability: こだいかっせい
`)

	require.Len(t, analysis.Members, 1)
	m := analysis.Members[0]
	assert.Equal(t, "ハバタクカミ", m.Name)
	assert.Equal(t, "こだいかっせい", m.Ability)
	assert.Equal(t, team.NotSpecified, m.HeldItem)
	assert.Equal(t, team.NotSpecified, m.TeraType)
	assert.Empty(t, m.Moves)
	assert.Equal(t, team.NotSpecified, m.Nature)
	assert.Equal(t, team.NotSpecified, m.EVSpread)
	assert.Equal(t, team.NotSpecified, m.EVExplanation)
}

func TestResponseParser_SentinelValuesNormalized(t *testing.T) {
	analysis := NewResponseParser().Parse(`TITLE: センチネル

Pokémon 1: テツノツツミ
- Ability: クォークチャージ
- Held Item: Not specified in the article
- Moves: Not specified in the article
- EV Spread: EVs not specified in the article.
`)

	require.Len(t, analysis.Members, 1)
	m := analysis.Members[0]
	assert.Equal(t, team.NotSpecified, m.HeldItem)
	assert.Empty(t, m.Moves)
	assert.Equal(t, team.NotSpecified, m.EVSpread)
	assert.Nil(t, m.EVValues)
}

func TestResponseParser_MovesCappedAtFour(t *testing.T) {
	analysis := NewResponseParser().Parse(`TITLE: 技過多

Pokémon 1: イエッサン
- Moves: ワイドフォース / トリックルーム / サイドチェンジ / このゆびとまれ / まもる
`)

	require.Len(t, analysis.Members, 1)
	assert.Equal(t,
		[]string{"ワイドフォース", "トリックルーム", "サイドチェンジ", "このゆびとまれ"},
		analysis.Members[0].Moves)
}

func TestResponseParser_FinalStatsSpreadRejected(t *testing.T) {
	analysis := NewResponseParser().Parse(`TITLE: 実数値記事

Pokémon 1: ランドロス
- EV Spread: 175 207 111 202 156 97
`)

	require.Len(t, analysis.Members, 1)
	m := analysis.Members[0]
	assert.Equal(t, team.NotSpecified+" ("+team.ReasonFinalStats+")", m.EVSpread)
	assert.Nil(t, m.EVValues)
}

func TestResponseParser_InvalidEVsRejected(t *testing.T) {
	analysis := NewResponseParser().Parse(`TITLE: 不正値記事

Pokémon 1: ランドロス
- EV Spread: 3 0 4 252 0 0
`)

	require.Len(t, analysis.Members, 1)
	m := analysis.Members[0]
	assert.Equal(t, team.NotSpecified+" ("+team.ReasonInvalidEVs+")", m.EVSpread)
	assert.Nil(t, m.EVValues)
}

func TestResponseParser_NonNumericSpreadKeptAsText(t *testing.T) {
	analysis := NewResponseParser().Parse(`TITLE: 部分配分

Pokémon 1: ウーラオス
- EV Spread: HPと攻撃にぶっぱ
`)

	require.Len(t, analysis.Members, 1)
	m := analysis.Members[0]
	assert.Equal(t, "HPと攻撃にぶっぱ", m.EVSpread, "fewer than six numbers keeps the raw text")
	assert.Nil(t, m.EVValues)
}

func TestResponseParser_JapaneseLabels(t *testing.T) {
	analysis := NewResponseParser().Parse(`TITLE: 日本語ラベル

Pokémon 1: コータス
- 特性: ひでり
- 持ち物: もくたん
- テラスタイプ: くさ
- 技構成: ふんか / ねっぷう / まもる
- 性格: れいせい
- 努力値: 252 0 0 252 4 0
`)

	require.Len(t, analysis.Members, 1)
	m := analysis.Members[0]
	assert.Equal(t, "ひでり", m.Ability)
	assert.Equal(t, "もくたん", m.HeldItem)
	assert.Equal(t, "くさ", m.TeraType)
	assert.Equal(t, []string{"ふんか", "ねっぷう", "まもる"}, m.Moves)
	assert.Equal(t, "Quiet", m.Nature)
	assert.Equal(t, []int{252, 0, 0, 252, 4, 0}, m.EVValues)
}

func TestResponseParser_MarkersAfterSummaryIgnored(t *testing.T) {
	analysis := NewResponseParser().Parse(`TITLE: 構成順

Pokémon 1: ミライドン
- Ability: ハドロンエンジン

Conclusion Summary: ミライドン軸。

Pokémon 2: コライドン
`)

	require.Len(t, analysis.Members, 1)
	assert.Equal(t, "ミライドン", analysis.Members[0].Name)
	assert.True(t, strings.HasPrefix(analysis.Summary, "ミライドン軸。"),
		"text after the summary label belongs to the summary, not to new members")
}

func TestResponseParser_NoTeamDataIsLowConfidence(t *testing.T) {
	analysis := NewResponseParser().Parse("この記事にはチーム情報が見つかりませんでした。")

	assert.True(t, analysis.LowConfidence)
	assert.Equal(t, team.NotSpecified, analysis.Title)
	assert.Empty(t, analysis.Members)
	assert.Equal(t, team.NotSpecified, analysis.Summary)
	assert.InDelta(t, 0.5, analysis.Confidence, 1e-9)
}

func TestResponseParser_ConfidenceGradations(t *testing.T) {
	titleOnly := NewResponseParser().Parse("TITLE: タイトルだけ\n")
	assert.InDelta(t, 0.7, titleOnly.Confidence, 1e-9)
	assert.False(t, titleOnly.LowConfidence, "a recognized title is not a low-confidence result")

	bareMember := NewResponseParser().Parse(`TITLE: 配分なし

Pokémon 1: ガオガエン
- Ability: いかく
`)
	assert.InDelta(t, 0.9, bareMember.Confidence, 1e-9)
}

func TestResponseParser_BracketedNameCleaned(t *testing.T) {
	analysis := NewResponseParser().Parse("TITLE: 括弧\n\nPokémon 1: [パオジアン]\n")

	require.Len(t, analysis.Members, 1)
	assert.Equal(t, "パオジアン", analysis.Members[0].Name)
}

func BenchmarkResponseParser_Parse(b *testing.B) {
	parser := NewResponseParser()

	for i := 0; i < b.N; i++ {
		parser.Parse(fullCompletion)
	}
}
