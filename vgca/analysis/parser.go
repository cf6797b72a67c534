package analysis

import (
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/vgc-analyzer/vgca/team"
)

// Markers the prompt template instructs the model to emit. Matching
// tolerates markdown bold, list bullets and full-width colons, since
// models are loose about all three.
var (
	titlePattern  = regexp.MustCompile(`(?m)^\s*\*{0,2}TITLE\*{0,2}\s*[:：]\s*(.+?)\s*$`)
	memberPattern = regexp.MustCompile(`(?m)^\s*\*{0,2}Pokémon\s+(\d+)\s*[:：]`)
	summaryLabel  = regexp.MustCompile(`(?mi)^\s*(?:\d+\.\s*)?(?:#+\s*)?\*{0,2}(?:Conclusion Summary|Summary|総評|まとめ)\*{0,2}\s*[:：]?\s*`)
	explanationAt = fieldPattern("EV Explanation")
)

// fieldRule binds one member field to the labels that introduce it. The
// first matching label wins; a field whose labels never match keeps the
// sentinel set by NewMember, without affecting any other field.
type fieldRule struct {
	field  string
	labels *regexp.Regexp
	assign func(m *team.Member, raw string)
}

var fieldRules = []fieldRule{
	{"ability", fieldPattern("Ability", "特性"),
		func(m *team.Member, raw string) { m.Ability = normalizeSentinel(raw) }},
	{"held item", fieldPattern("Held Item", "Item", "持ち物"),
		func(m *team.Member, raw string) { m.HeldItem = normalizeSentinel(raw) }},
	{"tera type", fieldPattern("Tera Type", "テラスタイプ", "テラス"),
		func(m *team.Member, raw string) { m.TeraType = normalizeSentinel(raw) }},
	{"moves", fieldPattern("Moves", "技構成"), assignMoves},
	{"ev spread", fieldPattern("EV Spread", "EVs", "努力値"), assignSpread},
	{"nature", fieldPattern("Nature", "性格"),
		func(m *team.Member, raw string) { m.Nature = team.NormalizeNature(normalizeSentinel(raw)) }},
}

// fieldPattern builds the line matcher for a labeled field: optional
// bullet, optional bold, one of the labels, a colon, then the value. The
// value may be empty; an empty capture degrades to the sentinel.
func fieldPattern(labels ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?mi)^\s*[-*•]*\s*\*{0,2}(?:` + strings.Join(labels, "|") + `)\*{0,2}\s*[:：]\s*(.*?)\s*$`)
}

// ResponseParser extracts a structured analysis from raw completion text.
// It never hard-fails: every missing piece degrades to the field sentinel
// and the worst case is an empty, low-confidence result.
type ResponseParser struct{}

func NewResponseParser() *ResponseParser { return &ResponseParser{} }

// Parse walks the completion text once: title line, up to six member
// segments split on the Pokémon markers, then the conclusion summary.
func (p *ResponseParser) Parse(text string) *team.Analysis {
	analysis := &team.Analysis{
		Title:   team.NotSpecified,
		Members: make([]team.Member, 0, team.MaxMembers),
	}

	if m := titlePattern.FindStringSubmatch(text); m != nil {
		if title := strings.TrimSpace(strings.TrimSuffix(m[1], "**")); title != "" {
			analysis.Title = normalizeSentinel(title)
		}
	}

	summaryStart, summaryEnd := len(text), len(text)
	if loc := summaryLabel.FindStringIndex(text); loc != nil {
		summaryStart, summaryEnd = loc[0], loc[1]
	}

	markers := memberPattern.FindAllStringSubmatchIndex(text, -1)
	for i, marker := range markers {
		if len(analysis.Members) == team.MaxMembers {
			break
		}
		if marker[0] >= summaryStart {
			break
		}
		segEnd := summaryStart
		if i+1 < len(markers) && markers[i+1][0] < summaryStart {
			segEnd = markers[i+1][0]
		}
		analysis.Members = append(analysis.Members, parseMember(text[marker[1]:segEnd]))
	}

	if summaryEnd < len(text) {
		if s := strings.TrimSpace(text[summaryEnd:]); s != "" {
			analysis.Summary = normalizeSentinel(s)
		}
	}
	if analysis.Summary == "" {
		analysis.Summary = team.NotSpecified
	}

	analysis.LowConfidence = analysis.Title == team.NotSpecified && len(analysis.Members) == 0
	analysis.Confidence = scoreConfidence(analysis)
	return analysis
}

// parseMember reads one segment: the name on the marker line, then the
// labeled fields in any order. Fields degrade independently.
func parseMember(segment string) team.Member {
	member := team.NewMember()

	name := segment
	if idx := strings.IndexByte(segment, '\n'); idx >= 0 {
		name = segment[:idx]
	}
	member.Name = cleanName(name)

	for _, rule := range fieldRules {
		if m := rule.labels.FindStringSubmatch(segment); m != nil {
			rule.assign(&member, strings.TrimSpace(m[1]))
		}
	}

	// The explanation is the only multi-line field; it runs from its
	// label to the end of the segment.
	if m := explanationAt.FindStringSubmatchIndex(segment); m != nil {
		if expl := strings.TrimSpace(segment[m[2]:]); expl != "" {
			member.EVExplanation = normalizeSentinel(expl)
		}
	}

	return member
}

func cleanName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.TrimSuffix(name, "**")
	name = strings.TrimPrefix(name, "[")
	name = strings.TrimSuffix(name, "]")
	name = strings.TrimSpace(name)
	if name == "" {
		return team.NotSpecified
	}
	return normalizeSentinel(name)
}

func assignMoves(m *team.Member, raw string) {
	if isSentinel(raw) {
		return
	}
	moves := make([]string, 0, team.MaxMoves)
	for _, part := range strings.Split(raw, "/") {
		move := strings.TrimSpace(part)
		if move == "" || isSentinel(move) {
			continue
		}
		if len(moves) == team.MaxMoves {
			break
		}
		moves = append(moves, move)
	}
	if len(moves) > 0 {
		m.Moves = moves
	}
}

func assignSpread(m *team.Member, raw string) {
	if isSentinel(raw) {
		return
	}
	result, ok := team.CheckSpreadText(raw)
	if !ok {
		// Not six numbers; keep the model's text rather than guess.
		m.EVSpread = raw
		return
	}
	m.EVSpread = result.Display()
	if result.Valid {
		m.EVValues = result.Values
	}
}

// isSentinel reports whether the model marked a value as absent. The
// template's phrasing varies by field ("Not specified in the article",
// "EVs not specified in the article"), so this matches the shared core
// and bounds the length to keep real sentences out.
func isSentinel(raw string) bool {
	s := strings.ToLower(strings.TrimRight(strings.TrimSpace(raw), ".。"))
	if s == "" {
		return true
	}
	if !strings.Contains(s, "not specified") {
		return false
	}
	return len([]rune(s)) <= 48
}

func normalizeSentinel(raw string) string {
	if isSentinel(raw) {
		return team.NotSpecified
	}
	return raw
}

// scoreConfidence grades how much structure the parse recovered.
func scoreConfidence(a *team.Analysis) float64 {
	score := 0.5
	if a.Title != team.NotSpecified {
		score += 0.2
	}
	if len(a.Members) > 0 {
		score += 0.2
	}
	var hasMoves, hasSpread bool
	for _, m := range a.Members {
		if len(m.Moves) > 0 {
			hasMoves = true
		}
		if len(m.EVValues) == 6 {
			hasSpread = true
		}
	}
	if hasMoves {
		score += 0.1
	}
	if hasSpread {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}
