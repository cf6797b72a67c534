package team

import "strings"

// natureNames maps Japanese nature names to the English names used in
// output. Articles quote natures in either language; the parser stores
// the English form so downstream display is uniform.
var natureNames = map[string]string{
	"がんばりや": "Hardy",
	"さみしがり": "Lonely",
	"ゆうかん":  "Brave",
	"いじっぱり": "Adamant",
	"やんちゃ":  "Naughty",
	"ずぶとい":  "Bold",
	"すなお":   "Docile",
	"のんき":   "Relaxed",
	"わんぱく":  "Impish",
	"のうてんき": "Lax",
	"おくびょう": "Timid",
	"せっかち":  "Hasty",
	"まじめ":   "Serious",
	"ようき":   "Jolly",
	"むじゃき":  "Naive",
	"ひかえめ":  "Modest",
	"おっとり":  "Mild",
	"れいせい":  "Quiet",
	"てれや":   "Bashful",
	"うっかりや": "Rash",
	"おだやか":  "Calm",
	"おとなしい": "Gentle",
	"しんちょう": "Careful",
	"きまぐれ":  "Quirky",
	"なまいき":  "Sassy",
}

// NormalizeNature maps a raw nature token to its English name. Unknown
// values pass through unchanged so partially translated output survives.
func NormalizeNature(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return NotSpecified
	}
	if english, ok := natureNames[trimmed]; ok {
		return english
	}
	return trimmed
}
