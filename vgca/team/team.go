// Package team holds the structured VGC team model produced by an analysis
// and the domain rules for validating EV spreads.
package team

import "time"

// NotSpecified is the sentinel rendered for any field the article did not
// state. It is a fixed legible placeholder, never an empty string.
const NotSpecified = "Not specified in the article"

// MaxMembers is the number of team slots a VGC team can hold.
const MaxMembers = 6

// MaxMoves is the number of move slots per team member.
const MaxMoves = 4

// Member is one parsed team slot. Every field defaults to NotSpecified
// independently; a missing field never invalidates its siblings.
type Member struct {
	Name          string   `json:"name"`
	Ability       string   `json:"ability"`
	HeldItem      string   `json:"held_item"`
	TeraType      string   `json:"tera_type"`
	Moves         []string `json:"moves,omitempty"`
	Nature        string   `json:"nature"`
	EVSpread      string   `json:"ev_spread"`
	EVValues      []int    `json:"ev_values,omitempty"`
	EVExplanation string   `json:"ev_explanation"`
}

// NewMember returns a Member with every field set to its sentinel.
func NewMember() Member {
	return Member{
		Name:          NotSpecified,
		Ability:       NotSpecified,
		HeldItem:      NotSpecified,
		TeraType:      NotSpecified,
		Nature:        NotSpecified,
		EVSpread:      NotSpecified,
		EVExplanation: NotSpecified,
	}
}

// Analysis is one article's extracted team. It is the unit of caching and
// of history persistence.
type Analysis struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Members       []Member  `json:"members"`
	Summary       string    `json:"summary"`
	SourceURL     string    `json:"source_url,omitempty"`
	ProducedAt    time.Time `json:"produced_at"`
	Confidence    float64   `json:"confidence"`
	LowConfidence bool      `json:"low_confidence"`
}
