package team

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Rejection reasons appended to the sentinel when a spread is unusable.
const (
	ReasonFinalStats = "final stat values detected"
	ReasonInvalidEVs = "invalid EV values detected"
)

// MaxEV is the largest legal investment in a single stat.
const MaxEV = 252

// MaxEVTotal is the legal six-stat budget. Exceeding it is reported, not
// rejected, because articles sometimes quote pre-nerf or rounded spreads.
const MaxEVTotal = 508

// SpreadResult reports the outcome of validating one candidate EV spread.
type SpreadResult struct {
	Valid  bool
	Values []int
	Total  int
	Reason string // empty when Valid
}

// Display renders the spread for output: a slash-joined tuple when valid,
// the sentinel with the rejection reason otherwise.
func (r SpreadResult) Display() string {
	if !r.Valid {
		return fmt.Sprintf("%s (%s)", NotSpecified, r.Reason)
	}
	parts := make([]string, len(r.Values))
	for i, v := range r.Values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "/")
}

var spreadNumbers = regexp.MustCompile(`\d+`)

// ParseSpreadValues extracts the numeric values from a raw EV field. It
// tolerates the spellings seen in articles and model output: whitespace
// separated ("252 0 4 252 0 0"), slash separated ("252/0/4/252/0/0") and
// stat-letter prefixed ("H252 A0 B4 C252 D0 S0"). ok reports whether
// exactly six values were found.
func ParseSpreadValues(raw string) ([]int, bool) {
	matches := spreadNumbers.FindAllString(raw, -1)
	if len(matches) != 6 {
		return nil, false
	}
	values := make([]int, 6)
	for i, m := range matches {
		n, err := strconv.Atoi(m)
		if err != nil {
			return nil, false
		}
		values[i] = n
	}
	return values, true
}

// ValidateSpread applies the EV domain rules to six candidate values, in
// this order, first failing rule wins:
//
//  1. Any value that sits in the 100–399 band of typical final stats
//     without being a well-formed EV quantum (≤252 and divisible by 4)
//     marks the whole spread as calculated stats, not investment.
//  2. Any value outside [0,252] or not divisible by 4 marks the spread
//     as invalid EVs.
//  3. Otherwise all six values are accepted; the total is informational.
//
// The first rule is a heuristic: model output sometimes reports a
// Pokémon's computed stat line under the EV label, and a 175 or 207 can
// only be a final stat, while a 252 or 104 is indistinguishable from a
// legal investment and is taken at face value.
func ValidateSpread(values []int) SpreadResult {
	res := SpreadResult{Values: values}
	for _, v := range values {
		if v >= 100 && v <= 399 && (v > MaxEV || v%4 != 0) {
			res.Reason = ReasonFinalStats
			return res
		}
	}
	for _, v := range values {
		if v < 0 || v > MaxEV || v%4 != 0 {
			res.Reason = ReasonInvalidEVs
			return res
		}
	}
	res.Valid = true
	for _, v := range values {
		res.Total += v
	}
	return res
}

// CheckSpreadText parses and validates a raw EV field. ok reports whether
// six numeric values were present; when it is false the caller should keep
// the raw text rather than substitute a rejection sentinel.
func CheckSpreadText(raw string) (SpreadResult, bool) {
	values, ok := ParseSpreadValues(raw)
	if !ok {
		return SpreadResult{}, false
	}
	return ValidateSpread(values), true
}
