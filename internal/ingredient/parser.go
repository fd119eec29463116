// Package ingredient implements the ingredient-line parser, the portion
// scaler, and the shopping-list aggregator. Everything in this package is a
// pure function over its inputs: no database access, no shared state, safe
// for concurrent callers.
package ingredient

import (
	"regexp"
	"strconv"
	"strings"
)

// Ingredient is one parsed ingredient line. Amount is nil when the line
// carried no leading quantity; Unit is empty whenever Amount is nil and may
// also be empty for quantity-only lines such as "2 Eier".
type Ingredient struct {
	Name    string   `json:"name"`
	Amount  *float64 `json:"amount,omitempty"`
	Unit    string   `json:"unit,omitempty"`
	Recipes []string `json:"recipes"`
}

// Measurement units recognized by the strict matcher. Longer tokens come
// first so "Prisen" is not cut short at "Prise". Matching is case-insensitive.
const unitVocabulary = `Esslöffel|Teelöffel|Prisen|Prise|Tassen|Tasse|Becher|Liter|Stück|Stk|EL|TL|kg|ml|cl|dl|g`

var (
	knownUnitPattern = regexp.MustCompile(`(?i)^(\d+(?:[.,]\d+)?)\s*(` + unitVocabulary + `)\s+(.+)$`)
	freeUnitPattern  = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*([a-zA-ZäöüßÄÖÜ]*)\s+(.+)$`)
)

type parsedLine struct {
	amount    float64
	hasAmount bool
	unit      string
	name      string
}

// A lineMatcher inspects a trimmed, non-empty line and reports whether it
// recognized its shape. Matchers are tried in order and the first hit wins;
// no attempt is made to find a globally best interpretation.
type lineMatcher func(line string) (parsedLine, bool)

var lineMatchers = []lineMatcher{
	matchKnownUnit,
	matchFreeUnit,
	matchBareName,
}

// matchKnownUnit handles "500g Mehl" / "1 Prise Salz": a leading decimal
// followed by a token from the unit vocabulary and the ingredient name.
func matchKnownUnit(line string) (parsedLine, bool) {
	m := knownUnitPattern.FindStringSubmatch(line)
	if m == nil {
		return parsedLine{}, false
	}
	amount, err := parseDecimal(m[1])
	if err != nil {
		return parsedLine{}, false
	}
	return parsedLine{
		amount:    amount,
		hasAmount: true,
		unit:      strings.TrimSpace(m[2]),
		name:      strings.TrimSpace(m[3]),
	}, true
}

// matchFreeUnit is the permissive variant: any alphabetic token after the
// number is taken as the unit. This catches unlisted units and typos at the
// cost of occasionally promoting an adjective ("2 grosse Eier" parses with
// unit "grosse"). The token may be empty, so "2 Eier" yields amount 2 and no
// unit.
func matchFreeUnit(line string) (parsedLine, bool) {
	m := freeUnitPattern.FindStringSubmatch(line)
	if m == nil {
		return parsedLine{}, false
	}
	amount, err := parseDecimal(m[1])
	if err != nil {
		return parsedLine{}, false
	}
	return parsedLine{
		amount:    amount,
		hasAmount: true,
		unit:      strings.TrimSpace(m[2]),
		name:      strings.TrimSpace(m[3]),
	}, true
}

// matchBareName always succeeds: the whole line becomes the name. Lines like
// "Salz nach Geschmack" end up here, as does any text the other matchers
// could not make sense of.
func matchBareName(line string) (parsedLine, bool) {
	return parsedLine{name: line}, true
}

// Parse converts one free-text ingredient line into an Ingredient attributed
// to sourceTitle. A matched quantity is multiplied by scaleFactor. Returns
// nil for blank lines; never fails on malformed input, the worst case is a
// name-only result.
func Parse(line, sourceTitle string, scaleFactor float64) *Ingredient {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	for _, match := range lineMatchers {
		parsed, ok := match(line)
		if !ok {
			continue
		}
		ing := &Ingredient{
			Name:    parsed.name,
			Unit:    parsed.unit,
			Recipes: []string{sourceTitle},
		}
		if parsed.hasAmount {
			amount := parsed.amount * scaleFactor
			ing.Amount = &amount
		}
		return ing
	}

	// Unreachable: matchBareName accepts everything.
	return &Ingredient{Name: line, Recipes: []string{sourceTitle}}
}

// parseDecimal reads a number that may use the German comma as its decimal
// separator.
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
