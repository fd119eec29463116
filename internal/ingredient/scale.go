package ingredient

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	leadingNumberPattern = regexp.MustCompile(`^(\d+(?:[.,]\d+)?)\s*`)
	digitRunPattern      = regexp.MustCompile(`\d+`)
)

// PortionCount extracts the original portion count from a recipe's free-text
// portions field ("4 Portionen", "für 2 Personen"). The first run of digits
// wins; if the text contains none the count defaults to 1.
func PortionCount(portionsText string) int {
	match := digitRunPattern.FindString(strings.ToLower(portionsText))
	if match == "" {
		return 1
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 1
	}
	return n
}

// ScaleFactor computes target/original as a float. An original count of zero
// or less yields 1.0 so a nonsense portions field never causes a division
// fault.
func ScaleFactor(targetPortions, originalPortions int) float64 {
	if originalPortions > 0 {
		return float64(targetPortions) / float64(originalPortions)
	}
	return 1.0
}

// ScaleText rewrites the leading quantity of every line in an ingredient
// block by the ratio of targetPortions to the count found in portionsText,
// and returns the rewritten block together with the factor used.
//
// This is a line-local rewrite, not a re-parse: only the leading numeral is
// touched, units and names stay as written. Lines without a leading number
// pass through trimmed, and blank lines keep their position.
func ScaleText(ingredientsText, portionsText string, targetPortions int) (string, float64) {
	factor := ScaleFactor(targetPortions, PortionCount(portionsText))

	if ingredientsText == "" {
		return "", factor
	}

	lines := strings.Split(ingredientsText, "\n")
	scaled := make([]string, len(lines))
	for i, line := range lines {
		scaled[i] = scaleLine(line, factor)
	}
	return strings.Join(scaled, "\n"), factor
}

func scaleLine(line string, factor float64) string {
	line = strings.TrimSpace(line)
	m := leadingNumberPattern.FindStringSubmatch(line)
	if m == nil {
		return line
	}
	amount, err := parseDecimal(m[1])
	if err != nil {
		return line
	}
	return leadingNumberPattern.ReplaceAllString(line, FormatAmount(amount*factor)+" ")
}

// FormatAmount renders a scaled quantity the way it appears in German recipe
// text: whole numbers without a decimal part, everything else with one
// decimal place and a comma separator.
func FormatAmount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.Itoa(int(v))
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', 1, 64), ".", ",", 1)
}
