// Package reading extracts a numeric weight value and unit token from
// recognized display text.
package reading

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

// maxDigits caps how many digits of the numeric run are kept. Seven-segment
// scales show at most four digits; anything longer is OCR noise.
const maxDigits = 4

// readingPattern matches the first digit run, with at most one decimal
// point, immediately followed by an optional one or two letter unit token.
var readingPattern = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)([A-Za-z]{1,2})?`)

// unitAliases folds unit tokens, including common OCR letter confusions,
// onto the canonical units lb, kg, oz, jin and g.
var unitAliases = map[string]string{
	"lb": "lb",
	"ib": "lb",
	"l":  "lb",
	"b":  "lb",
	"kg": "kg",
	"k":  "kg",
	"kq": "kg",
	"ka": "kg",
	"oz": "oz",
	"o":  "oz",
	"z":  "oz",
	"j":  "jin",
	"jn": "jin",
	"g":  "g",
	"q":  "g",
	"gr": "g",
	"gm": "g",
}

// Reading is a parsed weight: a numeric value string and a normalized unit.
// Unit is empty when the display showed a bare number.
type Reading struct {
	Value string
	Unit  string
}

// Parse extracts the first numeric run and its trailing unit from text.
// Full-width characters are folded to their narrow forms first, since
// recognition dictionaries may emit either. Returns ok=false when the text
// contains no digits.
func Parse(text string) (Reading, bool) {
	folded := width.Fold.String(text)
	m := readingPattern.FindStringSubmatch(folded)
	if m == nil {
		return Reading{}, false
	}
	return Reading{
		Value: clipValue(m[1]),
		Unit:  normalizeUnit(m[2]),
	}, true
}

// clipValue keeps at most maxDigits digits, re-inserting the decimal point
// at its original position when it falls inside the kept digits.
func clipValue(value string) string {
	intPart, fracPart, hasPoint := strings.Cut(value, ".")
	if len(intPart)+len(fracPart) <= maxDigits {
		return value
	}
	digits := (intPart + fracPart)[:maxDigits]
	if hasPoint && len(intPart) < maxDigits {
		return digits[:len(intPart)] + "." + digits[len(intPart):]
	}
	return digits
}

// normalizeUnit folds aliases case-insensitively; tokens not matching any
// alias pass through unchanged.
func normalizeUnit(token string) string {
	if token == "" {
		return ""
	}
	if canonical, ok := unitAliases[strings.ToLower(token)]; ok {
		return canonical
	}
	return token
}
