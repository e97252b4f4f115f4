package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameSeparators are folded into spaces before whitespace is collapsed.
var nameSeparators = strings.NewReplacer("-", " ", "'", " ", "’", " ")

// NormalizeName canonicalizes a free-text municipality name into a comparable
// key: diacritics stripped, uppercased, hyphens and apostrophes turned into
// spaces, whitespace runs collapsed, trimmed.
//
//	"Saint-Émilion" -> "SAINT EMILION"
//	"L'Isle-Saint-Georges" -> "L ISLE SAINT GEORGES"
func NormalizeName(raw string) string {
	if raw == "" {
		return ""
	}
	// The chain carries state, so it is built per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, raw)
	if err != nil {
		stripped = raw
	}
	stripped = strings.ToUpper(stripped)
	stripped = nameSeparators.Replace(stripped)
	return strings.Join(strings.Fields(stripped), " ")
}

// NormalizeCode canonicalizes an administrative code (INSEE code or
// department number) read from a loosely typed source.
//
//	" 33063 " -> "33063"
//	"33063.0" -> "33063"
//	"1053"    -> "01053"
//	"33"      -> "33"
func NormalizeCode(raw string) string {
	code := strings.TrimSpace(raw)
	if code == "" || strings.EqualFold(code, "undefined") || strings.EqualFold(code, "null") {
		return ""
	}
	code = strings.TrimSuffix(code, ".0")
	if len(code) == 4 && isDigits(code) {
		code = "0" + code
	}
	return strings.ToUpper(code)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
