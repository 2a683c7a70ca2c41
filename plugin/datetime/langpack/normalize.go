package langpack

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// Normalize folds case and collapses whitespace so map lookups are insensitive
// to how the span was typed.
func Normalize(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

// HolidayKey reduces a holiday name to its folded letters and digits, so
// "New Year's Day" and "new years day" share a key.
func HolidayKey(s string) string {
	folded := cases.Fold().String(s)
	var b strings.Builder
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
