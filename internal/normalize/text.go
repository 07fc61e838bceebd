// Package normalize holds the locale rules shared by pattern learning and
// extraction: whitespace shape, German/invariant amounts and dates.
package normalize

import (
	"regexp"
	"strings"

	"github.com/kuesten-code/Werkbank-sub000/constants"
)

var reWhitespace = regexp.MustCompile(`[\s\p{Z}]+`)

// Whitespace collapses every whitespace run (including line breaks and
// non-breaking spaces) into a single space. Learned patterns and the text
// they are matched against always pass through this first.
func Whitespace(text string) string {
	if text == "" {
		return text
	}
	return reWhitespace.ReplaceAllString(text, " ")
}

// TruncateRunes caps s at max runes. It reports whether s was cut.
func TruncateRunes(s string, max int) (string, bool) {
	if max <= 0 || len(s) <= max {
		return s, false
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// Field applies the normalization rule of field to a captured raw value.
// Amounts go through Amount and the tax rate through Rate, both after
// trailing sentence punctuation is dropped. The date goes through Date, the
// IBAN loses its grouping spaces; everything else is only trimmed.
func Field(name constants.FieldName, raw string) string {
	v := strings.TrimSpace(raw)
	switch {
	case name == constants.TaxRate:
		return Rate(strings.TrimRight(v, ".,"))
	case name.IsAmountField():
		return Amount(strings.TrimRight(v, ".,"))
	case name == constants.InvoiceDate:
		return Date(strings.TrimRight(v, ".,"))
	case name == constants.Iban:
		return Identifier(v)
	default:
		return v
	}
}

// Identifier upper-cases an IBAN or tax id and drops its grouping spaces.
func Identifier(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
