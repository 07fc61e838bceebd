package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var reInvariantDecimal = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)$`)

// Amount converts a raw amount into its invariant form ("1234.56").
//
// A comma marks German presentation: dots are thousands separators and the
// comma is the decimal mark. Without a comma the input is taken as invariant
// already. The parsed scale is kept, so Amount(Amount(x)) == Amount(x).
// Input that does not parse as a number is returned unchanged.
func Amount(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	if !reInvariantDecimal.MatchString(s) {
		return raw
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return raw
	}
	return invariant(d)
}

// Rate renders a percentage without trailing zeros: "19,00" -> "19",
// "5.50" -> "5.5". Non-numeric input is returned unchanged.
func Rate(raw string) string {
	d, ok := ParseAmount(raw)
	if !ok {
		return raw
	}
	return d.String()
}

// ParseAmount parses an invariant or German amount into a decimal.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := Amount(raw)
	if !reInvariantDecimal.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ToGermanAmount renders a canonical amount with thousands grouping and two
// decimals: "1234.56" -> "1.234,56". Unparsable input is returned unchanged.
func ToGermanAmount(canonical string) string {
	d, ok := parseCanonical(canonical)
	if !ok {
		return canonical
	}
	intPart, frac, neg := splitFixed2(d)

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(frac)
	return b.String()
}

// ToSimpleGermanAmount renders a canonical amount with a decimal comma and no
// grouping: "1234.56" -> "1234,56".
func ToSimpleGermanAmount(canonical string) string {
	d, ok := parseCanonical(canonical)
	if !ok {
		return canonical
	}
	intPart, frac, neg := splitFixed2(d)
	if neg {
		return "-" + intPart + "," + frac
	}
	return intPart + "," + frac
}

func parseCanonical(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !reInvariantDecimal.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func splitFixed2(d decimal.Decimal) (intPart, frac string, neg bool) {
	neg = d.IsNegative()
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ = strings.Cut(fixed, ".")
	return intPart, frac, neg
}

func invariant(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
