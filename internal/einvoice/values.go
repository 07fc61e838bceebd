package einvoice

import (
	"strings"

	"github.com/kuesten-code/Werkbank-sub000/internal/normalize"
)

func first(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func firstOf(vals []string) string { return first(vals...) }

func amount(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return ""
	}
	return normalize.Amount(v)
}

func rate(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return ""
	}
	return normalize.Rate(v)
}

func date(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return ""
	}
	return normalize.Date(v)
}

func identifier(v string) string { return normalize.Identifier(v) }
