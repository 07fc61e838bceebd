package normalize

import (
	"strings"
	"time"
)

// CanonicalDateLayout is the yyyy-MM-dd form every extracted date is rendered in.
const CanonicalDateLayout = "2006-01-02"

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"02.01.2006", // dd.MM.yyyy
	"2.1.2006",   // d.M.yyyy
	"02.01.06",   // dd.MM.yy
	"2.1.06",     // d.M.yy
	"02/01/2006", // dd/MM/yyyy
	"2/1/2006",   // d/M/yyyy
	"02-01-2006", // dd-MM-yyyy
	"2-1-2006",   // d-M-yyyy
	CanonicalDateLayout,
}

// DateLayouts returns the accepted layouts in match order.
func DateLayouts() []string {
	out := make([]string, len(dateLayouts))
	copy(out, dateLayouts)
	return out
}

// Date parses raw against the accepted layouts and renders it as yyyy-MM-dd.
// Input matching no layout is returned unchanged.
func Date(raw string) string {
	t, ok := ParseDate(raw)
	if !ok {
		return raw
	}
	return t.Format(CanonicalDateLayout)
}

// ParseDate parses raw against the accepted layouts.
func ParseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateVariants renders a canonical date in every accepted layout, in layout
// order and without duplicates. It returns nil when canonical is not yyyy-MM-dd.
func DateVariants(canonical string) []string {
	t, err := time.Parse(CanonicalDateLayout, strings.TrimSpace(canonical))
	if err != nil {
		return nil
	}
	seen := make(map[string]struct{}, len(dateLayouts))
	out := make([]string, 0, len(dateLayouts))
	for _, layout := range dateLayouts {
		v := t.Format(layout)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
