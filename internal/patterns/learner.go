package patterns

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/metrics"
	"github.com/kuesten-code/Werkbank-sub000/internal/normalize"
	"github.com/kuesten-code/Werkbank-sub000/internal/repository"
)

var reEscapedSpaces = regexp.MustCompile(` +`)

type Learner struct {
	store   repository.PatternStore
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewLearner(store repository.PatternStore, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Learner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Learner{store: store, cfg: cfg.withDefaults(), logger: logger, metrics: m}
}

// Learn derives a pattern from the text right before confirmed inside rawText
// and stores it for (supplierID, field), replacing any earlier one. It
// reports false without error when there is nothing to learn from.
func (l *Learner) Learn(ctx context.Context, supplierID uuid.UUID, field constants.FieldName, rawText, confirmed string) (bool, error) {
	if !field.Valid() {
		return false, common.NewAppError("INVALID_FIELD", fmt.Sprintf("unknown field %q", field), common.ErrInvalidInput)
	}
	if strings.TrimSpace(rawText) == "" || strings.TrimSpace(confirmed) == "" {
		return false, nil
	}

	text := normalize.Whitespace(rawText)
	text, _ = normalize.TruncateRunes(text, l.cfg.MaxTextRunes)

	start, found := locate(text, field, strings.TrimSpace(confirmed))
	if !found {
		l.metrics.Learned(field.String(), metrics.OutcomeNotFound)
		l.logger.Info("confirmed value not found in text, nothing learned", "supplier_id", supplierID, "field", field)
		return false, nil
	}

	pattern := BuildPattern(contextBefore(text, start, l.cfg.ContextRunes))
	if pattern == "" {
		l.metrics.Learned(field.String(), metrics.OutcomeNotFound)
		l.logger.Info("no label text before confirmed value, nothing learned", "supplier_id", supplierID, "field", field)
		return false, nil
	}

	if err := l.store.Upsert(ctx, supplierID, field, pattern); err != nil {
		l.metrics.Learned(field.String(), metrics.OutcomeFailed)
		l.logger.Error("failed to store learned pattern", "supplier_id", supplierID, "field", field, "error", err)
		return false, fmt.Errorf("store pattern: %w", err)
	}

	l.metrics.Learned(field.String(), metrics.OutcomeLearned)
	l.logger.Info("pattern learned", "supplier_id", supplierID, "field", field, "pattern", pattern)
	return true, nil
}

// candidates lists the renderings of confirmed to search for, in order.
func candidates(field constants.FieldName, confirmed string) []string {
	out := []string{confirmed}
	switch {
	case field.IsAmountField():
		canonical := normalize.Amount(confirmed)
		out = append(out, normalize.ToGermanAmount(canonical), normalize.ToSimpleGermanAmount(canonical))
	case field == constants.InvoiceDate:
		out = append(out, normalize.DateVariants(normalize.Date(confirmed))...)
	}
	return out
}

// locate returns the byte offset of the first candidate rendering found in
// text, matching case-insensitively.
func locate(text string, field constants.FieldName, confirmed string) (int, bool) {
	seen := make(map[string]struct{})
	for _, c := range candidates(field, confirmed) {
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(c))
		if err != nil {
			continue
		}
		if loc := re.FindStringIndex(text); loc != nil {
			return loc[0], true
		}
	}
	return 0, false
}

// contextBefore returns up to n runes ending at byte offset end, left-trimmed.
func contextBefore(text string, end, n int) string {
	start := end
	for i := 0; i < n && start > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:start])
		start -= size
	}
	return strings.TrimLeft(text[start:end], " ")
}

// BuildPattern turns label context into a learned pattern: metacharacters are
// escaped, space runs become \s* and a trailing \s* is appended.
func BuildPattern(label string) string {
	label = strings.TrimRight(label, " ")
	if label == "" {
		return ""
	}
	escaped := regexp.QuoteMeta(label)
	return reEscapedSpaces.ReplaceAllString(escaped, `\s*`) + `\s*`
}
