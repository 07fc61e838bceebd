package patterns

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/metrics"
	"github.com/kuesten-code/Werkbank-sub000/internal/normalize"
	"github.com/kuesten-code/Werkbank-sub000/internal/repository"
)

// Config bounds the matching work done for one document.
type Config struct {
	MatchTimeout time.Duration // per single regex evaluation, default 2s
	MaxTextRunes int           // longer text is cut before matching, default 200000
	ContextRunes int           // learner only: label context taken before a value, default 20
}

func (c Config) withDefaults() Config {
	if c.MatchTimeout <= 0 {
		c.MatchTimeout = 2 * time.Second
	}
	if c.MaxTextRunes <= 0 {
		c.MaxTextRunes = 200000
	}
	if c.ContextRunes <= 0 {
		c.ContextRunes = 20
	}
	return c
}

type Extractor struct {
	store   repository.PatternStore
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	match   matchFunc
}

func NewExtractor(store repository.PatternStore, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		store:   store,
		cfg:     cfg.withDefaults(),
		logger:  logger,
		metrics: m,
		match:   findSubmatch,
	}
}

// Extract returns the normalized field values found in rawText. With a
// supplier only that supplier's learned patterns are used; without one the
// generic rules are. The two are never combined. Failures of single fields
// are logged and leave the field out.
func (e *Extractor) Extract(ctx context.Context, supplierID *uuid.UUID, rawText string) map[constants.FieldName]string {
	text := e.prepare(ctx, rawText)
	if supplierID != nil {
		return e.extractLearned(ctx, *supplierID, text)
	}
	return e.extractGeneric(ctx, text)
}

func (e *Extractor) prepare(ctx context.Context, rawText string) string {
	text := normalize.Whitespace(rawText)
	text, cut := normalize.TruncateRunes(text, e.cfg.MaxTextRunes)
	if cut {
		e.logger.Warn("text truncated before matching", "file", common.FileNameFromContext(ctx), "max_runes", e.cfg.MaxTextRunes)
	}
	return text
}

func (e *Extractor) extractLearned(ctx context.Context, supplierID uuid.UUID, text string) map[constants.FieldName]string {
	out := make(map[constants.FieldName]string)

	learned, err := e.store.GetAll(ctx, supplierID)
	if err != nil {
		e.logger.Error("failed to load supplier patterns", "file", common.FileNameFromContext(ctx), "supplier_id", supplierID, "error", err)
		return out
	}

	for _, p := range learned {
		re, err := regexp.Compile(p.Pattern + valueCapture)
		if err != nil {
			e.logger.Warn("skipping invalid stored pattern", "file", common.FileNameFromContext(ctx), "supplier_id", supplierID, "field", p.FieldName, "error", err)
			continue
		}
		if v, ok := e.capture(ctx, p.FieldName, re, text); ok {
			out[p.FieldName] = v
		}
	}

	e.logger.Debug("supplier pattern extraction done", "supplier_id", supplierID, "patterns", len(learned), "fields", len(out))
	return out
}

func (e *Extractor) extractGeneric(ctx context.Context, text string) map[constants.FieldName]string {
	out := make(map[constants.FieldName]string)
	for _, rule := range genericRules {
		if v, ok := e.capture(ctx, rule.field, rule.re, text); ok {
			out[rule.field] = v
		}
	}
	e.logger.Debug("generic extraction done", "fields", len(out))
	return out
}

// capture runs re under the per-match deadline and normalizes group 1.
func (e *Extractor) capture(ctx context.Context, field constants.FieldName, re *regexp.Regexp, text string) (string, bool) {
	m, err := matchWithin(ctx, e.match, re, text, e.cfg.MatchTimeout)
	if err != nil {
		if errors.Is(err, ErrMatchTimeout) {
			e.metrics.MatchTimeout(field.String())
			e.logger.Warn("pattern match timed out, skipping field", "file", common.FileNameFromContext(ctx), "field", field, "timeout", e.cfg.MatchTimeout)
		} else {
			e.logger.Warn("pattern match aborted", "file", common.FileNameFromContext(ctx), "field", field, "error", err)
		}
		return "", false
	}
	if len(m) < 2 {
		return "", false
	}
	v := normalize.Field(field, m[1])
	if v == "" {
		return "", false
	}
	return v, true
}
