package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/einvoice"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
	"github.com/kuesten-code/Werkbank-sub000/internal/metrics"
)

// TextProvider turns a scanned document into plain text.
type TextProvider interface {
	ExtractText(ctx context.Context, data []byte, fileName string) (string, error)
}

// SupplierResolver matches a document to a known supplier.
type SupplierResolver interface {
	ResolveStructured(ctx context.Context, inv *entity.CanonicalInvoice) (*entity.Supplier, error)
	ResolveText(ctx context.Context, text string) (*entity.Supplier, error)
}

// FieldExtractor pulls field values out of recognized text.
type FieldExtractor interface {
	Extract(ctx context.Context, supplierID *uuid.UUID, rawText string) map[constants.FieldName]string
}

// PatternLearner stores what a confirmed value teaches about a supplier's layout.
type PatternLearner interface {
	Learn(ctx context.Context, supplierID uuid.UUID, field constants.FieldName, rawText, confirmed string) (bool, error)
}

// Pipeline classifies each document exactly once, as structured e-invoice or
// as scan, and produces its extraction result.
type Pipeline struct {
	Parser    einvoice.Parser
	OCR       TextProvider
	Resolver  SupplierResolver
	Extractor FieldExtractor
	Learner   PatternLearner
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

func NewPipeline(
	parser einvoice.Parser,
	ocr TextProvider,
	resolver SupplierResolver,
	extractor FieldExtractor,
	learner PatternLearner,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Parser:    parser,
		OCR:       ocr,
		Resolver:  resolver,
		Extractor: extractor,
		Learner:   learner,
		Metrics:   m,
		Logger:    logger,
	}
}
