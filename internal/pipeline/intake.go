package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/common"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
	"github.com/kuesten-code/Werkbank-sub000/internal/metrics"
	"github.com/kuesten-code/Werkbank-sub000/internal/ocr"
)

// Intake reads one document and extracts its fields. Only a failure to read
// r is returned as an error; parser, tool, lookup and match failures end up
// in the result's warnings.
func (p *Pipeline) Intake(ctx context.Context, r io.Reader, fileName string) (*entity.ExtractionResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		p.Logger.Error("failed to read document", "file", fileName, "error", err)
		return nil, fmt.Errorf("read document: %w", err)
	}

	ctx = common.WithFileName(ctx, fileName)
	start := time.Now()
	res := &entity.ExtractionResult{
		FileName: fileName,
		State:    constants.StateUnclassified,
		Fields:   make(map[constants.FieldName]string),
	}

	if inv, ok := p.tryStructured(data, fileName); ok {
		p.intakeStructured(ctx, res, inv)
	} else {
		p.intakeScan(ctx, res, data, fileName)
	}

	res.State = constants.StateResolved
	p.Metrics.Document(string(res.Source))
	p.Logger.Info("intake complete",
		"file", fileName,
		"source", res.Source,
		"fields", len(res.Fields),
		"supplier", supplierName(res.Supplier),
		"warnings", len(res.Warnings),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func (p *Pipeline) tryStructured(data []byte, fileName string) (*entity.CanonicalInvoice, bool) {
	if p.Parser == nil || !p.Parser.CanParse(data, fileName) {
		return nil, false
	}
	inv, err := p.Parser.Parse(data, fileName)
	if err != nil {
		p.Logger.Debug("structured parse declined, treating as scan", "file", fileName, "error", err)
		return nil, false
	}
	return inv, true
}

func (p *Pipeline) intakeStructured(ctx context.Context, res *entity.ExtractionResult, inv *entity.CanonicalInvoice) {
	res.State = constants.StateStructuredDetected
	res.Source = constants.SourceStructured
	res.Fields = fieldsFromInvoice(inv)

	if p.Resolver == nil {
		return
	}
	s, err := p.Resolver.ResolveStructured(ctx, inv)
	if err != nil {
		res.Warnings = append(res.Warnings, "supplier lookup failed: "+err.Error())
	}
	res.Supplier = s.Suggestion()
}

func (p *Pipeline) intakeScan(ctx context.Context, res *entity.ExtractionResult, data []byte, fileName string) {
	res.State = constants.StateScanDetected
	res.Source = constants.SourceScan

	text, err := p.OCR.ExtractText(ctx, data, fileName)
	if err != nil {
		p.recordToolFailure(err)
		res.Warnings = append(res.Warnings, "text recognition failed: "+err.Error())
		text = ""
	}
	res.RawText = text
	if text == "" {
		p.Logger.Info("no text recognized", "file", fileName)
		return
	}

	var supplierID *uuid.UUID
	if p.Resolver != nil {
		s, err := p.Resolver.ResolveText(ctx, text)
		if err != nil {
			res.Warnings = append(res.Warnings, "supplier lookup failed: "+err.Error())
		}
		if s != nil {
			id := s.ID
			supplierID = &id
			res.Supplier = s.Suggestion()
		}
	}

	res.Fields = p.Extractor.Extract(ctx, supplierID, text)
}

func (p *Pipeline) recordToolFailure(err error) {
	var timeout *ocr.TimeoutError
	var tool *ocr.ToolError
	switch {
	case errors.As(err, &timeout):
		p.Metrics.ToolFailure(timeout.Tool, metrics.KindTimeout)
	case errors.As(err, &tool):
		p.Metrics.ToolFailure(tool.Tool, metrics.KindExit)
	}
	p.Logger.Warn("text recognition failed, continuing without text", "error", err)
}

func fieldsFromInvoice(inv *entity.CanonicalInvoice) map[constants.FieldName]string {
	out := make(map[constants.FieldName]string)
	set := func(f constants.FieldName, v string) {
		if v != "" {
			out[f] = v
		}
	}
	set(constants.InvoiceNumber, inv.InvoiceNumber)
	set(constants.InvoiceDate, inv.InvoiceDate)
	set(constants.AmountNet, inv.AmountNet)
	set(constants.AmountGross, inv.AmountGross)
	set(constants.TaxRate, inv.TaxRate)
	set(constants.Iban, inv.SellerIban)
	return out
}

func supplierName(s *entity.SupplierSuggestion) string {
	if s == nil {
		return ""
	}
	return s.Name
}
