// Package einvoice reads structured German e-invoices: UN/CEFACT CII
// (ZUGFeRD, Factur-X, XRechnung CII) and OASIS UBL (XRechnung UBL), either as
// plain XML or embedded in a hybrid PDF.
package einvoice

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

// ErrNotStructured means the document carries no readable e-invoice.
var ErrNotStructured = errors.New("not a structured e-invoice")

const (
	FormatCII = "CII"
	FormatUBL = "UBL"
)

type Parser interface {
	CanParse(data []byte, fileName string) bool
	Parse(data []byte, fileName string) (*entity.CanonicalInvoice, error)
}

type InvoiceParser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *InvoiceParser {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceParser{logger: logger}
}

// CanParse is a cheap pre-check. For PDFs it only confirms the header; the
// embedded invoice is looked for by Parse.
func (p *InvoiceParser) CanParse(data []byte, fileName string) bool {
	switch constants.MapExtToFormat(filepath.Ext(fileName)) {
	case constants.XML:
		_, ok := rootElement(data)
		return ok
	case constants.PDF:
		return bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-"))
	default:
		return false
	}
}

// Parse returns the canonical fields of the e-invoice in data. Every failure
// wraps ErrNotStructured so callers can fall through to text recognition.
func (p *InvoiceParser) Parse(data []byte, fileName string) (*entity.CanonicalInvoice, error) {
	xmlData := data
	if constants.MapExtToFormat(filepath.Ext(fileName)) == constants.PDF {
		embedded, name, err := embeddedInvoiceXML(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotStructured, err)
		}
		p.logger.Debug("found embedded e-invoice", "file", fileName, "attachment", name)
		xmlData = embedded
	}

	inv, err := parseXML(xmlData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotStructured, err)
	}
	if err := Validate(inv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotStructured, err)
	}
	p.logger.Info("parsed e-invoice", "file", fileName, "format", inv.Format, "invoice_number", inv.InvoiceNumber)
	return inv, nil
}

func parseXML(data []byte) (*entity.CanonicalInvoice, error) {
	root, ok := rootElement(data)
	if !ok {
		return nil, errors.New("no recognised invoice root element")
	}
	switch root {
	case "CrossIndustryInvoice":
		return parseCII(data)
	default:
		return parseUBL(data)
	}
}

// rootElement returns the local name of the document element when it is one
// of the supported invoice roots.
func rootElement(data []byte) (string, bool) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", false
		}
		if se, ok := tok.(xml.StartElement); ok {
			switch se.Name.Local {
			case "CrossIndustryInvoice", "Invoice", "CreditNote":
				return se.Name.Local, true
			}
			return "", false
		}
	}
}
