package constants

import (
	"strings"
)

// FieldName is one of the extractable accounting fields.
type FieldName string

const (
	InvoiceNumber FieldName = "InvoiceNumber"
	InvoiceDate   FieldName = "InvoiceDate"
	AmountNet     FieldName = "AmountNet"
	AmountGross   FieldName = "AmountGross"
	TaxRate       FieldName = "TaxRate"
	Iban          FieldName = "Iban"
)

var allFields = []FieldName{
	InvoiceNumber,
	InvoiceDate,
	AmountNet,
	AmountGross,
	TaxRate,
	Iban,
}

// AllFields returns the fields in their canonical order.
func AllFields() []FieldName {
	out := make([]FieldName, len(allFields))
	copy(out, allFields)
	return out
}

// IsAmountField reports whether values of f are decimal amounts.
// The tax rate is normalized like an amount.
func (f FieldName) IsAmountField() bool {
	return f == AmountNet || f == AmountGross || f == TaxRate
}

// Valid reports whether f is a member of the closed field set.
func (f FieldName) Valid() bool {
	for _, known := range allFields {
		if f == known {
			return true
		}
	}
	return false
}

func (f FieldName) String() string { return string(f) }

// ParseFieldName maps user input (case-insensitive, a few aliases) onto a FieldName.
func ParseFieldName(input string) (FieldName, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]FieldName{
		"invoice_number":  InvoiceNumber,
		"rechnungsnummer": InvoiceNumber,
		"invoice_date":    InvoiceDate,
		"rechnungsdatum":  InvoiceDate,
		"amount_net":      AmountNet,
		"netto":           AmountNet,
		"amount_gross":    AmountGross,
		"brutto":          AmountGross,
		"tax_rate":        TaxRate,
		"ust":             TaxRate,
		"iban":            Iban,
	}
	if f, ok := synonyms[normalized]; ok {
		return f, true
	}

	for _, f := range allFields {
		if normalized == strings.ToLower(string(f)) {
			return f, true
		}
	}
	return "", false
}
