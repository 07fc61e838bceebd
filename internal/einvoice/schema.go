package einvoice

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

const canonicalInvoiceSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["format", "invoice_number", "invoice_date", "amount_gross"],
  "properties": {
    "format":         {"enum": ["CII", "UBL"]},
    "invoice_number": {"type": "string", "minLength": 1},
    "invoice_date":   {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
    "amount_net":     {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?$"},
    "amount_gross":   {"type": "string", "pattern": "^-?[0-9]+(\\.[0-9]+)?$"},
    "tax_rate":       {"type": "string", "pattern": "^[0-9]+(\\.[0-9]+)?$"},
    "currency":       {"type": "string", "pattern": "^[A-Z]{3}$"},
    "seller_iban":    {"type": "string", "pattern": "^[A-Z]{2}[0-9]{2}[A-Z0-9]{1,30}$"}
  }
}`

var invoiceSchema = jsonschema.MustCompileString("canonical-invoice.json", canonicalInvoiceSchema)

// Validate checks inv against the canonical invoice schema.
func Validate(inv *entity.CanonicalInvoice) error {
	b, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal invoice: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal invoice: %w", err)
	}
	if err := invoiceSchema.Validate(v); err != nil {
		return fmt.Errorf("invoice does not match schema: %w", err)
	}
	return nil
}
