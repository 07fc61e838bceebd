package entity

// CanonicalInvoice holds the fields a structured e-invoice yields.
// Amounts are invariant decimal strings, dates are yyyy-MM-dd.
type CanonicalInvoice struct {
	Format        string `json:"format"` // "CII" | "UBL"
	InvoiceNumber string `json:"invoice_number"`
	InvoiceDate   string `json:"invoice_date"`
	AmountNet     string `json:"amount_net,omitempty"`
	AmountGross   string `json:"amount_gross,omitempty"`
	TaxRate       string `json:"tax_rate,omitempty"`
	Currency      string `json:"currency,omitempty"`
	SellerName    string `json:"seller_name,omitempty"`
	SellerTaxID   string `json:"seller_tax_id,omitempty"`
	SellerIban    string `json:"seller_iban,omitempty"`
}
