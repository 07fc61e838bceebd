package patterns

import (
	"regexp"

	"github.com/kuesten-code/Werkbank-sub000/constants"
)

type genericRule struct {
	field constants.FieldName
	re    *regexp.Regexp
}

// genericRules apply when the supplier is unknown. Order matters only for
// logging; each field has exactly one rule.
var genericRules = []genericRule{
	{constants.AmountGross, regexp.MustCompile(`(?i)\b(?:Gesamtbetrag|Rechnungsbetrag|Bruttobetrag|Endbetrag|Gesamtsumme|Summe brutto|Brutto|Total)\s*:?\s*(?:EUR|€)?\s*(\d[\d.,]*)`)},
	{constants.AmountNet, regexp.MustCompile(`(?i)\b(?:Nettobetrag|Summe netto|Zwischensumme|Netto)\s*:?\s*(?:EUR|€)?\s*(\d[\d.,]*)`)},
	{constants.TaxRate, regexp.MustCompile(`\b(19|7)(?:[.,]0{1,2})?\s*%`)},
	{constants.InvoiceNumber, regexp.MustCompile(`(?i)\b(?:Rechnungsnummer|Rechnungs-Nr\.?|Rechnungsnr\.?|Rechnung Nr\.?|Re\.-Nr\.?|Belegnummer|Invoice (?:No\.?|Number))\s*:?\s*([A-Za-z0-9][A-Za-z0-9.\-/]*)`)},
	{constants.InvoiceDate, regexp.MustCompile(`(?i)\b(?:Rechnungsdatum|Belegdatum|Datum)\s*:?\s*(\d{1,2}[./-]\d{1,2}[./-]\d{2,4})`)},
	{constants.Iban, regexp.MustCompile(`\b(DE\d{2}(?: ?\d{4}){4} ?\d{2})\b`)},
}
