package einvoice

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

type ciiID struct {
	Value    string `xml:",chardata"`
	SchemeID string `xml:"schemeID,attr"`
}

type ciiInvoice struct {
	XMLName   xml.Name `xml:"CrossIndustryInvoice"`
	ID        string   `xml:"ExchangedDocument>ID"`
	IssueDate struct {
		Value  string `xml:",chardata"`
		Format string `xml:"format,attr"`
	} `xml:"ExchangedDocument>IssueDateTime>DateTimeString"`
	Seller struct {
		Name     string  `xml:"Name"`
		TaxRegs  []ciiID `xml:"SpecifiedTaxRegistration>ID"`
		LegalOrg string  `xml:"SpecifiedLegalOrganization>TradingBusinessName"`
	} `xml:"SupplyChainTradeTransaction>ApplicableHeaderTradeAgreement>SellerTradeParty"`
	Settlement struct {
		Currency   string   `xml:"InvoiceCurrencyCode"`
		IBANs      []string `xml:"SpecifiedTradeSettlementPaymentMeans>PayeePartyCreditorFinancialAccount>IBANID"`
		Rates      []string `xml:"ApplicableTradeTax>RateApplicablePercent"`
		TaxBasis   string   `xml:"SpecifiedTradeSettlementHeaderMonetarySummation>TaxBasisTotalAmount"`
		GrandTotal string   `xml:"SpecifiedTradeSettlementHeaderMonetarySummation>GrandTotalAmount"`
		LineTotal  string   `xml:"SpecifiedTradeSettlementHeaderMonetarySummation>LineTotalAmount"`
		DuePayable string   `xml:"SpecifiedTradeSettlementHeaderMonetarySummation>DuePayableAmount"`
	} `xml:"SupplyChainTradeTransaction>ApplicableHeaderTradeSettlement"`
}

func parseCII(data []byte) (*entity.CanonicalInvoice, error) {
	var doc ciiInvoice
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cii: %w", err)
	}

	s := doc.Settlement
	inv := &entity.CanonicalInvoice{
		Format:        FormatCII,
		InvoiceNumber: strings.TrimSpace(doc.ID),
		InvoiceDate:   ciiDate(doc.IssueDate.Value, doc.IssueDate.Format),
		AmountNet:     amount(first(s.TaxBasis, s.LineTotal)),
		AmountGross:   amount(first(s.GrandTotal, s.DuePayable)),
		TaxRate:       rate(firstOf(s.Rates)),
		Currency:      strings.ToUpper(strings.TrimSpace(s.Currency)),
		SellerName:    strings.TrimSpace(first(doc.Seller.Name, doc.Seller.LegalOrg)),
		SellerTaxID:   ciiTaxID(doc.Seller.TaxRegs),
		SellerIban:    identifier(firstOf(s.IBANs)),
	}
	return inv, nil
}

// ciiTaxID prefers the VAT id (scheme VA) over the national tax number (FC).
func ciiTaxID(ids []ciiID) string {
	var fallback string
	for _, id := range ids {
		v := strings.TrimSpace(id.Value)
		if v == "" {
			continue
		}
		if strings.EqualFold(id.SchemeID, "VA") {
			return identifier(v)
		}
		if fallback == "" {
			fallback = v
		}
	}
	return identifier(fallback)
}

// ciiDate converts format 102 (yyyyMMdd) dates; other formats pass through normalization.
func ciiDate(v, format string) string {
	v = strings.TrimSpace(v)
	if (format == "" || format == "102") && len(v) == 8 {
		return v[0:4] + "-" + v[4:6] + "-" + v[6:8]
	}
	return date(v)
}
