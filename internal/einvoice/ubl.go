package einvoice

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

type ublTaxScheme struct {
	CompanyID string `xml:"CompanyID"`
	Scheme    string `xml:"TaxScheme>ID"`
}

type ublInvoice struct {
	XMLName   xml.Name
	ID        string `xml:"ID"`
	IssueDate string `xml:"IssueDate"`
	Currency  string `xml:"DocumentCurrencyCode"`
	Seller    struct {
		Names        []string       `xml:"PartyName>Name"`
		TaxSchemes   []ublTaxScheme `xml:"PartyTaxScheme"`
		Registration string         `xml:"PartyLegalEntity>RegistrationName"`
	} `xml:"AccountingSupplierParty>Party"`
	PayeeAccounts []string `xml:"PaymentMeans>PayeeFinancialAccount>ID"`
	Rates         []string `xml:"TaxTotal>TaxSubtotal>TaxCategory>Percent"`
	Totals        struct {
		TaxExclusive string `xml:"TaxExclusiveAmount"`
		TaxInclusive string `xml:"TaxInclusiveAmount"`
		Payable      string `xml:"PayableAmount"`
	} `xml:"LegalMonetaryTotal"`
}

func parseUBL(data []byte) (*entity.CanonicalInvoice, error) {
	var doc ublInvoice
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode ubl: %w", err)
	}

	inv := &entity.CanonicalInvoice{
		Format:        FormatUBL,
		InvoiceNumber: strings.TrimSpace(doc.ID),
		InvoiceDate:   date(doc.IssueDate),
		AmountNet:     amount(doc.Totals.TaxExclusive),
		AmountGross:   amount(first(doc.Totals.TaxInclusive, doc.Totals.Payable)),
		TaxRate:       rate(firstOf(doc.Rates)),
		Currency:      strings.ToUpper(strings.TrimSpace(doc.Currency)),
		SellerName:    strings.TrimSpace(first(firstOf(doc.Seller.Names), doc.Seller.Registration)),
		SellerTaxID:   ublTaxID(doc.Seller.TaxSchemes),
		SellerIban:    identifier(firstOf(doc.PayeeAccounts)),
	}
	return inv, nil
}

func ublTaxID(schemes []ublTaxScheme) string {
	var fallback string
	for _, s := range schemes {
		v := strings.TrimSpace(s.CompanyID)
		if v == "" {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(s.Scheme), "VAT") {
			return identifier(v)
		}
		if fallback == "" {
			fallback = v
		}
	}
	return identifier(fallback)
}
