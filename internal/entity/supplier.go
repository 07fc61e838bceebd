package entity

import (
	"time"

	"github.com/google/uuid"
)

// Supplier represents a counterparty of purchase documents.
type Supplier struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Iban      string    `json:"iban,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SupplierSuggestion is the supplier an intake call proposes for a document.
type SupplierSuggestion struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Suggestion returns the suggestion shape of s.
func (s *Supplier) Suggestion() *SupplierSuggestion {
	if s == nil {
		return nil
	}
	return &SupplierSuggestion{ID: s.ID, Name: s.Name}
}
