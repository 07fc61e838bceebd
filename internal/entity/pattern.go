package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/constants"
)

// SupplierPattern is the learned regular expression matching the text that
// immediately precedes a field value on documents of one supplier.
// There is at most one pattern per (SupplierID, FieldName).
type SupplierPattern struct {
	SupplierID uuid.UUID           `json:"supplier_id"`
	FieldName  constants.FieldName `json:"field_name"`
	Pattern    string              `json:"pattern"`
	UpdatedAt  time.Time           `json:"updated_at"`
}
