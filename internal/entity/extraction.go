package entity

import (
	"github.com/kuesten-code/Werkbank-sub000/constants"
)

// ExtractionResult is the outcome of one intake call. It is not persisted
// by the pipeline; RawText is kept so a later confirmation can learn from it.
type ExtractionResult struct {
	FileName string                         `json:"file_name"`
	Source   constants.IntakeSource         `json:"source"`
	State    constants.IntakeState          `json:"state"`
	Fields   map[constants.FieldName]string `json:"fields"`
	Supplier *SupplierSuggestion            `json:"supplier,omitempty"`
	RawText  string                         `json:"raw_text,omitempty"`
	Warnings []string                       `json:"warnings,omitempty"`
}

// Field returns the value for name and whether it was extracted.
func (r *ExtractionResult) Field(name constants.FieldName) (string, bool) {
	if r == nil || r.Fields == nil {
		return "", false
	}
	v, ok := r.Fields[name]
	return v, ok
}
