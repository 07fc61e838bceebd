package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kuesten-code/Werkbank-sub000/constants"
)

// Confirm feeds user-confirmed values back into pattern learning. rawText
// must be the text the document was originally extracted from. It returns
// the fields a pattern was stored for; values that cannot be located in the
// text are skipped silently.
func (p *Pipeline) Confirm(ctx context.Context, supplierID uuid.UUID, rawText string, confirmed map[constants.FieldName]string) ([]constants.FieldName, error) {
	var learned []constants.FieldName
	var errs []error

	for _, field := range constants.AllFields() {
		value, ok := confirmed[field]
		if !ok {
			continue
		}
		stored, err := p.Learner.Learn(ctx, supplierID, field, rawText, value)
		if err != nil {
			errs = append(errs, fmt.Errorf("learn %s: %w", field, err))
			continue
		}
		if stored {
			learned = append(learned, field)
		}
	}

	for field := range confirmed {
		if !field.Valid() {
			errs = append(errs, fmt.Errorf("learn %s: unknown field", field))
		}
	}

	p.Logger.Info("confirmation processed", "supplier_id", supplierID, "confirmed", len(confirmed), "learned", len(learned))
	return learned, errors.Join(errs...)
}
