package export

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

func TestWriteResultsXLSX(t *testing.T) {
	results := []entity.ExtractionResult{
		{
			FileName: "rechnung.xml",
			Source:   constants.SourceStructured,
			Supplier: &entity.SupplierSuggestion{ID: uuid.New(), Name: "Nordlicht Papier KG"},
			Fields: map[constants.FieldName]string{
				constants.InvoiceNumber: "4711",
				constants.InvoiceDate:   "2024-11-12",
				constants.AmountGross:   "119.00",
			},
		},
		{
			FileName: "scan.pdf",
			Source:   constants.SourceScan,
			Warnings: []string{"text recognition failed: tesseract: timed out after 1m0s", "second"},
		},
	}

	data, err := WriteResultsXLSX(results)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{
		"File", "Source", "Supplier",
		"InvoiceNumber", "InvoiceDate", "AmountNet", "AmountGross", "TaxRate", "Iban",
		"Warnings",
	}, rows[0])
	assert.Equal(t, []string{
		"rechnung.xml", "structured", "Nordlicht Papier KG",
		"4711", "2024-11-12", "", "119.00",
	}, rows[1])
	assert.Equal(t, "scan.pdf", rows[2][0])
	assert.Equal(t, "text recognition failed: tesseract: timed out after 1m0s; second", rows[2][9])
}

func TestWriteResultsXLSX_Empty(t *testing.T) {
	data, err := WriteResultsXLSX(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
