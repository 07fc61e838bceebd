package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kuesten-code/Werkbank-sub000/constants"
	"github.com/kuesten-code/Werkbank-sub000/internal/entity"
)

const sheet = "Intake"

// WriteResultsXLSX renders one row per document and one column per field.
func WriteResultsXLSX(results []entity.ExtractionResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	fields := constants.AllFields()
	headers := []string{"File", "Source", "Supplier"}
	for _, fn := range fields {
		headers = append(headers, fn.String())
	}
	headers = append(headers, "Warnings")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for r, res := range results {
		row := []any{res.FileName, string(res.Source), supplierName(res.Supplier)}
		for _, fn := range fields {
			row = append(row, res.Fields[fn])
		}
		row = append(row, strings.Join(res.Warnings, "; "))

		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", r+2, err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 32) // file
	_ = f.SetColWidth(sheet, "B", "B", 12) // source
	_ = f.SetColWidth(sheet, "C", "C", 28) // supplier
	_ = f.SetColWidth(sheet, "D", "I", 16) // fields
	_ = f.SetColWidth(sheet, "J", "J", 48) // warnings
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func supplierName(s *entity.SupplierSuggestion) string {
	if s == nil {
		return ""
	}
	return s.Name
}
