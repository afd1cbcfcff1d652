package loader

import (
	"fmt"

	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Отчет по операциям"

// Encode writes table as a workbook in the bank export layout, so the
// result can be read back with Parse.
func Encode(table domain.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return nil, fmt.Errorf("Encode: rename sheet: %w", err)
	}

	header := make([]interface{}, len(requiredColumns))
	for i, col := range requiredColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("Encode: header: %w", err)
	}

	for i, op := range table {
		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("Encode: row %d: %w", i+2, err)
		}
		row := []interface{}{
			op.OperationDate.Format(domain.TimestampLayout),
			op.Amount,
			op.Category,
			op.Description,
			op.CardNumber,
		}
		if err := f.SetSheetRow(exportSheet, cellRef, &row); err != nil {
			return nil, fmt.Errorf("Encode: row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("Encode: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
