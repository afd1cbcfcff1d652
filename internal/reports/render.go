package reports

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const weekdaySheet = "Траты по дням недели"

// EncodeJSON renders v as indented JSON with non-ASCII text kept verbatim.
func EncodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("EncodeJSON: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// RenderWeekdayXLSX writes the weekday report as a single-sheet workbook:
// the covered period on the first row, then one row per weekday.
func RenderWeekdayXLSX(report *WeekdayReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), weekdaySheet); err != nil {
		return nil, fmt.Errorf("RenderWeekdayXLSX: rename sheet: %w", err)
	}

	period := []interface{}{"Период", report.StartDate, report.EndDate}
	if err := f.SetSheetRow(weekdaySheet, "A1", &period); err != nil {
		return nil, fmt.Errorf("RenderWeekdayXLSX: period: %w", err)
	}
	header := []interface{}{"День недели", "Средние траты"}
	if err := f.SetSheetRow(weekdaySheet, "A2", &header); err != nil {
		return nil, fmt.Errorf("RenderWeekdayXLSX: header: %w", err)
	}

	for i, avg := range report.Averages {
		cellRef, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, fmt.Errorf("RenderWeekdayXLSX: row %d: %w", i+3, err)
		}
		row := []interface{}{avg.Weekday, avg.Amount}
		if err := f.SetSheetRow(weekdaySheet, cellRef, &row); err != nil {
			return nil, fmt.Errorf("RenderWeekdayXLSX: row %d: %w", i+3, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("RenderWeekdayXLSX: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
