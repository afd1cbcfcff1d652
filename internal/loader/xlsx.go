package loader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/dvloznov/spending-reports/internal/storage"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Column headers of the bank export.
const (
	ColumnDate        = "Дата операции"
	ColumnAmount      = "Сумма платежа"
	ColumnCategory    = "Категория"
	ColumnDescription = "Описание"
	ColumnCard        = "Номер карты"
)

var requiredColumns = []string{ColumnDate, ColumnAmount, ColumnCategory, ColumnDescription, ColumnCard}

// Loader reads operations exports from local files or Cloud Storage.
type Loader struct {
	reader storage.SourceReader
	log    zerolog.Logger
}

// NewLoader creates a loader on top of reader.
func NewLoader(reader storage.SourceReader, log zerolog.Logger) *Loader {
	return &Loader{reader: reader, log: log}
}

// Load reads and parses the export at source.
func (l *Loader) Load(ctx context.Context, source string) (domain.Table, error) {
	data, err := l.reader.ReadSource(ctx, source)
	if err != nil {
		l.log.Error().Err(err).Str("source", source).Msg("Failed to read operations export")
		return nil, fmt.Errorf("Load: %w", err)
	}

	table, err := Parse(bytes.NewReader(data))
	if err != nil {
		l.log.Error().Err(err).Str("source", source).Msg("Failed to parse operations export")
		return nil, fmt.Errorf("Load: %w", err)
	}

	l.log.Info().Str("source", source).Int("rows", len(table)).Msg("Operations loaded")
	return table, nil
}

// FileSource is a TableSource bound to one export location.
type FileSource struct {
	loader *Loader
	source string
}

// NewFileSource binds loader to source.
func NewFileSource(loader *Loader, source string) *FileSource {
	return &FileSource{loader: loader, source: source}
}

// LoadTable implements domain.TableSource.
func (f *FileSource) LoadTable(ctx context.Context) (domain.Table, error) {
	return f.loader.Load(ctx, f.source)
}

var _ domain.TableSource = (*FileSource)(nil)

// Parse reads the first sheet of an xlsx workbook into a table.
// Columns are located by header; unknown columns are ignored.
func Parse(r io.Reader) (domain.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("Parse: open workbook: %v: %w", err, domain.ErrInvalidSpreadsheet)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Parse: workbook has no sheets: %w", domain.ErrInvalidSpreadsheet)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("Parse: read rows: %v: %w", err, domain.ErrInvalidSpreadsheet)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("Parse: spreadsheet has no rows: %w", domain.ErrEmptyPeriod)
	}

	index, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	table := make(domain.Table, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		op, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("Parse: row %d: %v: %w", line, err, domain.ErrInvalidSpreadsheet)
		}
		table = append(table, op)
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("Parse: spreadsheet has no rows: %w", domain.ErrEmptyPeriod)
	}
	return table, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("Parse: missing column %q: %w", col, domain.ErrInvalidSpreadsheet)
		}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) (domain.Operation, error) {
	cell := func(col string) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	when, err := ParseTimestamp(cell(ColumnDate))
	if err != nil {
		return domain.Operation{}, err
	}
	amount, err := ParseAmount(cell(ColumnAmount))
	if err != nil {
		return domain.Operation{}, err
	}

	return domain.Operation{
		OperationDate: when,
		Amount:        amount,
		Category:      cell(ColumnCategory),
		Description:   cell(ColumnDescription),
		CardNumber:    cell(ColumnCard),
	}, nil
}

// ParseTimestamp accepts "DD.MM.YYYY HH:MM:SS", "DD.MM.YYYY" or an Excel
// date serial number.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty %s", ColumnDate)
	}
	if t, err := time.Parse(domain.TimestampLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(domain.DateLayout, s); err == nil {
		return t, nil
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("%s %q: %v", ColumnDate, s, err)
		}
		return t.UTC().Round(time.Second), nil
	}
	return time.Time{}, fmt.Errorf("%s %q: expected %s", ColumnDate, s, domain.TimestampLayout)
}

// ParseAmount accepts dot or comma decimals with optional grouping spaces.
func ParseAmount(s string) (float64, error) {
	clean := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".", "\u2212", "-").Replace(s)
	if clean == "" {
		return 0, fmt.Errorf("empty %s", ColumnAmount)
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: not a number", ColumnAmount, s)
	}
	return v, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
