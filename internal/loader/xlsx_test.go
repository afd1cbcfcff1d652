package loader

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/dvloznov/spending-reports/internal/logger"
	"github.com/dvloznov/spending-reports/internal/storage"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows (header first) to a single-sheet workbook.
func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf.Bytes()
}

var exportHeader = []interface{}{"Дата операции", "Дата платежа", "Номер карты", "Статус", "Сумма платежа", "Категория", "Описание"}

func TestParse(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		exportHeader,
		{"31.12.2021 16:44:00", "31.12.2021", "*7197", "OK", -160.89, "Супермаркеты", "Колхоз"},
		{"31.12.2021 01:23:42", "31.12.2021", "*5091", "OK", "-564,00", "Различные товары", "Ozon.ru"},
		{},
		{"30.12.2021", "30.12.2021", "", "OK", 5046, "Пополнения", "Пополнение через Газпромбанк"},
	})

	table, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(table) != 3 {
		t.Fatalf("Parse returned %d rows, want 3", len(table))
	}

	first := table[0]
	if !first.OperationDate.Equal(time.Date(2021, 12, 31, 16, 44, 0, 0, time.UTC)) {
		t.Errorf("OperationDate = %v", first.OperationDate)
	}
	if first.Amount != -160.89 || first.CardNumber != "*7197" || first.Category != "Супермаркеты" || first.Description != "Колхоз" {
		t.Errorf("first row = %+v", first)
	}
	if table[1].Amount != -564 {
		t.Errorf("comma amount = %v, want -564", table[1].Amount)
	}
	if table[2].CardNumber != "" || table[2].Amount != 5046 {
		t.Errorf("third row = %+v", table[2])
	}
	if !table[2].OperationDate.Equal(time.Date(2021, 12, 30, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date-only row = %v", table[2].OperationDate)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{
			name:    "not a workbook",
			data:    []byte("definitely not zip"),
			wantErr: domain.ErrInvalidSpreadsheet,
		},
		{
			name:    "missing column",
			data:    buildWorkbook(t, [][]interface{}{{"Дата операции", "Сумма платежа"}, {"01.03.2024 10:00:00", -1}}),
			wantErr: domain.ErrInvalidSpreadsheet,
		},
		{
			name:    "bad date",
			data:    buildWorkbook(t, [][]interface{}{exportHeader, {"2024-03-01", "", "*1", "OK", -1, "A", "B"}}),
			wantErr: domain.ErrInvalidSpreadsheet,
		},
		{
			name:    "bad amount",
			data:    buildWorkbook(t, [][]interface{}{exportHeader, {"01.03.2024 10:00:00", "", "*1", "OK", "сто", "A", "B"}}),
			wantErr: domain.ErrInvalidSpreadsheet,
		},
		{
			name:    "header only",
			data:    buildWorkbook(t, [][]interface{}{exportHeader}),
			wantErr: domain.ErrEmptyPeriod,
		},
		{
			name:    "empty sheet",
			data:    buildWorkbook(t, nil),
			wantErr: domain.ErrEmptyPeriod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{input: "-160.89", want: -160.89},
		{input: "-1 234,56", want: -1234.56},
		{input: "1 000", want: 1000},
		{input: "−200", want: -200},
		{input: "", wantErr: true},
		{input: "n/a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimestamp_Serial(t *testing.T) {
	// 45352.5 is 2024-03-01 12:00 in the 1900 date system.
	got, err := ParseTimestamp("45352.5")
	if err != nil {
		t.Fatalf("ParseTimestamp failed: %v", err)
	}
	if want := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseTimestamp = %v, want %v", got, want)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	in := domain.Table{
		{OperationDate: time.Date(2024, 3, 1, 9, 15, 0, 0, time.UTC), Amount: -100, Category: "A", Description: "cafe, tel 916 000 11 22", CardNumber: "card1"},
		{OperationDate: time.Date(2024, 3, 20, 18, 0, 5, 0, time.UTC), Amount: 500.25, Category: "C", Description: "refund", CardNumber: ""},
	}

	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	out, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("round trip returned %d rows, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("row %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestLoader_FileSource(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		exportHeader,
		{"15.03.2024 12:00:00", "", "*1", "OK", -50, "B", "shop"},
	})
	path := filepath.Join(t.TempDir(), "operations.xlsx")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	log := logger.NewWithWriter(&bytes.Buffer{})
	src := NewFileSource(NewLoader(storage.NewReader(), log), path)

	table, err := src.LoadTable(context.Background())
	if err != nil {
		t.Fatalf("LoadTable failed: %v", err)
	}
	if len(table) != 1 || table[0].Description != "shop" {
		t.Errorf("LoadTable = %+v", table)
	}

	missing := NewFileSource(NewLoader(storage.NewReader(), log), filepath.Join(t.TempDir(), "none.xlsx"))
	if _, err := missing.LoadTable(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadTable(missing) error = %v, want ErrNotExist", err)
	}
}
