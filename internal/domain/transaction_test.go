package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "valid", input: "15.03.2024", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "surrounding spaces", input: " 01.01.2023 ", want: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "iso layout", input: "2024-03-15", wantErr: true},
		{name: "day out of range", input: "32.01.2024", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("ParseDate(%q) error = %v, want ErrInvalidDate", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTable_Latest(t *testing.T) {
	table := Table{
		{OperationDate: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{OperationDate: time.Date(2024, 3, 20, 8, 30, 0, 0, time.UTC)},
		{OperationDate: time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)},
	}

	latest, ok := table.Latest()
	if !ok {
		t.Fatal("expected ok for non-empty table")
	}
	if want := time.Date(2024, 3, 20, 8, 30, 0, 0, time.UTC); !latest.Equal(want) {
		t.Errorf("Latest() = %v, want %v", latest, want)
	}

	if _, ok := (Table{}).Latest(); ok {
		t.Error("expected ok=false for empty table")
	}
}

func TestPeriod_ContainsBounds(t *testing.T) {
	p := Period{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   EndOfDay(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)),
	}

	if !p.Contains(p.Start) || !p.Contains(p.End) {
		t.Error("period bounds must be inclusive")
	}
	if p.Contains(p.Start.Add(-time.Second)) {
		t.Error("instant before start must be excluded")
	}
	if p.Contains(p.End.Add(time.Second)) {
		t.Error("instant after end must be excluded")
	}
}

func TestWeekdaySpend_AveragesOrder(t *testing.T) {
	w := WeekdaySpend{
		time.Sunday:    -10,
		time.Monday:    -20,
		time.Wednesday: -30,
	}

	got := w.Averages()
	want := []string{"Monday", "Wednesday", "Sunday"}
	if len(got) != len(want) {
		t.Fatalf("Averages() len = %d, want %d", len(got), len(want))
	}
	for i, day := range want {
		if got[i].Weekday != day {
			t.Errorf("Averages()[%d] = %s, want %s", i, got[i].Weekday, day)
		}
	}
}

func TestOperation_View(t *testing.T) {
	op := Operation{
		OperationDate: time.Date(2024, 3, 5, 14, 2, 1, 0, time.UTC),
		Amount:        -99.5,
		Category:      "Супермаркеты",
		Description:   "Пятёрочка",
	}

	v := op.View()
	if v.Date != "05.03.2024" {
		t.Errorf("View().Date = %q, want 05.03.2024", v.Date)
	}
	if v.Amount != -99.5 || v.Category != "Супермаркеты" || v.Description != "Пятёрочка" {
		t.Errorf("View() = %+v", v)
	}
}
