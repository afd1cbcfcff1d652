package bigquery

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/spending-reports/internal/domain"
)

func TestOperationRow_RoundTrip(t *testing.T) {
	op := domain.Operation{
		OperationDate: time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC),
		Amount:        -160.89,
		Category:      "Супермаркеты",
		Description:   "Колхоз",
		CardNumber:    "*7197",
	}
	imported := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	row := NewOperationRow(op, "gs://exports/operations.xlsx", imported)

	if row.OperationID == "" {
		t.Error("expected generated operation ID")
	}
	if row.OperationDate != (civil.Date{Year: 2024, Month: time.March, Day: 1}) {
		t.Errorf("OperationDate = %v", row.OperationDate)
	}
	if row.Amount.FloatString(2) != "-160.89" {
		t.Errorf("Amount = %s, want -160.89", row.Amount.FloatString(2))
	}
	if !row.CardNumber.Valid || !row.SourceFile.Valid || !row.ImportedTS.Equal(imported) {
		t.Errorf("row = %+v", row)
	}

	back := row.ToOperation()
	if back != op {
		t.Errorf("ToOperation() = %+v, want %+v", back, op)
	}
}

func TestOperationRow_NullableColumns(t *testing.T) {
	row := NewOperationRow(domain.Operation{OperationDate: time.Now(), Amount: 10, Description: "Пополнение"}, "", time.Now())

	if row.Category.Valid || row.CardNumber.Valid || row.SourceFile.Valid {
		t.Errorf("empty strings must map to NULL: %+v", row)
	}
	if got := row.ToOperation(); got.CardNumber != "" || got.Category != "" {
		t.Errorf("ToOperation() = %+v", got)
	}
}

func TestTableToRows(t *testing.T) {
	table := domain.Table{
		{OperationDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Amount: -1, Description: "a"},
		{OperationDate: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), Amount: -2, Description: "b"},
	}

	rows := TableToRows(table, "ops.xlsx", time.Now())
	if len(rows) != 2 || rows[0].OperationID == rows[1].OperationID {
		t.Fatalf("TableToRows() produced %d rows with IDs %v", len(rows), rows)
	}

	back := RowsToTable(rows)
	for i := range table {
		if back[i] != table[i] {
			t.Errorf("row %d = %+v, want %+v", i, back[i], table[i])
		}
	}
}

func TestBuildOperationsQuery(t *testing.T) {
	ref := TableRef{ProjectID: "demo", DatasetID: "finance", TableID: "operations"}

	tests := []struct {
		name       string
		start, end time.Time
		wantParams []string
		wantWhere  bool
	}{
		{name: "unbounded", wantWhere: false},
		{name: "start only", start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), wantParams: []string{"start_ts"}, wantWhere: true},
		{
			name:       "both bounds",
			start:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			end:        time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
			wantParams: []string{"start_ts", "end_ts"},
			wantWhere:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params := BuildOperationsQuery(ref, tt.start, tt.end)

			if !strings.Contains(sql, "`demo.finance.operations`") {
				t.Errorf("query does not reference table: %s", sql)
			}
			if strings.Contains(sql, "WHERE") != tt.wantWhere {
				t.Errorf("WHERE presence = %v, want %v: %s", !tt.wantWhere, tt.wantWhere, sql)
			}
			if len(params) != len(tt.wantParams) {
				t.Fatalf("params = %+v, want %v", params, tt.wantParams)
			}
			for i, name := range tt.wantParams {
				if params[i].Name != name || !strings.Contains(sql, "@"+name) {
					t.Errorf("param %d = %s, want %s in query", i, params[i].Name, name)
				}
			}
		})
	}
}

func TestBuildDeleteBySourceQuery(t *testing.T) {
	ref := TableRef{ProjectID: "demo", DatasetID: "finance", TableID: "operations"}

	sql, params := BuildDeleteBySourceQuery(ref, "gs://exports/march.xlsx")
	if !strings.Contains(sql, "DELETE FROM `demo.finance.operations`") || !strings.Contains(sql, "@source_file") {
		t.Errorf("unexpected query: %s", sql)
	}
	if len(params) != 1 || params[0].Value != "gs://exports/march.xlsx" {
		t.Errorf("params = %+v", params)
	}
}
