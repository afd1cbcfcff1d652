package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationRow is one row of the operations table.
type OperationRow struct {
	OperationID string `bigquery:"operation_id"` // REQUIRED

	// OperationTS holds the export's wall-clock time stored as UTC.
	OperationTS   time.Time  `bigquery:"operation_ts"`   // REQUIRED
	OperationDate civil.Date `bigquery:"operation_date"` // REQUIRED, partition column

	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC

	Category    bigquery.NullString `bigquery:"category"`    // NULLABLE
	Description string              `bigquery:"description"` // REQUIRED STRING
	CardNumber  bigquery.NullString `bigquery:"card_number"` // NULLABLE

	SourceFile bigquery.NullString `bigquery:"source_file"` // NULLABLE
	ImportedTS time.Time           `bigquery:"imported_ts"` // REQUIRED
}

// NewOperationRow maps a domain operation to a table row.
func NewOperationRow(op domain.Operation, source string, importedAt time.Time) *OperationRow {
	ts := op.OperationDate.UTC()
	return &OperationRow{
		OperationID:   uuid.NewString(),
		OperationTS:   ts,
		OperationDate: civil.DateOf(ts),
		Amount:        decimal.NewFromFloat(op.Amount).Rat(),
		Category:      nullString(op.Category),
		Description:   op.Description,
		CardNumber:    nullString(op.CardNumber),
		SourceFile:    nullString(source),
		ImportedTS:    importedAt.UTC(),
	}
}

// ToOperation maps the row back to a domain operation.
func (r *OperationRow) ToOperation() domain.Operation {
	var amount float64
	if r.Amount != nil {
		amount, _ = r.Amount.Float64()
	}
	return domain.Operation{
		OperationDate: r.OperationTS.UTC(),
		Amount:        amount,
		Category:      r.Category.StringVal,
		Description:   r.Description,
		CardNumber:    r.CardNumber.StringVal,
	}
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
