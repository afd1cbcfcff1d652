package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DateLayout is the DD.MM.YYYY layout used for user input and report dates.
	DateLayout = "02.01.2006"

	// TimestampLayout is the layout of the operation date column in the bank export.
	TimestampLayout = "02.01.2006 15:04:05"
)

// Operation is one transaction row of the bank export.
// Negative amounts are expenses, positive amounts are income or refunds.
type Operation struct {
	OperationDate time.Time
	Amount        float64
	Category      string
	Description   string
	CardNumber    string
}

// Table is a fully materialized, ordered set of operations.
// Order is only significant for stable tie-breaking.
type Table []Operation

// Latest returns the greatest operation date in the table.
// ok is false for an empty table.
func (t Table) Latest() (latest time.Time, ok bool) {
	for i, op := range t {
		if i == 0 || op.OperationDate.After(latest) {
			latest = op.OperationDate
		}
	}
	return latest, len(t) > 0
}

// Period is a closed time interval: both bounds are inclusive.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the period.
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// OperationView is the projection of an operation shown in reports.
type OperationView struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// View projects the operation for report output.
func (o Operation) View() OperationView {
	return OperationView{
		Date:        o.OperationDate.Format(DateLayout),
		Amount:      o.Amount,
		Category:    o.Category,
		Description: o.Description,
	}
}

// StartOfDay truncates t to 00:00:00 of its calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay extends t to 23:59:59 of its calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// ParseDate parses a DD.MM.YYYY date. An empty string is rejected.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: expected DD.MM.YYYY", ErrInvalidDate, s)
	}
	return t, nil
}
