// Package analysis holds the pure query and aggregation functions over an
// in-memory operations table. Nothing here performs I/O or mutates its input.
package analysis

import (
	"fmt"
	"time"

	"github.com/dvloznov/spending-reports/internal/domain"
)

// DefaultTrailingDays is the length of the weekday report window.
const DefaultTrailingDays = 90

// MonthToDate returns the period from the first day of asOf's month at
// 00:00:00 through asOf itself.
func MonthToDate(asOf time.Time) domain.Period {
	y, m, _ := asOf.Date()
	return domain.Period{
		Start: time.Date(y, m, 1, 0, 0, 0, 0, asOf.Location()),
		End:   asOf,
	}
}

// DayRange returns the period from start through 23:59:59 of end's day.
func DayRange(start, end time.Time) (domain.Period, error) {
	if end.Before(start) {
		return domain.Period{}, fmt.Errorf("DayRange: %s > %s: %w",
			start.Format(domain.DateLayout), end.Format(domain.DateLayout), domain.ErrInvertedRange)
	}
	return domain.Period{Start: start, End: domain.EndOfDay(end)}, nil
}

// TrailingWindow returns the period of the given number of whole days
// ending at 23:59:59 of end's day.
func TrailingWindow(end time.Time, days int) domain.Period {
	day := domain.StartOfDay(end)
	return domain.Period{
		Start: day.AddDate(0, 0, -days),
		End:   domain.EndOfDay(end),
	}
}

// Select returns the rows of table inside p in their original order.
// The result is never nil.
func Select(table domain.Table, p domain.Period) domain.Table {
	out := make(domain.Table, 0, len(table))
	for _, op := range table {
		if p.Contains(op.OperationDate) {
			out = append(out, op)
		}
	}
	return out
}

// SelectMonth returns the month-to-date rows as of asOf.
func SelectMonth(table domain.Table, asOf time.Time) domain.Table {
	return Select(table, MonthToDate(asOf))
}

// SelectRange returns the rows between start and the end of end's day.
func SelectRange(table domain.Table, start, end time.Time) (domain.Table, error) {
	p, err := DayRange(start, end)
	if err != nil {
		return nil, err
	}
	return Select(table, p), nil
}
