package analysis

import (
	"time"

	"github.com/dvloznov/spending-reports/internal/domain"
)

// SpendingByWeekday returns the mean expense amount per weekday.
// Only expenses are counted and the means are not rounded.
func SpendingByWeekday(rows domain.Table) domain.WeekdaySpend {
	sums := make(map[time.Weekday]float64)
	counts := make(map[time.Weekday]int)

	for _, op := range rows {
		if op.Amount >= 0 {
			continue
		}
		day := op.OperationDate.Weekday()
		sums[day] += op.Amount
		counts[day]++
	}

	out := make(domain.WeekdaySpend, len(sums))
	for day, sum := range sums {
		out[day] = sum / float64(counts[day])
	}
	return out
}
