package analysis

import (
	"github.com/dvloznov/spending-reports/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// CardSummaries sums expenses per card and derives a 1% cashback from the
// rounded total.
// Cards are returned in the order they first appear among expense rows.
// Rows without a card number are not attributed to any card.
func CardSummaries(rows domain.Table) []domain.CardSummary {
	sums := make(map[string]decimal.Decimal)
	var order []string

	for _, op := range rows {
		if op.Amount >= 0 || op.CardNumber == "" {
			continue
		}
		sum, seen := sums[op.CardNumber]
		if !seen {
			order = append(order, op.CardNumber)
		}
		sums[op.CardNumber] = sum.Add(decimal.NewFromFloat(op.Amount))
	}

	out := make([]domain.CardSummary, 0, len(order))
	for _, card := range order {
		total := sums[card].RoundBank(2)
		out = append(out, domain.CardSummary{
			LastDigits: card,
			TotalSpent: total.InexactFloat64(),
			Cashback:   total.Div(hundred).RoundBank(2).Abs().InexactFloat64(),
		})
	}
	return out
}
