package analysis

import (
	"sort"

	"github.com/dvloznov/spending-reports/internal/domain"
)

// DefaultTopN is the size of the home page top list.
const DefaultTopN = 5

// TopByAmount returns the k rows with the greatest signed amount.
// Rows with equal amounts keep their table order.
func TopByAmount(rows domain.Table, k int) []domain.OperationView {
	if k <= 0 {
		return []domain.OperationView{}
	}

	sorted := make(domain.Table, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount > sorted[j].Amount
	})

	if k > len(sorted) {
		k = len(sorted)
	}
	out := make([]domain.OperationView, 0, k)
	for _, op := range sorted[:k] {
		out = append(out, op.View())
	}
	return out
}
