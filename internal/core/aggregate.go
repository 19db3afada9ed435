package core

import "github.com/shopspring/decimal"

// GroupField names a categorical column an aggregate can group on.
type GroupField string

const (
	GroupByType  GroupField = "transaction_type"
	GroupByState GroupField = "state"
)

// Aggregate filters view to rows where the group field equals value and
// returns the matching row count plus the sum of transaction values.
//
// An empty value returns (0, 0.00) regardless of the view: the dashboard
// panels show zeros until the user picks a category, they do not show a
// grand total.
func Aggregate(view []JoinedRow, field GroupField, value string) (int, decimal.Decimal) {
	sum := decimal.Zero
	if value == "" {
		return 0, sum
	}

	count := 0
	for _, r := range view {
		var cell string
		switch field {
		case GroupByType:
			cell = r.Type
		case GroupByState:
			cell = r.State
		default:
			return 0, decimal.Zero
		}
		if cell == value {
			count++
			sum = sum.Add(r.Value)
		}
	}
	return count, sum
}

// DistinctBranches counts the distinct branch codes among rows whose
// customer state equals state. The state panel reports branches served,
// not raw transaction count.
func DistinctBranches(view []JoinedRow, state string) int {
	if state == "" {
		return 0
	}
	seen := make(map[int64]struct{})
	for _, r := range view {
		if r.State == state {
			seen[r.BranchCode] = struct{}{}
		}
	}
	return len(seen)
}
