package services

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/jonlam1989/Capstone/internal/core"
	"github.com/jonlam1989/Capstone/internal/dataset"
)

// TransactionService answers the transaction-browsing queries: filtered
// row sets and the count/sum summary panels.
type TransactionService struct {
	store *dataset.Store
}

func NewTransactionService(store *dataset.Store) *TransactionService {
	return &TransactionService{store: store}
}

// Search returns the joined rows matching the predicate set.
func (s *TransactionService) Search(ctx context.Context, p core.Predicates) []core.JoinedRow {
	rows := core.Filter(s.store.View(), p)
	slog.DebugContext(ctx, "Transaction search", "matches", len(rows))
	return rows
}

// TypeSummary returns the number and total value of transactions of the
// given type. An empty type yields zeros; the panel shows nothing until a
// type is picked.
func (s *TransactionService) TypeSummary(ctx context.Context, txnType string) (int, decimal.Decimal) {
	return core.Aggregate(s.store.View(), core.GroupByType, txnType)
}

// StateSummary returns the branches-served count and total transaction
// value for customers in the given state. The count is distinct branch
// codes, matching the dashboard's "Branches" panel.
func (s *TransactionService) StateSummary(ctx context.Context, state string) (int, decimal.Decimal) {
	view := s.store.View()
	_, sum := core.Aggregate(view, core.GroupByState, state)
	return core.DistinctBranches(view, state), sum
}

// FilterOptions is everything the sidebar needs to offer as choices.
type FilterOptions struct {
	ZipCodes []string
	Months   []int
	Years    []int
	Types    []string
	States   []string
	MinDate  string
	MaxDate  string
}

// Options returns the distinct filterable values present in the dataset.
func (s *TransactionService) Options(ctx context.Context) FilterOptions {
	opts := FilterOptions{
		ZipCodes: s.store.ZipCodes(),
		Months:   s.store.Months(),
		Years:    s.store.Years(),
		Types:    s.store.TransactionTypes(),
		States:   s.store.States(),
	}
	if min, max, ok := s.store.DateRange(); ok {
		opts.MinDate = min.Format("2006-01-02")
		opts.MaxDate = max.Format("2006-01-02")
	}
	return opts
}
