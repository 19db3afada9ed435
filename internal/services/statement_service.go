package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonlam1989/Capstone/internal/cache"
	"github.com/jonlam1989/Capstone/internal/core"
	"github.com/jonlam1989/Capstone/internal/dataset"
)

// StatementService derives monthly bills from the branch-joined view,
// memoizing results per card/month/year until an edit invalidates them.
type StatementService struct {
	store *dataset.Store
	cache *cache.LRUCache[core.Statement]
}

func NewStatementService(store *dataset.Store, c *cache.LRUCache[core.Statement]) *StatementService {
	return &StatementService{store: store, cache: c}
}

// Compute returns the statement for one card, month, and year. Errors
// follow the calculator's taxonomy: ErrInvalidInput for a malformed card
// number, ErrNotFound for an unknown one.
func (s *StatementService) Compute(ctx context.Context, cardNo string, month, year int) (core.Statement, error) {
	key := statementKey(cardNo, month, year)
	if s.cache != nil {
		if st, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Statement cache hit", "month", month, "year", year)
			return st, nil
		}
	}

	st, err := core.ComputeStatement(s.store.BranchView(), cardNo, month, year)
	if err != nil {
		return core.Statement{}, err
	}

	if s.cache != nil {
		s.cache.Set(key, st)
	}
	return st, nil
}

// Invalidate drops every cached statement. Any customer edit can change
// the name or address block on an arbitrary bill.
func (s *StatementService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func statementKey(cardNo string, month, year int) string {
	return fmt.Sprintf("%s-%d-%d", cardNo, month, year)
}
