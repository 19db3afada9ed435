package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonlam1989/Capstone/internal/core"
)

// Loader is the read side of the backing source. storage.SQLiteRepository
// satisfies it; tests use in-memory fakes.
type Loader interface {
	LoadCustomers(ctx context.Context) ([]core.Customer, error)
	LoadTransactions(ctx context.Context) ([]core.Transaction, error)
	LoadBranches(ctx context.Context) ([]core.Branch, error)
}

// Updater is the write side: one point update by identity key, returning
// the number of rows affected.
type Updater interface {
	UpdateCustomer(ctx context.Context, ssn string, edit core.CustomerEdit) (int64, error)
}

// Store holds the three relations in memory together with lazily built,
// cached joined views. Every query component reads through the Store
// instead of reloading and rejoining on its own; the caches are dropped
// only when an edit lands.
//
// The engines themselves are single-threaded, but the HTTP server makes
// concurrent readers real, so access is guarded by a RWMutex with the
// Update Gateway as the single writer.
type Store struct {
	loader  Loader
	updater Updater

	mu           sync.RWMutex
	customers    []core.Customer
	transactions []core.Transaction
	branches     []core.Branch

	view       []core.JoinedRow // Transaction⋈Customer
	branchView []core.JoinedRow // Transaction⋈Customer⋈Branch
}

func NewStore(loader Loader, updater Updater) *Store {
	return &Store{loader: loader, updater: updater}
}

// Load fills all three relations from the backing source, the three reads
// running concurrently. On failure the store is left empty so queries
// return no rows rather than stale or partial data.
func (s *Store) Load(ctx context.Context) error {
	var (
		customers []core.Customer
		txns      []core.Transaction
		branches  []core.Branch
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customers, err = s.loader.LoadCustomers(gctx)
		return err
	})
	g.Go(func() (err error) {
		txns, err = s.loader.LoadTransactions(gctx)
		return err
	})
	g.Go(func() (err error) {
		branches, err = s.loader.LoadBranches(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.mu.Lock()
		s.customers, s.transactions, s.branches = nil, nil, nil
		s.view, s.branchView = nil, nil
		s.mu.Unlock()
		return fmt.Errorf("load dataset: %w", err)
	}

	s.mu.Lock()
	s.customers = customers
	s.transactions = txns
	s.branches = branches
	s.view, s.branchView = nil, nil
	s.mu.Unlock()

	slog.InfoContext(ctx, "Dataset loaded",
		"customers", len(customers),
		"transactions", len(txns),
		"branches", len(branches))
	return nil
}

// View returns the cached Transaction⋈Customer joined view, building it on
// first use. Callers must not mutate the returned slice.
func (s *Store) View() []core.JoinedRow {
	s.mu.RLock()
	if s.view != nil {
		defer s.mu.RUnlock()
		return s.view
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		s.view = core.JoinTransactionsCustomers(s.transactions, s.customers)
	}
	return s.view
}

// BranchView returns the cached three-way joined view used by the
// statement calculator.
func (s *Store) BranchView() []core.JoinedRow {
	s.mu.RLock()
	if s.branchView != nil {
		defer s.mu.RUnlock()
		return s.branchView
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.branchView == nil {
		base := s.view
		if base == nil {
			base = core.JoinTransactionsCustomers(s.transactions, s.customers)
			s.view = base
		}
		s.branchView = core.JoinBranches(base, s.branches)
	}
	return s.branchView
}

// CustomerView joins the transaction relation with a single customer,
// giving that customer's full history. Linkage is by identity key, not
// card number, so a card-number edit does not orphan the history.
func (s *Store) CustomerView(ssn string) []core.JoinedRow {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var owned []core.Transaction
	for _, t := range s.transactions {
		if t.CustSSN == ssn {
			owned = append(owned, t)
		}
	}
	return core.JoinTransactionsCustomers(owned, s.customers)
}

// Customers returns the customer relation. Callers must not mutate it.
func (s *Store) Customers() []core.Customer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.customers
}

// UpdateCustomer writes an edit through to the backing source, then
// patches the in-memory row and drops the cached views so the next read
// observes the change without a reload. Returns core.ErrNotFound when the
// identity key matches no row.
func (s *Store) UpdateCustomer(ctx context.Context, ssn string, edit core.CustomerEdit) error {
	affected, err := s.updater.UpdateCustomer(ctx, ssn, edit)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("customer %w", core.ErrNotFound)
	}

	s.mu.Lock()
	for i := range s.customers {
		if s.customers[i].SSN != ssn {
			continue
		}
		s.customers[i].FirstName = edit.FirstName
		s.customers[i].MiddleName = edit.MiddleName
		s.customers[i].LastName = edit.LastName
		s.customers[i].CreditCardNo = edit.CreditCardNo
		s.customers[i].StreetAddress = edit.StreetAddress
		s.customers[i].City = edit.City
		s.customers[i].State = edit.State
		s.customers[i].Country = edit.Country
		s.customers[i].Zip = edit.Zip
		s.customers[i].Phone = edit.Phone
		s.customers[i].Email = edit.Email
		s.customers[i].LastUpdated = time.Now().UTC()
		break
	}
	s.view, s.branchView = nil, nil
	s.mu.Unlock()

	return nil
}

// ZipCodes returns the sorted unique customer zip codes present in the
// joined view, for the filter sidebar.
func (s *Store) ZipCodes() []string {
	return uniqueStrings(s.View(), func(r core.JoinedRow) string { return r.Zip })
}

// TransactionTypes returns the sorted unique transaction types.
func (s *Store) TransactionTypes() []string {
	return uniqueStrings(s.View(), func(r core.JoinedRow) string { return r.Type })
}

// States returns the sorted unique customer states.
func (s *Store) States() []string {
	return uniqueStrings(s.View(), func(r core.JoinedRow) string { return r.State })
}

// Months returns the sorted unique calendar months with any transaction.
func (s *Store) Months() []int {
	return uniqueInts(s.View(), func(r core.JoinedRow) int { return int(r.Date.Month()) })
}

// Years returns the sorted unique calendar years with any transaction.
func (s *Store) Years() []int {
	return uniqueInts(s.View(), func(r core.JoinedRow) int { return r.Date.Year() })
}

// DateRange returns the earliest and latest transaction dates, for the
// date-picker bounds. ok is false on an empty view.
func (s *Store) DateRange() (min, max time.Time, ok bool) {
	view := s.View()
	if len(view) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max = view[0].Date, view[0].Date
	for _, r := range view[1:] {
		if r.Date.Before(min) {
			min = r.Date
		}
		if r.Date.After(max) {
			max = r.Date
		}
	}
	return min, max, true
}

func uniqueStrings(view []core.JoinedRow, field func(core.JoinedRow) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range view {
		v := field(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func uniqueInts(view []core.JoinedRow, field func(core.JoinedRow) int) []int {
	seen := make(map[int]struct{})
	out := make([]int, 0)
	for _, r := range view {
		v := field(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
