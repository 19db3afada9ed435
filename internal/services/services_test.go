package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonlam1989/Capstone/internal/cache"
	"github.com/jonlam1989/Capstone/internal/core"
	"github.com/jonlam1989/Capstone/internal/dataset"
)

// memSource is an in-memory backing source for service tests.
type memSource struct {
	customers []core.Customer
	txns      []core.Transaction
	branches  []core.Branch
	updates   int
}

func (m *memSource) LoadCustomers(ctx context.Context) ([]core.Customer, error) {
	return m.customers, nil
}

func (m *memSource) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	return m.txns, nil
}

func (m *memSource) LoadBranches(ctx context.Context) ([]core.Branch, error) {
	return m.branches, nil
}

func (m *memSource) UpdateCustomer(ctx context.Context, ssn string, edit core.CustomerEdit) (int64, error) {
	for _, c := range m.customers {
		if c.SSN == ssn {
			m.updates++
			return 1, nil
		}
	}
	return 0, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixtureStore(t *testing.T) (*dataset.Store, *memSource) {
	t.Helper()
	src := &memSource{
		customers: []core.Customer{
			{
				SSN: "111", FirstName: "Alan", MiddleName: "B", LastName: "Carter",
				CreditCardNo: "1234567890123456", StreetAddress: "Main Street North,460",
				City: "Natchez", State: "MS", Country: "United States", Zip: "39120",
				Phone: "1237818", Email: "alan@example.com",
			},
			{
				SSN: "222", FirstName: "Wilber", MiddleName: "E", LastName: "Dunham",
				CreditCardNo: "9999888877776666", City: "Wethersfield", State: "CT", Zip: "06109",
				StreetAddress: "Redwood Drive,801", Country: "United States",
				Phone: "7859413", Email: "wilber@example.com",
			},
		},
		txns: []core.Transaction{
			{ID: 1, CustSSN: "111", BranchCode: 10, Type: "Grocery", Value: dec("100.00"), Date: core.NewDate(2023, 3, 14)},
			{ID: 2, CustSSN: "111", BranchCode: 10, Type: "Bills", Value: dec("50.00"), Date: core.NewDate(2023, 3, 2)},
			{ID: 3, CustSSN: "111", BranchCode: 20, Type: "Gas", Value: dec("75.00"), Date: core.NewDate(2023, 4, 1)},
			{ID: 4, CustSSN: "222", BranchCode: 10, Type: "Grocery", Value: dec("9.99"), Date: core.NewDate(2023, 3, 20)},
		},
		branches: []core.Branch{
			{Code: 10, Name: "Example Bank", Street: "Bridle Court", City: "Lakeville", State: "MN", Zip: "55044"},
			{Code: 20, Name: "Example Bank", Street: "Washington Street", City: "Huntley", State: "IL", Zip: "60142"},
		},
	}
	store := dataset.NewStore(src, src)
	require.NoError(t, store.Load(context.Background()))
	return store, src
}

func validEdit() core.CustomerEdit {
	return core.CustomerEdit{
		FirstName: "Alan", MiddleName: "B", LastName: "Carter",
		CreditCardNo: "1234567890123456", StreetAddress: "Main Street North,460",
		City: "Natchez", State: "MS", Country: "United States",
		Zip: "39121", Phone: "1237818", Email: "alan@example.com",
	}
}

func TestTransactionServiceSearch(t *testing.T) {
	store, _ := fixtureStore(t)
	svc := NewTransactionService(store)
	zip := "39120"

	rows := svc.Search(context.Background(), core.Predicates{Zip: &zip})
	require.Len(t, rows, 3)
	assert.Equal(t, core.NewDate(2023, 4, 1), rows[0].Date, "sorted date descending")
}

func TestTransactionServiceTypeSummary(t *testing.T) {
	store, _ := fixtureStore(t)
	svc := NewTransactionService(store)

	count, sum := svc.TypeSummary(context.Background(), "Grocery")
	assert.Equal(t, 2, count)
	assert.True(t, sum.Equal(dec("109.99")), "got %s", sum)

	count, sum = svc.TypeSummary(context.Background(), "")
	assert.Zero(t, count)
	assert.True(t, sum.IsZero())
}

func TestTransactionServiceStateSummary(t *testing.T) {
	store, _ := fixtureStore(t)
	svc := NewTransactionService(store)

	branches, sum := svc.StateSummary(context.Background(), "MS")
	assert.Equal(t, 2, branches, "distinct branch codes, not row count")
	assert.True(t, sum.Equal(dec("225.00")), "got %s", sum)
}

func TestTransactionServiceOptions(t *testing.T) {
	store, _ := fixtureStore(t)
	opts := NewTransactionService(store).Options(context.Background())

	assert.Equal(t, []string{"06109", "39120"}, opts.ZipCodes)
	assert.Equal(t, []int{3, 4}, opts.Months)
	assert.Equal(t, []int{2023}, opts.Years)
	assert.Equal(t, "2023-03-02", opts.MinDate)
	assert.Equal(t, "2023-04-01", opts.MaxDate)
}

func TestCustomerServiceLookup(t *testing.T) {
	store, _ := fixtureStore(t)
	svc := NewCustomerService(store, nil, nil)

	c, err := svc.Lookup(context.Background(), "ALAN", "b", "carter")
	require.NoError(t, err, "lookup is case-insensitive")
	assert.Equal(t, "111", c.SSN)

	_, err = svc.Lookup(context.Background(), "Nobody", "X", "Here")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = svc.Lookup(context.Background(), "Alan", "", "Carter")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestCustomerServiceHistory(t *testing.T) {
	store, _ := fixtureStore(t)
	svc := NewCustomerService(store, nil, nil)

	rows := svc.History(context.Background(), "111", nil, nil)
	require.Len(t, rows, 3)

	start := core.NewDate(2023, 3, 2)
	end := core.NewDate(2023, 3, 31)
	rows = svc.History(context.Background(), "111", &start, &end)
	require.Len(t, rows, 2, "inclusive date range")
	assert.Equal(t, core.NewDate(2023, 3, 14), rows[0].Date)
	assert.Equal(t, core.NewDate(2023, 3, 2), rows[1].Date)
}

func TestCustomerServiceApplyEdit(t *testing.T) {
	store, src := fixtureStore(t)
	statements := NewStatementService(store, cache.New[core.Statement](10, time.Minute))
	svc := NewCustomerService(store, nil, statements)
	ctx := context.Background()

	// Warm the statement cache, then edit; the cache must be purged.
	_, err := statements.Compute(ctx, "1234567890123456", 3, 2023)
	require.NoError(t, err)

	edit := validEdit()
	require.NoError(t, svc.ApplyEdit(ctx, "111", edit))
	assert.Equal(t, 1, src.updates)

	// Read-your-writes through the lookup path.
	c, err := svc.Lookup(ctx, "Alan", "B", "Carter")
	require.NoError(t, err)
	assert.Equal(t, "39121", c.Zip)
}

func TestCustomerServiceApplyEditValidation(t *testing.T) {
	store, src := fixtureStore(t)
	svc := NewCustomerService(store, nil, nil)
	ctx := context.Background()

	// Empty submission: no-op behind the submit gate.
	require.NoError(t, svc.ApplyEdit(ctx, "111", core.CustomerEdit{}))
	assert.Zero(t, src.updates)

	// Partially empty submission: validation error.
	edit := validEdit()
	edit.Email = ""
	err := svc.ApplyEdit(ctx, "111", edit)
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Zero(t, src.updates)

	// Unknown identity key.
	err = svc.ApplyEdit(ctx, "000", validEdit())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStatementServiceCompute(t *testing.T) {
	store, _ := fixtureStore(t)
	svc := NewStatementService(store, cache.New[core.Statement](10, time.Minute))
	ctx := context.Background()

	st, err := svc.Compute(ctx, "1234567890123456", 3, 2023)
	require.NoError(t, err)
	assert.True(t, st.NewBalance.Equal(dec("150.00")), "got %s", st.NewBalance)
	assert.Equal(t, core.NewDate(2023, 4, 1), st.DueDate)
	assert.Equal(t, "Alan Carter", st.CustomerName)
	assert.Equal(t, "Lakeville, MN 55044", st.BranchCityLine)

	// Second call is served from cache and identical.
	again, err := svc.Compute(ctx, "1234567890123456", 3, 2023)
	require.NoError(t, err)
	assert.Equal(t, st, again)
}

func TestStatementServiceComputeErrors(t *testing.T) {
	store, _ := fixtureStore(t)
	svc := NewStatementService(store, nil)
	ctx := context.Background()

	_, err := svc.Compute(ctx, "ABC123", 3, 2023)
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = svc.Compute(ctx, "0000000000000000", 3, 2023)
	assert.ErrorIs(t, err, core.ErrNotFound)

	st, err := svc.Compute(ctx, "1234567890123456", 12, 2023)
	require.NoError(t, err)
	assert.False(t, st.HasActivity)
	assert.True(t, st.NewBalance.IsZero())
}

func TestStatementCacheReflectsEdit(t *testing.T) {
	store, _ := fixtureStore(t)
	statements := NewStatementService(store, cache.New[core.Statement](10, time.Minute))
	customers := NewCustomerService(store, nil, statements)
	ctx := context.Background()

	st, err := statements.Compute(ctx, "1234567890123456", 3, 2023)
	require.NoError(t, err)
	assert.Equal(t, "Natchez, MS 39120", st.CityLine)

	edit := validEdit()
	edit.City = "Jackson"
	require.NoError(t, customers.ApplyEdit(ctx, "111", edit))

	st, err = statements.Compute(ctx, "1234567890123456", 3, 2023)
	require.NoError(t, err)
	assert.Equal(t, "Jackson, MS 39121", st.CityLine, "edit must invalidate cached statements")
}
