package dataset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonlam1989/Capstone/internal/core"
)

// fakeSource backs a Store without a database.
type fakeSource struct {
	customers []core.Customer
	txns      []core.Transaction
	branches  []core.Branch

	loadErr     error
	updated     map[string]core.CustomerEdit
	updateMiss  bool
	updateError error
}

func (f *fakeSource) LoadCustomers(ctx context.Context) ([]core.Customer, error) {
	return f.customers, f.loadErr
}

func (f *fakeSource) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	return f.txns, f.loadErr
}

func (f *fakeSource) LoadBranches(ctx context.Context) ([]core.Branch, error) {
	return f.branches, f.loadErr
}

func (f *fakeSource) UpdateCustomer(ctx context.Context, ssn string, edit core.CustomerEdit) (int64, error) {
	if f.updateError != nil {
		return 0, f.updateError
	}
	if f.updateMiss {
		return 0, nil
	}
	if f.updated == nil {
		f.updated = make(map[string]core.CustomerEdit)
	}
	f.updated[ssn] = edit
	return 1, nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fixtureSource() *fakeSource {
	return &fakeSource{
		customers: []core.Customer{
			{SSN: "111", FirstName: "Alan", LastName: "Carter", CreditCardNo: "4210000000000001", Zip: "39120", State: "MS"},
			{SSN: "222", FirstName: "Wilber", LastName: "Dunham", CreditCardNo: "4210000000000002", Zip: "06109", State: "CT"},
		},
		txns: []core.Transaction{
			{ID: 1, CustSSN: "111", BranchCode: 10, Type: "Grocery", Value: dec("10.00"), Date: core.NewDate(2018, 3, 14)},
			{ID: 2, CustSSN: "222", BranchCode: 20, Type: "Bills", Value: dec("20.00"), Date: core.NewDate(2018, 5, 2)},
			{ID: 3, CustSSN: "999", BranchCode: 10, Type: "Gas", Value: dec("30.00"), Date: core.NewDate(2018, 6, 8)},
		},
		branches: []core.Branch{
			{Code: 10, Name: "Example Bank", City: "Lakeville", State: "MN", Zip: "55044"},
		},
	}
}

func loadedStore(t *testing.T, src *fakeSource) *Store {
	t.Helper()
	store := NewStore(src, src)
	require.NoError(t, store.Load(context.Background()))
	return store
}

func TestStoreLoadAndView(t *testing.T) {
	store := loadedStore(t, fixtureSource())

	view := store.View()
	require.Len(t, view, 2, "unresolvable customer key drops the transaction")
	assert.Equal(t, "4210000000000001", view[0].CardNo)

	// Branch view drops the row whose branch code has no match.
	bview := store.BranchView()
	require.Len(t, bview, 1)
	assert.Equal(t, "Example Bank", bview[0].BranchName)
}

func TestStoreLoadFailureLeavesEmptyStore(t *testing.T) {
	src := fixtureSource()
	src.loadErr = core.ErrDataUnavailable

	store := NewStore(src, src)
	err := store.Load(context.Background())
	require.ErrorIs(t, err, core.ErrDataUnavailable)

	assert.Empty(t, store.View(), "failed load yields no data, not a crash")
	assert.Empty(t, store.Customers())
}

func TestStoreViewIsCached(t *testing.T) {
	src := fixtureSource()
	store := loadedStore(t, src)

	v1 := store.View()
	v2 := store.View()
	assert.Same(t, &v1[0], &v2[0], "view should be built once and reused")
}

func TestStoreUpdateCustomerReadYourWrites(t *testing.T) {
	src := fixtureSource()
	store := loadedStore(t, src)
	_ = store.View()

	edit := core.CustomerEdit{
		FirstName: "Alan", MiddleName: "B", LastName: "Carter-Smith",
		CreditCardNo: "4210000000000009", StreetAddress: "Main Street,1",
		City: "Natchez", State: "MS", Country: "US", Zip: "39120",
		Phone: "5551234", Email: "alan@example.com",
	}
	require.NoError(t, store.UpdateCustomer(context.Background(), "111", edit))

	// Write-through happened.
	assert.Equal(t, edit, src.updated["111"])

	// The joined view reflects the edit without a reload.
	view := store.View()
	require.Len(t, view, 2)
	assert.Equal(t, "Carter-Smith", view[0].LastName)
	assert.Equal(t, "4210000000000009", view[0].CardNo)

	// LastUpdated was bumped in memory.
	for _, c := range store.Customers() {
		if c.SSN == "111" {
			assert.WithinDuration(t, time.Now(), c.LastUpdated, time.Minute)
		}
	}
}

func TestStoreUpdateCustomerNotFound(t *testing.T) {
	src := fixtureSource()
	src.updateMiss = true
	store := loadedStore(t, src)

	err := store.UpdateCustomer(context.Background(), "000", core.CustomerEdit{FirstName: "x"})
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestStoreUpdateCustomerStorageError(t *testing.T) {
	src := fixtureSource()
	src.updateError = errors.New("disk full")
	store := loadedStore(t, src)

	err := store.UpdateCustomer(context.Background(), "111", core.CustomerEdit{FirstName: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNotFound)
}

func TestStoreUniqueValueLists(t *testing.T) {
	store := loadedStore(t, fixtureSource())

	assert.Equal(t, []string{"06109", "39120"}, store.ZipCodes())
	assert.Equal(t, []string{"Bills", "Grocery"}, store.TransactionTypes())
	assert.Equal(t, []string{"CT", "MS"}, store.States())
	assert.Equal(t, []int{3, 5}, store.Months())
	assert.Equal(t, []int{2018}, store.Years())
}

func TestStoreDateRange(t *testing.T) {
	store := loadedStore(t, fixtureSource())

	min, max, ok := store.DateRange()
	require.True(t, ok)
	assert.Equal(t, core.NewDate(2018, 3, 14), min)
	assert.Equal(t, core.NewDate(2018, 5, 2), max)

	empty := NewStore(&fakeSource{}, &fakeSource{})
	require.NoError(t, empty.Load(context.Background()))
	_, _, ok = empty.DateRange()
	assert.False(t, ok)
}
