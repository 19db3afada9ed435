package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string       { return &s }
func num(i int) *int             { return &i }
func day(t time.Time) *time.Time { return &t }

// filterView builds rows across two zips, two years, and several months so
// month and year masks genuinely overlap.
func filterView() []JoinedRow {
	return []JoinedRow{
		{TransactionID: 1, Zip: "10001", Date: date(2022, 3, 5), Type: "Grocery", Value: dec("10.00")},
		{TransactionID: 2, Zip: "10001", Date: date(2023, 3, 9), Type: "Bills", Value: dec("20.00")},
		{TransactionID: 3, Zip: "10001", Date: date(2023, 4, 1), Type: "Gas", Value: dec("30.00")},
		{TransactionID: 4, Zip: "39120", Date: date(2022, 4, 20), Type: "Grocery", Value: dec("40.00")},
		{TransactionID: 5, Zip: "10001", Date: date(2022, 4, 11), Type: "Test", Value: dec("50.00")},
	}
}

func ids(rows []JoinedRow) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.TransactionID
	}
	return out
}

func TestFilterNoPredicatesReturnsViewUnsorted(t *testing.T) {
	view := filterView()
	got := Filter(view, Predicates{})
	assert.Equal(t, ids(view), ids(got), "empty predicate set returns the view in insertion order")
}

func TestFilterByZipSortsDateDescending(t *testing.T) {
	got := Filter(filterView(), Predicates{Zip: str("10001")})
	assert.Equal(t, []int64{3, 2, 5, 1}, ids(got))
}

func TestFilterMonthAndYearAlignedConjunction(t *testing.T) {
	// Month 3 appears in 2022 and 2023, month 4 likewise; only the
	// aligned AND picks exactly the requested calendar month.
	got := Filter(filterView(), Predicates{Month: num(3), Year: num(2023)})
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].TransactionID)

	got = Filter(filterView(), Predicates{Month: num(4), Year: num(2022)})
	assert.Equal(t, []int64{4, 5}, ids(got))
}

func TestFilterZipMonthYearCombined(t *testing.T) {
	got := Filter(filterView(), Predicates{Zip: str("10001"), Month: num(4), Year: num(2022)})
	require.Len(t, got, 1)
	assert.Equal(t, int64(5), got[0].TransactionID)
}

func TestFilterMonthOnly(t *testing.T) {
	got := Filter(filterView(), Predicates{Month: num(4)})
	assert.Equal(t, []int64{3, 4, 5}, ids(got))
}

func TestFilterDateRangeInclusive(t *testing.T) {
	got := Filter(filterView(), Predicates{
		Start: day(date(2022, 4, 11)),
		End:   day(date(2023, 3, 9)),
	})
	assert.Equal(t, []int64{2, 4, 5}, ids(got))
}

func TestFilterNameCaseInsensitive(t *testing.T) {
	view := []JoinedRow{
		{TransactionID: 1, FirstName: "Alan", MiddleName: "B", LastName: "Carter", Date: date(2018, 1, 1)},
		{TransactionID: 2, FirstName: "Wilber", MiddleName: "E", LastName: "Dunham", Date: date(2018, 2, 2)},
	}
	got := Filter(view, Predicates{First: str("ALAN"), Middle: str("b"), Last: str("carter")})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].TransactionID)
}

func TestFilterNoMatchesReturnsEmptyNotNil(t *testing.T) {
	got := Filter(filterView(), Predicates{Zip: str("00000")})
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterEmptyView(t *testing.T) {
	got := Filter(nil, Predicates{Zip: str("10001")})
	assert.Empty(t, got)
}
