package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Billing constants. The card program has a flat minimum payment and a
// flat credit limit; rewards accrue at 2% of the statement balance.
var (
	MinimumPayment = decimal.NewFromInt(40)
	CreditLimit    = decimal.NewFromInt(10000)
	rewardRate     = decimal.NewFromFloat(0.02)
)

// StatementLine is one itemized transaction on a bill.
type StatementLine struct {
	Date  time.Time
	Type  string
	Value decimal.Decimal
}

// Statement is the derived monthly billing summary for one card, month,
// and year. When HasActivity is false only NewBalance (zero) is
// meaningful; every other field is left at its zero value and renders
// blank.
type Statement struct {
	CardNo        string
	Month         int
	Year          int
	HasActivity   bool
	NewBalance    decimal.Decimal
	MinimumDue    decimal.Decimal
	DueDate       time.Time
	StatementDate time.Time
	RewardDollars decimal.Decimal
	CreditLimit   decimal.Decimal
	AvailCredit   decimal.Decimal

	// Addressing block, taken from the first matching row.
	CustomerName   string
	Street         string
	CityLine       string
	BranchName     string
	BranchStreet   string
	BranchCityLine string

	// Itemized transactions, date descending.
	Lines []StatementLine
}

// ComputeStatement derives the monthly bill for cardNo over the given
// calendar month and year of the branch-joined view.
//
// A card number containing anything but digits is ErrInvalidInput. A
// well-formed number with no transactions at all in the view is
// ErrNotFound. A known card with no activity in the requested month is
// neither: it yields a zero-balance statement with HasActivity false.
func ComputeStatement(view []JoinedRow, cardNo string, month, year int) (Statement, error) {
	if !isNumeric(cardNo) {
		return Statement{}, fmt.Errorf("card number %q: %w", cardNo, ErrInvalidInput)
	}
	if month < 1 || month > 12 {
		return Statement{}, fmt.Errorf("month %d: %w", month, ErrInvalidInput)
	}

	var cardRows []JoinedRow
	for _, r := range view {
		if r.CardNo == cardNo {
			cardRows = append(cardRows, r)
		}
	}
	if len(cardRows) == 0 {
		return Statement{}, fmt.Errorf("card number %s: %w", cardNo, ErrNotFound)
	}

	// Same aligned month-in-year conjunction as the filter engine.
	var monthRows []JoinedRow
	for _, r := range cardRows {
		if int(r.Date.Month()) == month && r.Date.Year() == year {
			monthRows = append(monthRows, r)
		}
	}

	st := Statement{
		CardNo:     cardNo,
		Month:      month,
		Year:       year,
		NewBalance: decimal.Zero,
	}
	if len(monthRows) == 0 {
		// Documented zero-activity case: balance is $0.00, everything
		// else stays blank.
		return st, nil
	}

	balance := decimal.Zero
	for _, r := range monthRows {
		balance = balance.Add(r.Value)
	}

	st.HasActivity = true
	st.NewBalance = balance.Round(2)
	st.MinimumDue = MinimumPayment
	st.DueDate = nextStatementMonth(year, month)
	st.StatementDate = NewDate(year, month, 1)
	st.RewardDollars = balance.Mul(rewardRate).Round(2)
	st.CreditLimit = CreditLimit
	st.AvailCredit = CreditLimit.Sub(balance).Round(2)

	first := monthRows[0]
	st.CustomerName = first.FirstName + " " + first.LastName
	st.Street = swapStreetUnit(first.StreetAddress)
	st.CityLine = fmt.Sprintf("%s, %s %s", first.City, first.State, first.Zip)
	st.BranchName = first.BranchName
	st.BranchStreet = first.BranchStreet
	st.BranchCityLine = fmt.Sprintf("%s, %s %s", first.BranchCity, first.BranchState, first.BranchZip)

	st.Lines = make([]StatementLine, len(monthRows))
	for i, r := range monthRows {
		st.Lines[i] = StatementLine{Date: r.Date, Type: r.Type, Value: r.Value}
	}
	sort.SliceStable(st.Lines, func(i, j int) bool {
		return st.Lines[i].Date.After(st.Lines[j].Date)
	})

	return st, nil
}

// nextStatementMonth is the first day of the month after the statement
// month, rolling December into January of the next year.
func nextStatementMonth(year, month int) time.Time {
	if month == 12 {
		return NewDate(year+1, 1, 1)
	}
	return NewDate(year, month+1, 1)
}

// swapStreetUnit reformats a stored "street,unit" address as "unit street"
// for the mailing block. Addresses without a comma pass through unchanged.
func swapStreetUnit(addr string) string {
	for i := 0; i < len(addr); i++ {
		if addr[i] == ',' {
			return addr[i+1:] + " " + addr[:i]
		}
	}
	return addr
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
