package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Customer is one row of the customer relation. SSN is the identity key;
	// it never appears in a joined view or in anything rendered to a user.
	Customer struct {
		SSN           string
		FirstName     string
		MiddleName    string
		LastName      string
		CreditCardNo  string
		StreetAddress string // comma-delimited "street,unit"
		City          string
		State         string
		Country       string
		Zip           string
		Phone         string
		Email         string
		LastUpdated   time.Time
	}

	// Transaction is one row of the credit-card transaction relation.
	// Date carries no time-of-day component.
	Transaction struct {
		ID         int64
		CardNo     string
		Date       time.Time
		CustSSN    string
		BranchCode int64
		Type       string
		Value      decimal.Decimal
	}

	// Branch is one row of the branch relation.
	Branch struct {
		Code        int64
		Name        string
		Street      string
		City        string
		State       string
		Zip         string
		Phone       string
		LastUpdated time.Time
	}

	// JoinedRow is a denormalized Transaction⋈Customer row, optionally
	// widened with branch fields. The customer identity key is dropped
	// during the join and never stored here. Where the two relations share
	// a concept (state, zip) the customer-side value wins.
	JoinedRow struct {
		TransactionID int64
		CardNo        string
		Date          time.Time
		Type          string
		Value         decimal.Decimal
		BranchCode    int64

		FirstName     string
		MiddleName    string
		LastName      string
		StreetAddress string
		City          string
		State         string
		Country       string
		Zip           string

		// Branch fields, populated only by JoinBranches.
		BranchName   string
		BranchStreet string
		BranchCity   string
		BranchState  string
		BranchZip    string
	}

	// CustomerEdit carries the eleven editable profile fields of a customer
	// record. All fields are written together; the identity key is not
	// editable.
	CustomerEdit struct {
		FirstName     string
		MiddleName    string
		LastName      string
		CreditCardNo  string
		StreetAddress string
		City          string
		State         string
		Country       string
		Zip           string
		Phone         string
		Email         string
	}
)

var (
	// ErrDataUnavailable means the backing source is unreachable or
	// malformed. Callers surface empty data, not a crash.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrNotFound means no entity matched a lookup key.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput means a user-supplied identifier is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidation means an edit submission is malformed.
	ErrValidation = errors.New("validation failed")
)

// Validate checks that every editable field is non-empty. An empty field
// would silently blank a stored profile value, so empties are rejected.
func (e CustomerEdit) Validate() error {
	fields := []struct {
		name, value string
	}{
		{"first name", e.FirstName},
		{"middle name", e.MiddleName},
		{"last name", e.LastName},
		{"credit card", e.CreditCardNo},
		{"street address", e.StreetAddress},
		{"city", e.City},
		{"state", e.State},
		{"country", e.Country},
		{"zip", e.Zip},
		{"phone", e.Phone},
		{"email", e.Email},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return errors.Join(ErrValidation, errors.New("empty "+f.name))
		}
	}
	return nil
}

// IsEmpty reports whether no field was submitted at all. The edit form
// posts nothing until the user presses submit; an all-empty edit is a
// no-op rather than a validation failure.
func (e CustomerEdit) IsEmpty() bool {
	return e == CustomerEdit{}
}

// FullName is the display name used on statements and search results.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// NewDate builds a date-only time.Time in UTC, the canonical form for
// transaction dates.
func NewDate(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}
