package core

import (
	"sort"
	"strings"
	"time"
)

// Predicates is a set of optional filter conditions over a joined view.
// A nil field matches every row. Predicates on the same set are combined
// with logical AND.
type Predicates struct {
	Zip    *string
	First  *string // case-insensitive
	Middle *string // case-insensitive
	Last   *string // case-insensitive
	CardNo *string
	Type   *string
	State  *string
	Month  *int
	Year   *int
	Start  *time.Time // inclusive
	End    *time.Time // inclusive
}

// IsEmpty reports whether no predicate is set.
func (p Predicates) IsEmpty() bool {
	return p.Zip == nil && p.First == nil && p.Middle == nil && p.Last == nil &&
		p.CardNo == nil && p.Type == nil && p.State == nil &&
		p.Month == nil && p.Year == nil && p.Start == nil && p.End == nil
}

// Filter returns the rows of view matching every set predicate.
//
// Month and Year are evaluated as independent boolean masks over the same
// row slice and combined element-wise, so month+year means "that calendar
// month of that calendar year".
//
// With no predicates set the view is returned as-is in insertion order.
// Any active predicate sorts the result by date descending, matching how
// every page of the dashboard orders filtered rows. No match yields an
// empty, non-nil slice.
func Filter(view []JoinedRow, p Predicates) []JoinedRow {
	if p.IsEmpty() {
		return view
	}

	mask := make([]bool, len(view))
	for i := range mask {
		mask[i] = true
	}

	for i, r := range view {
		switch {
		case p.Zip != nil && r.Zip != *p.Zip:
		case p.First != nil && !strings.EqualFold(r.FirstName, *p.First):
		case p.Middle != nil && !strings.EqualFold(r.MiddleName, *p.Middle):
		case p.Last != nil && !strings.EqualFold(r.LastName, *p.Last):
		case p.CardNo != nil && r.CardNo != *p.CardNo:
		case p.Type != nil && r.Type != *p.Type:
		case p.State != nil && r.State != *p.State:
		case p.Start != nil && r.Date.Before(*p.Start):
		case p.End != nil && r.Date.After(*p.End):
		default:
			continue
		}
		mask[i] = false
	}

	// Month and year masks are index-aligned with the view, so combining
	// them is a plain element-wise AND.
	if p.Month != nil {
		for i, r := range view {
			mask[i] = mask[i] && int(r.Date.Month()) == *p.Month
		}
	}
	if p.Year != nil {
		for i, r := range view {
			mask[i] = mask[i] && r.Date.Year() == *p.Year
		}
	}

	matched := make([]JoinedRow, 0)
	for i, ok := range mask {
		if ok {
			matched = append(matched, view[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})
	return matched
}
