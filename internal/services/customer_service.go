package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonlam1989/Capstone/internal/amqp"
	"github.com/jonlam1989/Capstone/internal/core"
	"github.com/jonlam1989/Capstone/internal/dataset"
)

// CustomerService handles the customer-details flow: full-name lookup,
// date-ranged transaction history, and the profile edit gateway.
type CustomerService struct {
	store      *dataset.Store
	events     *amqp.Client
	statements *StatementService
}

// NewCustomerService wires the service. events may be nil (publishing
// disabled); statements may be nil (no cache to purge).
func NewCustomerService(store *dataset.Store, events *amqp.Client, statements *StatementService) *CustomerService {
	return &CustomerService{store: store, events: events, statements: statements}
}

// Lookup finds the customer matching all three name parts,
// case-insensitively. Missing name parts are ErrInvalidInput; the page
// searches only once every field is filled. No match is ErrNotFound,
// which the handler renders as the "no customer found" message.
//
// The returned Customer still carries the identity key; callers that
// serialize it outward must withhold it.
func (s *CustomerService) Lookup(ctx context.Context, first, middle, last string) (core.Customer, error) {
	if strings.TrimSpace(first) == "" || strings.TrimSpace(middle) == "" || strings.TrimSpace(last) == "" {
		return core.Customer{}, fmt.Errorf("full name required: %w", core.ErrInvalidInput)
	}

	for _, c := range s.store.Customers() {
		if strings.EqualFold(c.FirstName, first) &&
			strings.EqualFold(c.MiddleName, middle) &&
			strings.EqualFold(c.LastName, last) {
			return c, nil
		}
	}
	return core.Customer{}, fmt.Errorf("no customer found with this name: %w", core.ErrNotFound)
}

// History returns the customer's transactions, optionally bounded by an
// inclusive date range, newest first.
func (s *CustomerService) History(ctx context.Context, ssn string, start, end *time.Time) []core.JoinedRow {
	return core.Filter(s.store.CustomerView(ssn), core.Predicates{Start: start, End: end})
}

// ApplyEdit writes all eleven profile fields for the customer identified
// by ssn. An entirely empty edit is a no-op (the submit gate); a partially
// empty one is ErrValidation. On success the in-memory dataset already
// reflects the change, cached statements are purged, and a customer-update
// event is published best-effort.
func (s *CustomerService) ApplyEdit(ctx context.Context, ssn string, edit core.CustomerEdit) error {
	if edit.IsEmpty() {
		slog.DebugContext(ctx, "Empty edit submission ignored")
		return nil
	}
	if err := edit.Validate(); err != nil {
		return err
	}

	if err := s.store.UpdateCustomer(ctx, ssn, edit); err != nil {
		return err
	}

	if s.statements != nil {
		s.statements.Invalidate()
	}

	if s.events == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping customer update event")
		return nil
	}
	if err := s.events.PublishCustomerUpdate(ctx, ssn); err != nil {
		// The edit is already durable; losing the event is not worth
		// failing the request over.
		slog.ErrorContext(ctx, "Failed to publish customer update event", "error", err)
	}
	return nil
}
