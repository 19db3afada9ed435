package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jonlam1989/Capstone/internal/core"
)

const dateLayout = "2006-01-02"

type transactionRow struct {
	TransactionID int64  `json:"transaction_id"`
	CardNo        string `json:"card_no"`
	Date          string `json:"date"`
	Type          string `json:"type"`
	Value         string `json:"value"`
	BranchCode    int64  `json:"branch_code"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
}

func toRows(rows []core.JoinedRow) []transactionRow {
	out := make([]transactionRow, len(rows))
	for i, r := range rows {
		out[i] = transactionRow{
			TransactionID: r.TransactionID,
			CardNo:        r.CardNo,
			Date:          r.Date.Format(dateLayout),
			Type:          r.Type,
			Value:         r.Value.StringFixed(2),
			BranchCode:    r.BranchCode,
			FirstName:     r.FirstName,
			LastName:      r.LastName,
			City:          r.City,
			State:         r.State,
			Zip:           r.Zip,
		}
	}
	return out
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	var p core.Predicates
	if v := queryString(r, "zip"); v != nil {
		p.Zip = v
	}
	month, ok := queryInt(w, r, "month")
	if !ok {
		return
	}
	p.Month = month
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	p.Year = year

	rows := s.transactions.Search(r.Context(), p)
	writeJSON(w, http.StatusOK, map[string]any{
		"count": len(rows),
		"rows":  toRows(rows),
	})
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	opts := s.transactions.Options(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"zips":     opts.ZipCodes,
		"months":   opts.Months,
		"years":    opts.Years,
		"types":    opts.Types,
		"states":   opts.States,
		"min_date": opts.MinDate,
		"max_date": opts.MaxDate,
	})
}

func (s *Server) handleTypeSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	value := strings.TrimSpace(r.URL.Query().Get("value"))
	count, total := s.transactions.TypeSummary(r.Context(), value)
	writeJSON(w, http.StatusOK, map[string]any{
		"value": value,
		"count": count,
		"total": formatDollars(total),
	})
}

func (s *Server) handleStateSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	value := strings.TrimSpace(r.URL.Query().Get("value"))
	branches, total := s.transactions.StateSummary(r.Context(), value)
	writeJSON(w, http.StatusOK, map[string]any{
		"value":    value,
		"branches": branches,
		"total":    formatDollars(total),
	})
}

// customerProfile is the outward customer shape. The identity key stays
// server-side.
type customerProfile struct {
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name"`
	CreditCardNo  string `json:"credit_card_no"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	Zip           string `json:"zip"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	LastUpdated   string `json:"last_updated,omitempty"`
}

func toProfile(c core.Customer) customerProfile {
	p := customerProfile{
		FirstName:     c.FirstName,
		MiddleName:    c.MiddleName,
		LastName:      c.LastName,
		CreditCardNo:  c.CreditCardNo,
		StreetAddress: c.StreetAddress,
		City:          c.City,
		State:         c.State,
		Country:       c.Country,
		Zip:           c.Zip,
		Phone:         c.Phone,
		Email:         c.Email,
	}
	if !c.LastUpdated.IsZero() {
		p.LastUpdated = c.LastUpdated.Format(time.RFC3339)
	}
	return p
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	q := r.URL.Query()
	c, err := s.customers.Lookup(r.Context(), q.Get("first"), q.Get("middle"), q.Get("last"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	start, ok := queryDate(w, r, "start")
	if !ok {
		return
	}
	end, ok := queryDate(w, r, "end")
	if !ok {
		return
	}

	history := s.customers.History(r.Context(), c.SSN, start, end)
	writeJSON(w, http.StatusOK, map[string]any{
		"customer":     toProfile(c),
		"transactions": toRows(history),
	})
}

// editRequest re-identifies the customer by full name so the identity
// key never appears on the wire.
type editRequest struct {
	First  string `json:"first"`
	Middle string `json:"middle"`
	Last   string `json:"last"`
	Edit   struct {
		FirstName     string `json:"first_name"`
		MiddleName    string `json:"middle_name"`
		LastName      string `json:"last_name"`
		CreditCardNo  string `json:"credit_card_no"`
		StreetAddress string `json:"street_address"`
		City          string `json:"city"`
		State         string `json:"state"`
		Country       string `json:"country"`
		Zip           string `json:"zip"`
		Phone         string `json:"phone"`
		Email         string `json:"email"`
	} `json:"edit"`
}

func (s *Server) handleCustomerEdit(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.ErrorContext(r.Context(), "Edit request decode error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request body"})
		return
	}

	c, err := s.customers.Lookup(r.Context(), req.First, req.Middle, req.Last)
	if err != nil {
		writeError(w, r, err)
		return
	}

	edit := core.CustomerEdit{
		FirstName:     strings.TrimSpace(req.Edit.FirstName),
		MiddleName:    strings.TrimSpace(req.Edit.MiddleName),
		LastName:      strings.TrimSpace(req.Edit.LastName),
		CreditCardNo:  strings.TrimSpace(req.Edit.CreditCardNo),
		StreetAddress: strings.TrimSpace(req.Edit.StreetAddress),
		City:          strings.TrimSpace(req.Edit.City),
		State:         strings.TrimSpace(req.Edit.State),
		Country:       strings.TrimSpace(req.Edit.Country),
		Zip:           strings.TrimSpace(req.Edit.Zip),
		Phone:         strings.TrimSpace(req.Edit.Phone),
		Email:         strings.TrimSpace(req.Edit.Email),
	}
	if err := s.customers.ApplyEdit(r.Context(), c.SSN, edit); err != nil {
		writeError(w, r, err)
		return
	}

	status := "updated"
	if edit.IsEmpty() {
		status = "unchanged"
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

type statementLine struct {
	Date  string `json:"date"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	cardNo := strings.TrimSpace(r.URL.Query().Get("cc"))
	month, ok := queryInt(w, r, "month")
	if !ok {
		return
	}
	year, ok := queryInt(w, r, "year")
	if !ok {
		return
	}
	if month == nil || year == nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "month and year are required"})
		return
	}

	st, err := s.statements.Compute(r.Context(), cardNo, *month, *year)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := map[string]any{
		"card_no":     st.CardNo,
		"month":       st.Month,
		"year":        st.Year,
		"new_balance": formatDollars(st.NewBalance),

		"minimum_due":      "",
		"due_date":         "",
		"statement_date":   "",
		"reward_dollars":   "",
		"credit_limit":     "",
		"available_credit": "",
		"customer_name":    "",
		"street":           "",
		"city_line":        "",
		"branch_name":      "",
		"branch_street":    "",
		"branch_city_line": "",
		"lines":            []statementLine{},
	}
	if st.HasActivity {
		lines := make([]statementLine, len(st.Lines))
		for i, l := range st.Lines {
			lines[i] = statementLine{Date: l.Date.Format(dateLayout), Type: l.Type, Value: formatDollars(l.Value)}
		}
		resp["minimum_due"] = formatDollars(st.MinimumDue)
		resp["due_date"] = st.DueDate.Format(dateLayout)
		resp["statement_date"] = st.StatementDate.Format(dateLayout)
		resp["reward_dollars"] = formatDollars(st.RewardDollars)
		resp["credit_limit"] = formatDollars(st.CreditLimit)
		resp["available_credit"] = formatDollars(st.AvailCredit)
		resp["customer_name"] = st.CustomerName
		resp["street"] = st.Street
		resp["city_line"] = st.CityLine
		resp["branch_name"] = st.BranchName
		resp["branch_street"] = st.BranchStreet
		resp["branch_city_line"] = st.BranchCityLine
		resp["lines"] = lines
	}
	writeJSON(w, http.StatusOK, resp)
}

func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return false
	}
	return true
}

func queryString(r *http.Request, name string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil
	}
	return &v
}

// queryInt parses an optional integer query parameter, answering the
// request itself when the value is present but malformed.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": fmt.Sprintf("parameter %q must be a number", name),
		})
		return nil, false
	}
	return &n, true
}

func queryDate(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": fmt.Sprintf("parameter %q must be a YYYY-MM-DD date", name),
		})
		return nil, false
	}
	return &t, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Response encode error", "error", err)
	}
}

// writeError maps the error taxonomy onto status codes, always with a
// JSON body so the UI can render the message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrInvalidInput), errors.Is(err, core.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrDataUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
