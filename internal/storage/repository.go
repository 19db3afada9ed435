package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jonlam1989/Capstone/internal/core"

	_ "modernc.org/sqlite"
)

// timeID is the packed YYYYMMDD date format the cleaned dataset uses for
// transaction dates.
const timeID = "20060102"

// SQLiteRepository is the backing source for the three relations. It is the
// only component that talks to the database; everything downstream works on
// the in-memory dataset.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadCustomers reads the whole customer relation. Failures wrap
// core.ErrDataUnavailable so callers can fall back to an empty dataset
// instead of crashing.
func (r *SQLiteRepository) LoadCustomers(ctx context.Context) ([]core.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ssn, first_name, middle_name, last_name, credit_card_no,
		       full_street_address, cust_city, cust_state, cust_country,
		       cust_zip, cust_phone, cust_email, last_updated
		FROM cdw_sapp_customer
		ORDER BY ssn`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w: %w", core.ErrDataUnavailable, err)
	}
	defer rows.Close()

	var customers []core.Customer
	for rows.Next() {
		var c core.Customer
		var lastUpdated string
		if err := rows.Scan(&c.SSN, &c.FirstName, &c.MiddleName, &c.LastName,
			&c.CreditCardNo, &c.StreetAddress, &c.City, &c.State, &c.Country,
			&c.Zip, &c.Phone, &c.Email, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scan customer: %w: %w", core.ErrDataUnavailable, err)
		}
		c.LastUpdated = parseTimestamp(lastUpdated)
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read customers: %w: %w", core.ErrDataUnavailable, err)
	}

	slog.DebugContext(ctx, "Customers loaded", "count", len(customers))
	return customers, nil
}

// LoadTransactions reads the whole credit-card transaction relation.
func (r *SQLiteRepository) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT transaction_id, cust_cc_no, timeid, cust_ssn, branch_code,
		       transaction_type, transaction_value
		FROM cdw_sapp_credit_card
		ORDER BY transaction_id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w: %w", core.ErrDataUnavailable, err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var dateStr, valueStr string
		if err := rows.Scan(&t.ID, &t.CardNo, &dateStr, &t.CustSSN,
			&t.BranchCode, &t.Type, &valueStr); err != nil {
			return nil, fmt.Errorf("scan transaction: %w: %w", core.ErrDataUnavailable, err)
		}
		t.Date, err = time.ParseInLocation(timeID, dateStr, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("parse timeid %q: %w: %w", dateStr, core.ErrDataUnavailable, err)
		}
		t.Value, err = decimal.NewFromString(valueStr)
		if err != nil {
			return nil, fmt.Errorf("parse transaction value %q: %w: %w", valueStr, core.ErrDataUnavailable, err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read transactions: %w: %w", core.ErrDataUnavailable, err)
	}

	slog.DebugContext(ctx, "Transactions loaded", "count", len(txns))
	return txns, nil
}

// LoadBranches reads the whole branch relation.
func (r *SQLiteRepository) LoadBranches(ctx context.Context) ([]core.Branch, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT branch_code, branch_name, branch_street, branch_city,
		       branch_state, branch_zip, branch_phone, last_updated
		FROM cdw_sapp_branch
		ORDER BY branch_code`)
	if err != nil {
		return nil, fmt.Errorf("query branches: %w: %w", core.ErrDataUnavailable, err)
	}
	defer rows.Close()

	var branches []core.Branch
	for rows.Next() {
		var b core.Branch
		var lastUpdated string
		if err := rows.Scan(&b.Code, &b.Name, &b.Street, &b.City,
			&b.State, &b.Zip, &b.Phone, &lastUpdated); err != nil {
			return nil, fmt.Errorf("scan branch: %w: %w", core.ErrDataUnavailable, err)
		}
		b.LastUpdated = parseTimestamp(lastUpdated)
		branches = append(branches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read branches: %w: %w", core.ErrDataUnavailable, err)
	}

	slog.DebugContext(ctx, "Branches loaded", "count", len(branches))
	return branches, nil
}

// UpdateCustomer writes the eleven editable profile fields of the row
// matching ssn in a single statement and returns the number of rows
// affected. Zero means the identity key was not found; the caller decides
// whether that is an error.
func (r *SQLiteRepository) UpdateCustomer(ctx context.Context, ssn string, edit core.CustomerEdit) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cdw_sapp_customer
		SET first_name = ?, middle_name = ?, last_name = ?, credit_card_no = ?,
		    full_street_address = ?, cust_city = ?, cust_state = ?,
		    cust_country = ?, cust_zip = ?, cust_phone = ?, cust_email = ?,
		    last_updated = ?
		WHERE ssn = ?`,
		edit.FirstName, edit.MiddleName, edit.LastName, edit.CreditCardNo,
		edit.StreetAddress, edit.City, edit.State, edit.Country,
		edit.Zip, edit.Phone, edit.Email,
		time.Now().UTC().Format(time.RFC3339), ssn)
	if err != nil {
		return 0, fmt.Errorf("update customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}

	slog.InfoContext(ctx, "Customer updated", "rows_affected", affected)
	return affected, nil
}

// parseTimestamp tolerates the two timestamp layouts found in the cleaned
// dataset; anything unparseable becomes the zero time rather than a load
// failure, since last_updated is informational.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
