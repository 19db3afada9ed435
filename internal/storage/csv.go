package storage

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jonlam1989/Capstone/internal/core"
)

// ImportResult summarizes one CSV load.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportCustomersCSV loads the cleaned customer export into the customer
// table. The whole file goes in one transaction; individual malformed rows
// are skipped and counted, a missing required column aborts the import.
func (r *SQLiteRepository) ImportCustomersCSV(ctx context.Context, path string) (ImportResult, error) {
	return r.importCSV(ctx, path, []string{
		"SSN", "FIRST_NAME", "MIDDLE_NAME", "LAST_NAME", "CREDIT_CARD_NO",
		"FULL_STREET_ADDRESS", "CUST_CITY", "CUST_STATE", "CUST_COUNTRY",
		"CUST_ZIP", "CUST_PHONE", "CUST_EMAIL", "LAST_UPDATED",
	}, `INSERT OR REPLACE INTO cdw_sapp_customer
		(ssn, first_name, middle_name, last_name, credit_card_no,
		 full_street_address, cust_city, cust_state, cust_country,
		 cust_zip, cust_phone, cust_email, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		func(rec []string) ([]any, error) {
			if rec[0] == "" {
				return nil, fmt.Errorf("empty ssn")
			}
			return []any{rec[0], rec[1], rec[2], rec[3], rec[4], rec[5],
				rec[6], rec[7], rec[8], rec[9], rec[10], rec[11], rec[12]}, nil
		})
}

// ImportTransactionsCSV loads the cleaned credit-card export.
func (r *SQLiteRepository) ImportTransactionsCSV(ctx context.Context, path string) (ImportResult, error) {
	return r.importCSV(ctx, path, []string{
		"CUST_CC_NO", "TIMEID", "CUST_SSN", "BRANCH_CODE",
		"TRANSACTION_TYPE", "TRANSACTION_VALUE", "TRANSACTION_ID",
	}, `INSERT OR REPLACE INTO cdw_sapp_credit_card
		(transaction_id, cust_cc_no, timeid, cust_ssn, branch_code,
		 transaction_type, transaction_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		func(rec []string) ([]any, error) {
			id, err := strconv.ParseInt(rec[6], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("transaction_id %q: %w", rec[6], err)
			}
			branch, err := strconv.ParseInt(rec[3], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("branch_code %q: %w", rec[3], err)
			}
			if _, err := time.ParseInLocation(timeID, rec[1], time.UTC); err != nil {
				return nil, fmt.Errorf("timeid %q: %w", rec[1], err)
			}
			value, err := decimal.NewFromString(rec[5])
			if err != nil {
				return nil, fmt.Errorf("transaction_value %q: %w", rec[5], err)
			}
			return []any{id, rec[0], rec[1], rec[2], branch, rec[4], value.String()}, nil
		})
}

// ImportBranchesCSV loads the cleaned branch export.
func (r *SQLiteRepository) ImportBranchesCSV(ctx context.Context, path string) (ImportResult, error) {
	return r.importCSV(ctx, path, []string{
		"BRANCH_CODE", "BRANCH_NAME", "BRANCH_STREET", "BRANCH_CITY",
		"BRANCH_STATE", "BRANCH_ZIP", "BRANCH_PHONE", "LAST_UPDATED",
	}, `INSERT OR REPLACE INTO cdw_sapp_branch
		(branch_code, branch_name, branch_street, branch_city,
		 branch_state, branch_zip, branch_phone, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		func(rec []string) ([]any, error) {
			code, err := strconv.ParseInt(rec[0], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("branch_code %q: %w", rec[0], err)
			}
			return []any{code, rec[1], rec[2], rec[3], rec[4], rec[5], rec[6], rec[7]}, nil
		})
}

// importCSV drives one file: header check, per-row conversion, one insert
// statement reused inside a single transaction.
func (r *SQLiteRepository) importCSV(ctx context.Context, path string, columns []string,
	insert string, convert func([]string) ([]any, error)) (ImportResult, error) {

	var res ImportResult

	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("open %s: %w: %w", path, core.ErrDataUnavailable, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return res, fmt.Errorf("read header of %s: %w: %w", path, core.ErrDataUnavailable, err)
	}

	index, err := columnIndex(header, columns)
	if err != nil {
		return res, fmt.Errorf("%s: %w: %w", path, core.ErrDataUnavailable, err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return res, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	line := 1
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable CSV row", "file", path, "line", line, "error", err)
			res.Skipped++
			continue
		}

		ordered := make([]string, len(columns))
		for i, col := range columns {
			ordered[i] = strings.TrimSpace(rec[index[col]])
		}

		args, err := convert(ordered)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed CSV row", "file", path, "line", line, "error", err)
			res.Skipped++
			continue
		}

		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return res, fmt.Errorf("insert row (line %d): %w", line, err)
		}
		res.Imported++
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "CSV import finished", "file", path,
		"imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

// columnIndex maps required column names to their position in the header.
func columnIndex(header, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing column %s", col)
		}
	}
	return index, nil
}
