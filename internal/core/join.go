package core

// JoinTransactionsCustomers inner-joins transactions with customers on the
// customer identity key. Transactions whose key resolves to no customer are
// silently dropped; the source guarantees referential integrity, so a miss
// is not an error. Input order of the transactions is preserved.
//
// The identity key itself is not copied into the result.
func JoinTransactionsCustomers(txns []Transaction, customers []Customer) []JoinedRow {
	bySSN := make(map[string]Customer, len(customers))
	for _, c := range customers {
		bySSN[c.SSN] = c
	}

	rows := make([]JoinedRow, 0, len(txns))
	for _, t := range txns {
		c, ok := bySSN[t.CustSSN]
		if !ok {
			continue
		}
		rows = append(rows, JoinedRow{
			TransactionID: t.ID,
			CardNo:        c.CreditCardNo,
			Date:          t.Date,
			Type:          t.Type,
			Value:         t.Value,
			BranchCode:    t.BranchCode,
			FirstName:     c.FirstName,
			MiddleName:    c.MiddleName,
			LastName:      c.LastName,
			StreetAddress: c.StreetAddress,
			City:          c.City,
			State:         c.State,
			Country:       c.Country,
			Zip:           c.Zip,
		})
	}
	return rows
}

// JoinBranches inner-joins already-joined rows with branches on branch code,
// widening each row with the branch fields. Rows whose branch code does not
// resolve are dropped, same policy as the customer join.
func JoinBranches(rows []JoinedRow, branches []Branch) []JoinedRow {
	byCode := make(map[int64]Branch, len(branches))
	for _, b := range branches {
		byCode[b.Code] = b
	}

	out := make([]JoinedRow, 0, len(rows))
	for _, r := range rows {
		b, ok := byCode[r.BranchCode]
		if !ok {
			continue
		}
		r.BranchName = b.Name
		r.BranchStreet = b.Street
		r.BranchCity = b.City
		r.BranchState = b.State
		r.BranchZip = b.Zip
		out = append(out, r)
	}
	return out
}
