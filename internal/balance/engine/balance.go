package engine

import "time"

// accountBalanceCents is the cent-precision accumulator behind
// AccountBalance.
type accountBalanceCents struct {
	balanceCents  int64
	paidCents     int64
	consumedCents int64
}

// contribution is one raw history event: a transaction's or clearing
// resolution's effect on one account. Aggregate orders and folds these
// into HistoryEntry values.
type contribution struct {
	accountID int64
	origin    Origin
	at        time.Time
	cents     int64
}

// indexAccounts builds the id index and validates the account set:
// closed type tag (a legacy third kind exists in old data and must be
// rejected, not skipped), unique ids, non-negative clearing share
// weights on clearing accounts only, and share targets that exist.
func indexAccounts(accounts []Account) (map[int64]*Account, error) {
	index := make(map[int64]*Account, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		if a.Type != AccountTypePersonal && a.Type != AccountTypeClearing {
			return nil, wrapAccountErr(a.ID, ErrUnknownAccountType)
		}
		if _, ok := index[a.ID]; ok {
			return nil, wrapAccountErr(a.ID, ErrDuplicateAccount)
		}
		index[a.ID] = a
	}

	for _, a := range index {
		if len(a.ClearingShares) == 0 {
			continue
		}
		if a.Type == AccountTypePersonal {
			return nil, wrapAccountErr(a.ID, ErrClearingSharesOnPersonal)
		}
		if err := validateWeights(a.ClearingShares); err != nil {
			return nil, wrapAccountErr(a.ID, err)
		}
		for target := range a.ClearingShares {
			if _, ok := index[target]; !ok {
				return nil, wrapAccountErr(target, ErrUnknownAccount)
			}
		}
	}
	return index, nil
}

// validateTransactionAccounts rejects any share key, on either side or
// inside a live position, that does not resolve to a known account.
// Deleted accounts are fine here: historical transactions legitimately
// reference them.
func validateTransactionAccounts(tx Transaction, index map[int64]*Account) error {
	check := func(shares map[int64]float64) error {
		for id := range shares {
			if _, ok := index[id]; !ok {
				return wrapTransactionErr(tx.ID, wrapAccountErr(id, ErrUnknownAccount))
			}
		}
		return nil
	}
	if err := check(tx.CreditorShares); err != nil {
		return err
	}
	if err := check(tx.DebitorShares); err != nil {
		return err
	}
	for _, p := range tx.Positions {
		if p.Deleted {
			continue
		}
		if err := check(p.Usages); err != nil {
			return err
		}
	}
	return nil
}

// computeBalancesCents runs every live transaction through
// resolveTransaction and accumulates per-account paid/consumed totals.
// Every non-deleted account gets an entry even without transactions;
// deleted accounts appear once a transaction touches them.
func computeBalancesCents(index map[int64]*Account, transactions []Transaction) (map[int64]*accountBalanceCents, []contribution, error) {
	balances := make(map[int64]*accountBalanceCents, len(index))
	for id, a := range index {
		if !a.Deleted {
			balances[id] = &accountBalanceCents{}
		}
	}

	var contributions []contribution
	for _, tx := range transactions {
		if tx.Deleted {
			continue
		}
		if err := validateTransactionAccounts(tx, index); err != nil {
			return nil, nil, err
		}
		shares, err := resolveTransaction(tx)
		if err != nil {
			return nil, nil, err
		}
		for id, s := range shares {
			b, ok := balances[id]
			if !ok {
				b = &accountBalanceCents{}
				balances[id] = b
			}
			b.paidCents += s.commonCreditorsCents
			b.consumedCents += s.commonDebitorsCents + s.positionsCents
			if s.totalCents != 0 {
				contributions = append(contributions, contribution{
					accountID: id,
					origin:    Origin{Type: OriginTransaction, ID: tx.ID},
					at:        tx.LastChanged,
					cents:     s.totalCents,
				})
			}
		}
	}

	for _, b := range balances {
		b.balanceCents = b.paidCents - b.consumedCents
	}
	return balances, contributions, nil
}

// ComputeBalances aggregates the paid and consumed totals of every
// account across all live transactions, before clearing resolution.
func ComputeBalances(accounts []Account, transactions []Transaction) (map[int64]AccountBalance, error) {
	index, err := indexAccounts(accounts)
	if err != nil {
		return nil, err
	}
	cents, _, err := computeBalancesCents(index, transactions)
	if err != nil {
		return nil, err
	}

	balances := make(map[int64]AccountBalance, len(cents))
	for id, b := range cents {
		balances[id] = AccountBalance{
			Balance:       fromCents(b.balanceCents),
			TotalPaid:     fromCents(b.paidCents),
			TotalConsumed: fromCents(b.consumedCents),
		}
	}
	return balances, nil
}
