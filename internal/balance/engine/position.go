package engine

// communistBucket is the pseudo-account that collects each position's
// unclaimed (communist) share during allocation. Real account ids are
// positive, so it can never collide.
const communistBucket int64 = -1

// transactionShare is one transaction's effect on one account, in
// cents. totalCents = commonCreditors - (commonDebitors + positions).
type transactionShare struct {
	totalCents           int64
	positionsCents       int64
	commonDebitorsCents  int64
	commonCreditorsCents int64
}

// resolveTransaction computes every touched account's contribution for
// a single transaction:
//
//   - each live position's price is split across its usages plus the
//     communist bucket; per-account shares accumulate on the positions
//     side, the bucket's share joins the undistributed remainder
//   - the transaction value minus the total position value, plus that
//     remainder, is split across the debitor shares (consumption)
//   - the full transaction value is split across the creditor shares
//     (payment)
func resolveTransaction(tx Transaction) (map[int64]*transactionShare, error) {
	if err := validateWeights(tx.CreditorShares); err != nil {
		return nil, wrapTransactionErr(tx.ID, err)
	}
	if err := validateWeights(tx.DebitorShares); err != nil {
		return nil, wrapTransactionErr(tx.ID, err)
	}

	shares := make(map[int64]*transactionShare)
	get := func(id int64) *transactionShare {
		s, ok := shares[id]
		if !ok {
			s = &transactionShare{}
			shares[id] = s
		}
		return s
	}

	valueCents := toCents(tx.Value)
	var positionCents, unclaimedCents int64
	for _, p := range tx.Positions {
		if p.Deleted {
			continue
		}
		if tx.Type == TransactionTypeTransfer {
			return nil, wrapTransactionErr(tx.ID, ErrTransferWithPositions)
		}
		if err := validateWeights(p.Usages); err != nil {
			return nil, wrapTransactionErr(tx.ID, err)
		}
		if p.CommunistShares < 0 {
			return nil, wrapTransactionErr(tx.ID, ErrNegativeWeight)
		}
		// a price nobody claims would be subtracted from the debitor
		// pool without being consumed anywhere, breaking the closed
		// system
		if !hasPositiveWeight(p.Usages) && p.CommunistShares == 0 {
			return nil, wrapTransactionErr(tx.ID, ErrUnclaimedPosition)
		}

		priceCents := toCents(p.Price)
		positionCents += priceCents
		for id, c := range allocateCents(priceCents, positionUsages(p)) {
			if id == communistBucket {
				unclaimedCents += c
				continue
			}
			get(id).positionsCents += c
		}
	}

	if positionCents > valueCents {
		return nil, wrapTransactionErr(tx.ID, ErrPositionsExceedValue)
	}

	if valueCents != 0 && !hasPositiveWeight(tx.CreditorShares) {
		return nil, wrapTransactionErr(tx.ID, ErrNoCreditors)
	}
	debitorPoolCents := valueCents - positionCents + unclaimedCents
	if debitorPoolCents != 0 && !hasPositiveWeight(tx.DebitorShares) {
		return nil, wrapTransactionErr(tx.ID, ErrNoDebitors)
	}

	for id, c := range allocateCents(debitorPoolCents, tx.DebitorShares) {
		get(id).commonDebitorsCents += c
	}
	for id, c := range allocateCents(valueCents, tx.CreditorShares) {
		get(id).commonCreditorsCents += c
	}

	for _, s := range shares {
		s.totalCents = s.commonCreditorsCents - (s.commonDebitorsCents + s.positionsCents)
	}
	return shares, nil
}

// positionUsages combines a position's per-account usages with the
// implicit communist bucket. The input map is copied, never mutated.
func positionUsages(p Position) map[int64]float64 {
	combined := make(map[int64]float64, len(p.Usages)+1)
	for id, w := range p.Usages {
		combined[id] = w
	}
	if p.CommunistShares > 0 {
		combined[communistBucket] = p.CommunistShares
	}
	return combined
}

func hasPositiveWeight(shares map[int64]float64) bool {
	for _, w := range shares {
		if w > 0 {
			return true
		}
	}
	return false
}
