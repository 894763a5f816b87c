package engine

import "sort"

// PlanSettlement turns the final personal-account balances into a list
// of pairwise payments that zeroes them all out. Greedy heuristic:
// repeatedly match the largest-magnitude debtor with the
// largest-magnitude creditor (ties broken by ascending account id) and
// settle the smaller of the two amounts. Not proven minimal in
// general, but deterministic and bounded; each round fully settles at
// least one account.
//
// Clearing accounts never appear in a plan: their balances must
// already be resolved. If debtors and creditors do not empty together
// the input violated the zero-sum invariant and the planner reports
// ErrUnsettledRemainder instead of returning a truncated plan.
func PlanSettlement(accounts []Account, balances map[int64]float64) ([]SettlementPlanItem, error) {
	index, err := indexAccounts(accounts)
	if err != nil {
		return nil, err
	}

	type party struct {
		id    int64
		cents int64 // always positive; sign is carried by the list
	}
	var creditors, debtors []party
	for _, id := range sortedBalanceKeys(balances) {
		a, ok := index[id]
		if !ok || a.Type != AccountTypePersonal {
			continue
		}
		cents := toCents(balances[id])
		switch {
		case cents > 0:
			creditors = append(creditors, party{id: id, cents: cents})
		case cents < 0:
			debtors = append(debtors, party{id: id, cents: -cents})
		}
	}

	// largest remaining amount, ties toward the lowest id
	largest := func(parties []party) int {
		best := 0
		for i := 1; i < len(parties); i++ {
			if parties[i].cents > parties[best].cents {
				best = i
			}
		}
		return best
	}

	var plan []SettlementPlanItem
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)

		amount := creditors[ci].cents
		if debtors[di].cents < amount {
			amount = debtors[di].cents
		}
		plan = append(plan, SettlementPlanItem{
			CreditorID: creditors[ci].id,
			DebitorID:  debtors[di].id,
			Amount:     fromCents(amount),
		})

		creditors[ci].cents -= amount
		debtors[di].cents -= amount
		if creditors[ci].cents == 0 {
			creditors = append(creditors[:ci], creditors[ci+1:]...)
		}
		if debtors[di].cents == 0 {
			debtors = append(debtors[:di], debtors[di+1:]...)
		}
	}

	if len(creditors) != 0 || len(debtors) != 0 {
		var leftover int64
		for _, p := range creditors {
			leftover += p.cents
		}
		for _, p := range debtors {
			leftover -= p.cents
		}
		return nil, wrapRemainderErr(leftover)
	}
	return plan, nil
}

func sortedBalanceKeys(balances map[int64]float64) []int64 {
	keys := make([]int64, 0, len(balances))
	for id := range balances {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
