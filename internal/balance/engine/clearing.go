package engine

import "sort"

// Clearing accounts may allocate to other clearing accounts, so the
// resolver builds an explicit dependency graph and processes it in
// topological order: an account distributes its pool before any
// account it allocates to is resolved. Cycles have no well-defined
// fixpoint and are rejected up front instead of recursed into.

type resolveState int

const (
	stateUnresolved resolveState = iota
	stateResolving
	stateResolved
)

// clearingOrder returns the clearing account ids in processing order,
// or ErrClearingCycle. Iteration over ids and share targets is sorted
// so the order (and therefore every downstream result) is
// deterministic.
func clearingOrder(index map[int64]*Account) ([]int64, error) {
	var clearingIDs []int64
	for id, a := range index {
		if a.Type == AccountTypeClearing {
			clearingIDs = append(clearingIDs, id)
		}
	}
	sort.Slice(clearingIDs, func(i, j int) bool { return clearingIDs[i] < clearingIDs[j] })

	states := make(map[int64]resolveState, len(clearingIDs))
	// postorder: an account is appended after every clearing account
	// it allocates to, so the reversed list resolves sources first
	postorder := make([]int64, 0, len(clearingIDs))

	var visit func(id int64) error
	visit = func(id int64) error {
		switch states[id] {
		case stateResolving:
			return wrapAccountErr(id, ErrClearingCycle)
		case stateResolved:
			return nil
		}
		states[id] = stateResolving

		targets := sortedShareKeys(index[id].ClearingShares)
		for _, target := range targets {
			if t := index[target]; t.Type == AccountTypeClearing {
				if err := visit(target); err != nil {
					return err
				}
			}
		}

		states[id] = stateResolved
		postorder = append(postorder, id)
		return nil
	}

	for _, id := range clearingIDs {
		if err := visit(id); err != nil {
			return nil, err
		}
	}

	order := make([]int64, len(postorder))
	for i, id := range postorder {
		order[len(postorder)-1-i] = id
	}
	return order, nil
}

// resolveClearingCents pushes every clearing account's accrued balance
// into its participants, transitively, and returns the per-clearing
// resolution amounts. After it runs, only personal accounts carry a
// non-zero balance. Deleted accounts are not skipped: a historical
// balance still needs distributing; keeping deleted accounts out of
// new shares is the caller's input-filtering concern.
func resolveClearingCents(index map[int64]*Account, balances map[int64]*accountBalanceCents) (map[int64]map[int64]int64, error) {
	order, err := clearingOrder(index)
	if err != nil {
		return nil, err
	}

	resolutions := make(map[int64]map[int64]int64, len(order))
	for _, id := range order {
		b := balances[id]
		if b == nil || b.balanceCents == 0 {
			resolutions[id] = map[int64]int64{}
			continue
		}

		split := allocateCents(b.balanceCents, index[id].ClearingShares)
		if len(split) == 0 {
			return nil, wrapAccountErr(id, ErrUndistributableClearing)
		}
		for target, cents := range split {
			tb, ok := balances[target]
			if !ok {
				tb = &accountBalanceCents{}
				balances[target] = tb
			}
			tb.balanceCents += cents
		}
		resolutions[id] = split
		b.balanceCents = 0
	}
	return resolutions, nil
}

// ResolveClearing distributes every clearing account's balance to its
// participants in dependency order. It returns the updated balance map
// and, per clearing account, the amount that flowed to each target.
func ResolveClearing(accounts []Account, balances map[int64]float64) (map[int64]float64, map[int64]map[int64]float64, error) {
	index, err := indexAccounts(accounts)
	if err != nil {
		return nil, nil, err
	}

	cents := make(map[int64]*accountBalanceCents, len(balances))
	for id, v := range balances {
		cents[id] = &accountBalanceCents{balanceCents: toCents(v)}
	}

	resolutionCents, err := resolveClearingCents(index, cents)
	if err != nil {
		return nil, nil, err
	}

	resolved := make(map[int64]float64, len(cents))
	for id, b := range cents {
		resolved[id] = fromCents(b.balanceCents)
	}
	resolutions := make(map[int64]map[int64]float64, len(resolutionCents))
	for id, split := range resolutionCents {
		r := make(map[int64]float64, len(split))
		for target, c := range split {
			r[target] = fromCents(c)
		}
		resolutions[id] = r
	}
	return resolved, resolutions, nil
}

func sortedShareKeys(shares map[int64]float64) []int64 {
	keys := make([]int64, 0, len(shares))
	for id := range shares {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
