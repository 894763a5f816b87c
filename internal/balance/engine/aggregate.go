package engine

import "sort"

// Aggregate is the full pipeline: per-transaction resolution, balance
// accumulation, clearing resolution, and history replay. It is the
// entry point callers re-run whenever their snapshot changes; results
// are not additive across partial updates because clearing resolution
// is global.
func Aggregate(accounts []Account, transactions []Transaction) (*Result, error) {
	index, err := indexAccounts(accounts)
	if err != nil {
		return nil, err
	}

	balances, contributions, err := computeBalancesCents(index, transactions)
	if err != nil {
		return nil, err
	}

	resolutions, err := resolveClearingCents(index, balances)
	if err != nil {
		return nil, err
	}

	for id, split := range resolutions {
		at := index[id].LastChanged
		var poolCents int64
		for _, target := range sortedResolutionKeys(split) {
			cents := split[target]
			poolCents += cents
			contributions = append(contributions, contribution{
				accountID: target,
				origin:    Origin{Type: OriginClearing, ID: id},
				at:        at,
				cents:     cents,
			})
		}
		// matching negative entry so the clearing account's own
		// history closes at zero
		if poolCents != 0 {
			contributions = append(contributions, contribution{
				accountID: id,
				origin:    Origin{Type: OriginClearing, ID: id},
				at:        at,
				cents:     -poolCents,
			})
		}
	}

	result := &Result{
		Balances: make(map[int64]Balance, len(balances)),
		History:  buildHistory(contributions),
	}
	for id, b := range balances {
		balance := Balance{
			Balance:       fromCents(b.balanceCents),
			TotalPaid:     fromCents(b.paidCents),
			TotalConsumed: fromCents(b.consumedCents),
		}
		if split, ok := resolutions[id]; ok {
			resolution := make(map[int64]float64, len(split))
			for target, cents := range split {
				resolution[target] = fromCents(cents)
			}
			balance.ClearingResolution = resolution
		}
		result.Balances[id] = balance
	}
	return result, nil
}

// buildHistory orders each account's contributions by timestamp, ties
// broken by origin id ascending (transactions before clearing entries
// on a full tie), and folds them into entries with a running balance.
func buildHistory(contributions []contribution) map[int64][]HistoryEntry {
	perAccount := make(map[int64][]contribution)
	for _, c := range contributions {
		perAccount[c.accountID] = append(perAccount[c.accountID], c)
	}

	history := make(map[int64][]HistoryEntry, len(perAccount))
	for id, list := range perAccount {
		sort.SliceStable(list, func(i, j int) bool {
			if !list[i].at.Equal(list[j].at) {
				return list[i].at.Before(list[j].at)
			}
			if list[i].origin.ID != list[j].origin.ID {
				return list[i].origin.ID < list[j].origin.ID
			}
			return list[i].origin.Type == OriginTransaction && list[j].origin.Type == OriginClearing
		})

		entries := make([]HistoryEntry, len(list))
		var runningCents int64
		for i, c := range list {
			runningCents += c.cents
			entries[i] = HistoryEntry{
				Time:    c.at,
				Change:  fromCents(c.cents),
				Balance: fromCents(runningCents),
				Origin:  c.origin,
			}
		}
		history[id] = entries
	}
	return history
}

func sortedResolutionKeys(split map[int64]int64) []int64 {
	keys := make([]int64, 0, len(split))
	for id := range split {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
