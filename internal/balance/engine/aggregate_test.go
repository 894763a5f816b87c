package engine

import (
	"testing"
	"time"
)

func TestAggregateFullPipeline(t *testing.T) {
	// a purchase paid by account 1 is consumed entirely by the event
	// account, which then distributes evenly to both participants
	accounts := []Account{
		personal(1),
		personal(2),
		clearing(10, map[int64]float64{1: 1, 2: 1}),
	}
	transactions := []Transaction{
		purchase(1, 20.00, map[int64]float64{1: 1}, map[int64]float64{10: 1}),
	}

	result, err := Aggregate(accounts, transactions)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if b := result.Balances[1]; b.Balance != 10.00 {
		t.Errorf("account 1: got balance %v, want 10.00", b.Balance)
	}
	if b := result.Balances[2]; b.Balance != -10.00 {
		t.Errorf("account 2: got balance %v, want -10.00", b.Balance)
	}
	clearingBalance := result.Balances[10]
	if clearingBalance.Balance != 0 {
		t.Errorf("clearing account: got balance %v, want 0", clearingBalance.Balance)
	}
	if r := clearingBalance.ClearingResolution; r[1] != -10.00 || r[2] != -10.00 {
		t.Errorf("clearing resolution: got %v, want -10.00 to each participant", r)
	}

	var sum int64
	for id, b := range result.Balances {
		if accountByID(accounts, id).Type == AccountTypePersonal {
			sum += centsOf(b.Balance)
		}
	}
	if sum != 0 {
		t.Errorf("personal balances sum to %d cents, want 0", sum)
	}
}

func TestAggregateHistoryOrdering(t *testing.T) {
	accounts := []Account{personal(1), personal(2)}

	early := purchase(2, 10.00, map[int64]float64{1: 1}, map[int64]float64{2: 1})
	early.LastChanged = testTime
	late := purchase(1, 4.00, map[int64]float64{2: 1}, map[int64]float64{1: 1})
	late.LastChanged = testTime.Add(time.Hour)
	sameTime := purchase(3, 2.00, map[int64]float64{1: 1}, map[int64]float64{2: 1})
	sameTime.LastChanged = testTime

	result, err := Aggregate(accounts, []Transaction{late, sameTime, early})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	entries := result.History[1]
	if len(entries) != 3 {
		t.Fatalf("got %d history entries, want 3", len(entries))
	}

	// timestamp first, then origin id for the tie
	wantOrigins := []int64{2, 3, 1}
	wantBalances := []float64{10.00, 12.00, 8.00}
	for i, e := range entries {
		if e.Origin.ID != wantOrigins[i] {
			t.Errorf("entry %d: got origin %d, want %d", i, e.Origin.ID, wantOrigins[i])
		}
		if e.Balance != wantBalances[i] {
			t.Errorf("entry %d: got running balance %v, want %v", i, e.Balance, wantBalances[i])
		}
	}
}

func TestAggregateClearingHistoryCloses(t *testing.T) {
	accounts := []Account{
		personal(1),
		personal(2),
		clearing(10, map[int64]float64{2: 1}),
	}
	transactions := []Transaction{
		purchase(1, 12.00, map[int64]float64{1: 1}, map[int64]float64{10: 1}),
	}

	result, err := Aggregate(accounts, transactions)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	entries := result.History[10]
	if len(entries) == 0 {
		t.Fatal("clearing account has no history")
	}
	if final := entries[len(entries)-1]; final.Balance != 0 {
		t.Errorf("clearing history ends at %v, want 0", final.Balance)
	}

	// the participant sees the clearing contribution
	participant := result.History[2]
	var clearingEntry *HistoryEntry
	for i := range participant {
		if participant[i].Origin.Type == OriginClearing {
			clearingEntry = &participant[i]
		}
	}
	if clearingEntry == nil {
		t.Fatal("participant history has no clearing entry")
	}
	if clearingEntry.Origin.ID != 10 || clearingEntry.Change != -12.00 {
		t.Errorf("got %+v, want change -12.00 from clearing 10", clearingEntry)
	}
}

func accountByID(accounts []Account, id int64) *Account {
	for i := range accounts {
		if accounts[i].ID == id {
			return &accounts[i]
		}
	}
	return nil
}
