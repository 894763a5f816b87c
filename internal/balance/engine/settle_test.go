package engine

import (
	"errors"
	"testing"
)

func TestPlanSettlementTwoAccounts(t *testing.T) {
	accounts := []Account{personal(1), personal(2)}
	plan, err := PlanSettlement(accounts, map[int64]float64{1: 5.00, 2: -5.00})
	if err != nil {
		t.Fatalf("PlanSettlement: %v", err)
	}

	want := []SettlementPlanItem{{CreditorID: 1, DebitorID: 2, Amount: 5.00}}
	assertPlan(t, plan, want)
}

func TestPlanSettlementGreedyMatching(t *testing.T) {
	accounts := []Account{personal(1), personal(2), personal(3)}
	plan, err := PlanSettlement(accounts, map[int64]float64{1: 7.00, 2: 3.00, 3: -10.00})
	if err != nil {
		t.Fatalf("PlanSettlement: %v", err)
	}

	// largest debtor (3) meets largest creditor (1) first
	want := []SettlementPlanItem{
		{CreditorID: 1, DebitorID: 3, Amount: 7.00},
		{CreditorID: 2, DebitorID: 3, Amount: 3.00},
	}
	assertPlan(t, plan, want)
}

func TestPlanSettlementTieBreak(t *testing.T) {
	accounts := []Account{personal(1), personal(2), personal(3)}
	plan, err := PlanSettlement(accounts, map[int64]float64{1: 5.00, 2: 5.00, 3: -10.00})
	if err != nil {
		t.Fatalf("PlanSettlement: %v", err)
	}

	// equal creditors: the lower account id goes first
	want := []SettlementPlanItem{
		{CreditorID: 1, DebitorID: 3, Amount: 5.00},
		{CreditorID: 2, DebitorID: 3, Amount: 5.00},
	}
	assertPlan(t, plan, want)
}

func TestPlanSettlementAppliedPlanZeroesBalances(t *testing.T) {
	accounts := []Account{personal(1), personal(2), personal(3), personal(4)}
	balances := map[int64]float64{1: 12.34, 2: -0.01, 3: -12.32, 4: -0.01}

	plan, err := PlanSettlement(accounts, balances)
	if err != nil {
		t.Fatalf("PlanSettlement: %v", err)
	}

	remaining := make(map[int64]int64, len(balances))
	for id, v := range balances {
		remaining[id] = centsOf(v)
	}
	for _, item := range plan {
		remaining[item.CreditorID] -= centsOf(item.Amount)
		remaining[item.DebitorID] += centsOf(item.Amount)
	}
	for id, cents := range remaining {
		if cents != 0 {
			t.Errorf("account %d: %d cents left after applying the plan", id, cents)
		}
	}
}

func TestPlanSettlementIdempotentOnSettled(t *testing.T) {
	accounts := []Account{personal(1), personal(2)}
	plan, err := PlanSettlement(accounts, map[int64]float64{1: 0, 2: 0})
	if err != nil {
		t.Fatalf("PlanSettlement: %v", err)
	}
	if len(plan) != 0 {
		t.Errorf("got %v, want empty plan for settled balances", plan)
	}
}

func TestPlanSettlementIgnoresClearingAccounts(t *testing.T) {
	accounts := []Account{
		personal(1),
		personal(2),
		clearing(10, map[int64]float64{1: 1}),
	}
	// the clearing balance must not show up as a settlement party
	plan, err := PlanSettlement(accounts, map[int64]float64{1: 3.00, 2: -3.00, 10: 0})
	if err != nil {
		t.Fatalf("PlanSettlement: %v", err)
	}
	for _, item := range plan {
		if item.CreditorID == 10 || item.DebitorID == 10 {
			t.Errorf("clearing account in plan: %+v", item)
		}
	}
}

func TestPlanSettlementUnbalancedInput(t *testing.T) {
	accounts := []Account{personal(1), personal(2)}
	_, err := PlanSettlement(accounts, map[int64]float64{1: 5.00, 2: -4.00})
	if !errors.Is(err, ErrUnsettledRemainder) {
		t.Errorf("got %v, want ErrUnsettledRemainder", err)
	}
	if !errors.Is(err, ErrConsistency) {
		t.Errorf("got %v, want a consistency error", err)
	}
	if errors.Is(err, ErrValidation) {
		t.Error("consistency error must not read as a validation error")
	}
}

func assertPlan(t *testing.T, got, want []SettlementPlanItem) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d plan items %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}
