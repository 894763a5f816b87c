package engine

import (
	"errors"
	"testing"
)

func TestResolveClearingSimple(t *testing.T) {
	accounts := []Account{
		personal(1),
		personal(2),
		clearing(10, map[int64]float64{1: 1, 2: 1}),
	}
	balances := map[int64]float64{1: 0, 2: 0, 10: 20.00}

	resolved, resolutions, err := ResolveClearing(accounts, balances)
	if err != nil {
		t.Fatalf("ResolveClearing: %v", err)
	}

	if resolved[10] != 0 {
		t.Errorf("clearing account balance: got %v, want 0", resolved[10])
	}
	if resolved[1] != 10.00 || resolved[2] != 10.00 {
		t.Errorf("personal balances: got %v / %v, want 10.00 each", resolved[1], resolved[2])
	}
	if r := resolutions[10]; r[1] != 10.00 || r[2] != 10.00 {
		t.Errorf("resolution: got %v, want 10.00 to each participant", r)
	}
}

func TestResolveClearingConservation(t *testing.T) {
	accounts := []Account{
		personal(1),
		personal(2),
		personal(3),
		clearing(10, map[int64]float64{1: 3, 2: 2, 3: 2}),
	}
	pool := 100.01
	balances := map[int64]float64{10: pool}

	resolved, resolutions, err := ResolveClearing(accounts, balances)
	if err != nil {
		t.Fatalf("ResolveClearing: %v", err)
	}

	var distributed int64
	for _, v := range resolutions[10] {
		distributed += centsOf(v)
	}
	if distributed != centsOf(pool) {
		t.Errorf("distributed %d cents, want %d (pool fully distributed)", distributed, centsOf(pool))
	}
	if resolved[10] != 0 {
		t.Errorf("clearing balance after resolution: got %v, want 0", resolved[10])
	}
}

func TestResolveClearingChained(t *testing.T) {
	// 20 allocates into 10, which splits across the two personal
	// accounts; 20 must resolve before 10
	accounts := []Account{
		personal(1),
		personal(2),
		clearing(10, map[int64]float64{1: 1, 2: 1}),
		clearing(20, map[int64]float64{10: 1, 1: 1}),
	}
	balances := map[int64]float64{20: 40.00, 10: 10.00}

	resolved, resolutions, err := ResolveClearing(accounts, balances)
	if err != nil {
		t.Fatalf("ResolveClearing: %v", err)
	}

	// 20: 20.00 to account 10 and 20.00 to account 1
	// 10: (10.00 + 20.00) split evenly
	if resolved[1] != 35.00 || resolved[2] != 15.00 {
		t.Errorf("personal balances: got %v / %v, want 35.00 / 15.00", resolved[1], resolved[2])
	}
	if resolved[10] != 0 || resolved[20] != 0 {
		t.Errorf("clearing balances not zeroed: %v / %v", resolved[10], resolved[20])
	}
	if r := resolutions[10]; r[1] != 15.00 || r[2] != 15.00 {
		t.Errorf("resolution of 10: got %v, want 15.00 each", r)
	}
}

func TestResolveClearingCycle(t *testing.T) {
	tests := []struct {
		name     string
		accounts []Account
	}{
		{
			name: "two-node cycle",
			accounts: []Account{
				personal(1),
				clearing(10, map[int64]float64{20: 1, 1: 1}),
				clearing(20, map[int64]float64{10: 1}),
			},
		},
		{
			name: "self cycle",
			accounts: []Account{
				personal(1),
				clearing(10, map[int64]float64{10: 1, 1: 1}),
			},
		},
		{
			name: "three-node cycle",
			accounts: []Account{
				personal(1),
				clearing(10, map[int64]float64{20: 1}),
				clearing(20, map[int64]float64{30: 1}),
				clearing(30, map[int64]float64{10: 1, 1: 1}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ResolveClearing(tt.accounts, map[int64]float64{10: 5.00})
			if !errors.Is(err, ErrClearingCycle) {
				t.Errorf("got %v, want ErrClearingCycle", err)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want a validation error", err)
			}
		})
	}
}

func TestResolveClearingUndistributable(t *testing.T) {
	accounts := []Account{
		personal(1),
		clearing(10, map[int64]float64{1: 0}),
	}
	_, _, err := ResolveClearing(accounts, map[int64]float64{10: 5.00})
	if !errors.Is(err, ErrUndistributableClearing) {
		t.Errorf("got %v, want ErrUndistributableClearing", err)
	}
}

func TestResolveClearingDeletedAccountStillResolves(t *testing.T) {
	// a deleted clearing account with a historical balance still
	// distributes its pool
	deleted := clearing(10, map[int64]float64{1: 1, 2: 1})
	deleted.Deleted = true
	accounts := []Account{personal(1), personal(2), deleted}

	resolved, _, err := ResolveClearing(accounts, map[int64]float64{10: 8.00})
	if err != nil {
		t.Fatalf("ResolveClearing: %v", err)
	}
	if resolved[1] != 4.00 || resolved[2] != 4.00 {
		t.Errorf("got %v / %v, want 4.00 each", resolved[1], resolved[2])
	}
	if resolved[10] != 0 {
		t.Errorf("deleted clearing account balance: got %v, want 0", resolved[10])
	}
}
