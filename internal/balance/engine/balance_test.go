package engine

import (
	"errors"
	"testing"
	"time"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func personal(id int64) Account {
	return Account{ID: id, Type: AccountTypePersonal, LastChanged: testTime}
}

func clearing(id int64, shares map[int64]float64) Account {
	return Account{ID: id, Type: AccountTypeClearing, ClearingShares: shares, LastChanged: testTime}
}

func purchase(id int64, value float64, creditors, debitors map[int64]float64) Transaction {
	return Transaction{
		ID:             id,
		Type:           TransactionTypePurchase,
		Value:          value,
		CreditorShares: creditors,
		DebitorShares:  debitors,
		BilledAt:       testTime,
		LastChanged:    testTime,
	}
}

func TestComputeBalancesSimplePurchase(t *testing.T) {
	accounts := []Account{personal(1), personal(2)}
	transactions := []Transaction{
		purchase(10, 10.00, map[int64]float64{1: 1}, map[int64]float64{1: 1, 2: 1}),
	}

	balances, err := ComputeBalances(accounts, transactions)
	if err != nil {
		t.Fatalf("ComputeBalances: %v", err)
	}

	if b := balances[1]; b.Balance != 5.00 || b.TotalPaid != 10.00 || b.TotalConsumed != 5.00 {
		t.Errorf("account 1: got %+v, want balance 5.00, paid 10.00, consumed 5.00", b)
	}
	if b := balances[2]; b.Balance != -5.00 || b.TotalPaid != 0 || b.TotalConsumed != 5.00 {
		t.Errorf("account 2: got %+v, want balance -5.00, paid 0, consumed 5.00", b)
	}
}

func TestComputeBalancesPositionPurchase(t *testing.T) {
	accounts := []Account{personal(1), personal(2)}
	tx := purchase(10, 9.00, map[int64]float64{1: 1}, map[int64]float64{1: 1, 2: 1})
	tx.Positions = []Position{
		{ID: 1, Price: 9.00, Usages: map[int64]float64{1: 1, 2: 2}},
	}

	balances, err := ComputeBalances(accounts, []Transaction{tx})
	if err != nil {
		t.Fatalf("ComputeBalances: %v", err)
	}

	// positions consume the entire value, so the shared remainder is 0
	if b := balances[1]; b.Balance != 6.00 || b.TotalConsumed != 3.00 {
		t.Errorf("account 1: got %+v, want balance 6.00, consumed 3.00", b)
	}
	if b := balances[2]; b.Balance != -6.00 || b.TotalConsumed != 6.00 {
		t.Errorf("account 2: got %+v, want balance -6.00, consumed 6.00", b)
	}
}

func TestComputeBalancesCommunistShares(t *testing.T) {
	// the item is half claimed by account 2, half communist; the
	// communist part flows into the shared debitor pool
	accounts := []Account{personal(1), personal(2)}
	tx := purchase(10, 8.00, map[int64]float64{1: 1}, map[int64]float64{1: 1, 2: 1})
	tx.Positions = []Position{
		{ID: 1, Price: 4.00, CommunistShares: 1, Usages: map[int64]float64{2: 1}},
	}

	balances, err := ComputeBalances(accounts, []Transaction{tx})
	if err != nil {
		t.Fatalf("ComputeBalances: %v", err)
	}

	// shared pool = (8.00 - 4.00) + 2.00 communist = 6.00, split evenly
	if b := balances[2]; b.TotalConsumed != 5.00 {
		t.Errorf("account 2: got consumed %v, want 5.00 (2.00 position + 3.00 pool)", b.TotalConsumed)
	}
	if b := balances[1]; b.Balance != 5.00 {
		t.Errorf("account 1: got balance %v, want 5.00", b.Balance)
	}
}

func TestComputeBalancesTransfer(t *testing.T) {
	accounts := []Account{personal(1), personal(2)}
	transactions := []Transaction{
		{
			ID:             7,
			Type:           TransactionTypeTransfer,
			Value:          25.00,
			CreditorShares: map[int64]float64{2: 1},
			DebitorShares:  map[int64]float64{1: 1},
			BilledAt:       testTime,
			LastChanged:    testTime,
		},
	}

	balances, err := ComputeBalances(accounts, transactions)
	if err != nil {
		t.Fatalf("ComputeBalances: %v", err)
	}
	if b := balances[2]; b.Balance != 25.00 || b.TotalPaid != 25.00 {
		t.Errorf("account 2: got %+v, want balance and paid 25.00", b)
	}
	if b := balances[1]; b.Balance != -25.00 {
		t.Errorf("account 1: got %+v, want balance -25.00", b)
	}
}

func TestComputeBalancesClosedSystem(t *testing.T) {
	accounts := []Account{personal(1), personal(2), personal(3)}
	tx1 := purchase(1, 33.33, map[int64]float64{1: 1}, map[int64]float64{1: 1, 2: 1, 3: 1})
	tx2 := purchase(2, 19.99, map[int64]float64{2: 2, 3: 1}, map[int64]float64{1: 5, 2: 1})
	tx2.Positions = []Position{
		{ID: 1, Price: 7.77, CommunistShares: 2, Usages: map[int64]float64{3: 1}},
		{ID: 2, Price: 0.05, Usages: map[int64]float64{1: 1, 2: 1, 3: 1}},
	}

	balances, err := ComputeBalances(accounts, []Transaction{tx1, tx2})
	if err != nil {
		t.Fatalf("ComputeBalances: %v", err)
	}

	var sum int64
	for _, b := range balances {
		sum += centsOf(b.Balance)
	}
	if sum != 0 {
		t.Errorf("balances sum to %d cents, want 0", sum)
	}
}

func TestComputeBalancesZeroEntries(t *testing.T) {
	accounts := []Account{personal(1), personal(2), personal(3)}
	transactions := []Transaction{
		purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{2: 1}),
	}

	balances, err := ComputeBalances(accounts, transactions)
	if err != nil {
		t.Fatalf("ComputeBalances: %v", err)
	}

	// untouched accounts keep an explicit zero entry
	b, ok := balances[3]
	if !ok {
		t.Fatal("account 3 missing from balance map")
	}
	if b.Balance != 0 || b.TotalPaid != 0 || b.TotalConsumed != 0 {
		t.Errorf("account 3: got %+v, want all zero", b)
	}
}

func TestComputeBalancesSkipsDeleted(t *testing.T) {
	accounts := []Account{personal(1), personal(2)}
	deleted := purchase(1, 100.00, map[int64]float64{1: 1}, map[int64]float64{2: 1})
	deleted.Deleted = true
	tx := purchase(2, 10.00, map[int64]float64{1: 1}, map[int64]float64{2: 1})
	tx.Positions = []Position{
		{ID: 1, Price: 50.00, Usages: map[int64]float64{2: 1}, Deleted: true},
	}

	balances, err := ComputeBalances(accounts, []Transaction{deleted, tx})
	if err != nil {
		t.Fatalf("ComputeBalances: %v", err)
	}
	if b := balances[1]; b.Balance != 10.00 {
		t.Errorf("account 1: got balance %v, want 10.00 (deleted entities ignored)", b.Balance)
	}
}

func TestComputeBalancesValidation(t *testing.T) {
	accounts := []Account{personal(1), personal(2)}

	withPositions := func(tx Transaction, positions ...Position) Transaction {
		tx.Positions = positions
		return tx
	}

	tests := []struct {
		name     string
		accounts []Account
		tx       Transaction
		want     error
	}{
		{
			name:     "unknown debitor account",
			accounts: accounts,
			tx:       purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{99: 1}),
			want:     ErrUnknownAccount,
		},
		{
			name:     "unknown usage account",
			accounts: accounts,
			tx: withPositions(
				purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{2: 1}),
				Position{ID: 1, Price: 5.00, Usages: map[int64]float64{42: 1}},
			),
			want: ErrUnknownAccount,
		},
		{
			name:     "negative debitor weight",
			accounts: accounts,
			tx:       purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{2: -1}),
			want:     ErrNegativeWeight,
		},
		{
			name:     "negative communist shares",
			accounts: accounts,
			tx: withPositions(
				purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{2: 1}),
				Position{ID: 1, Price: 5.00, CommunistShares: -1, Usages: map[int64]float64{2: 1}},
			),
			want: ErrNegativeWeight,
		},
		{
			name:     "unclaimed position",
			accounts: accounts,
			tx: withPositions(
				purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{1: 1, 2: 1}),
				Position{ID: 1, Price: 4.00, Usages: map[int64]float64{}},
			),
			want: ErrUnclaimedPosition,
		},
		{
			name:     "unclaimed position with zero usage weights",
			accounts: accounts,
			tx: withPositions(
				purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{1: 1, 2: 1}),
				Position{ID: 1, Price: 4.00, Usages: map[int64]float64{2: 0}},
			),
			want: ErrUnclaimedPosition,
		},
		{
			name:     "positions exceed value",
			accounts: accounts,
			tx: withPositions(
				purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{2: 1}),
				Position{ID: 1, Price: 11.00, Usages: map[int64]float64{2: 1}},
			),
			want: ErrPositionsExceedValue,
		},
		{
			name:     "transfer with positions",
			accounts: accounts,
			tx: withPositions(
				Transaction{
					ID:             1,
					Type:           TransactionTypeTransfer,
					Value:          10.00,
					CreditorShares: map[int64]float64{1: 1},
					DebitorShares:  map[int64]float64{2: 1},
				},
				Position{ID: 1, Price: 5.00, Usages: map[int64]float64{2: 1}},
			),
			want: ErrTransferWithPositions,
		},
		{
			name:     "no creditors",
			accounts: accounts,
			tx:       purchase(1, 10.00, map[int64]float64{}, map[int64]float64{2: 1}),
			want:     ErrNoCreditors,
		},
		{
			name:     "no debitors",
			accounts: accounts,
			tx:       purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{2: 0}),
			want:     ErrNoDebitors,
		},
		{
			name:     "legacy account type",
			accounts: []Account{personal(1), {ID: 2, Type: "mimo"}},
			tx:       purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{1: 1}),
			want:     ErrUnknownAccountType,
		},
		{
			name:     "duplicate account id",
			accounts: []Account{personal(1), personal(1)},
			tx:       purchase(1, 10.00, map[int64]float64{1: 1}, map[int64]float64{1: 1}),
			want:     ErrDuplicateAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeBalances(tt.accounts, []Transaction{tt.tx})
			if !errors.Is(err, tt.want) {
				t.Errorf("got %v, want %v", err, tt.want)
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want a validation error", err)
			}
		})
	}
}
