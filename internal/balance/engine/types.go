package engine

import "time"

// The engine is a pure computation library over immutable snapshots:
// the caller hands in accounts and transactions, the engine never
// mutates them and returns freshly built results. There is no I/O and
// no shared state, so concurrent calls are safe as long as each call
// gets its own snapshot.

// AccountType identifies the two supported account kinds. Anything
// else (legacy data carried a third kind) is rejected as invalid
// input, never silently skipped.
type AccountType string

const (
	AccountTypePersonal AccountType = "personal"
	AccountTypeClearing AccountType = "clearing"
)

// Account is an engine-side account snapshot.
type Account struct {
	ID           int64
	Type         AccountType
	OwningUserID *int64

	// ClearingShares describes how a clearing account's accrued
	// balance is distributed to other accounts (which may themselves
	// be clearing accounts). Weights are non-negative and only
	// meaningful relative to each other. Empty for personal accounts.
	ClearingShares map[int64]float64

	Deleted     bool
	LastChanged time.Time
}

// TransactionType identifies the two supported transaction kinds.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeTransfer TransactionType = "transfer"
)

// Position is an itemized sub-allocation of a purchase. CommunistShares
// is the weight of the implicit shared bucket: the part of the item's
// price not claimed by a specific account, which flows back into the
// transaction's general debitor pool.
type Position struct {
	ID              int64
	Price           float64
	CommunistShares float64
	Usages          map[int64]float64
	Deleted         bool
}

// Transaction is an engine-side transaction snapshot. Value is the
// total monetary amount in the caller's common unit; the currency
// symbol and conversion rate are carried for display but never
// combined arithmetically by the engine.
type Transaction struct {
	ID                     int64
	Type                   TransactionType
	Value                  float64
	CurrencySymbol         string
	CurrencyConversionRate float64
	CreditorShares         map[int64]float64
	DebitorShares          map[int64]float64
	Positions              []Position
	BilledAt               time.Time
	LastChanged            time.Time
	Deleted                bool
}

// AccountBalance is the per-account aggregate over all transactions,
// before clearing resolution.
type AccountBalance struct {
	Balance       float64
	TotalPaid     float64
	TotalConsumed float64
}

// Balance is the fully resolved per-account result. Positive means the
// account is owed money, negative means it owes. ClearingResolution is
// populated for clearing accounts only and records how the account's
// pool was distributed; its values sum to the pre-resolution balance.
type Balance struct {
	Balance            float64
	TotalPaid          float64
	TotalConsumed      float64
	ClearingResolution map[int64]float64
}

// OriginType tags the source of a balance history entry.
type OriginType string

const (
	OriginTransaction OriginType = "transaction"
	OriginClearing    OriginType = "clearing"
)

// Origin identifies the entity that produced a history entry.
type Origin struct {
	Type OriginType
	ID   int64
}

// HistoryEntry is one step of an account's balance history. Balance is
// the running total after applying Change.
type HistoryEntry struct {
	Time    time.Time
	Change  float64
	Balance float64
	Origin  Origin
}

// Result is the output of Aggregate: final balances plus per-account
// balance history.
type Result struct {
	Balances map[int64]Balance
	History  map[int64][]HistoryEntry
}

// SettlementPlanItem is a single payment directive: DebitorID pays
// Amount to CreditorID. Applying a whole plan in order drives every
// personal account's balance to zero.
type SettlementPlanItem struct {
	CreditorID int64   `json:"creditor_id"`
	DebitorID  int64   `json:"debitor_id"`
	Amount     float64 `json:"amount"`
}
