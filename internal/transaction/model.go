package transaction

import "time"

// TransactionType is the closed set of transaction kinds.
type TransactionType string

const (
	TransactionTypePurchase TransactionType = "purchase"
	TransactionTypeTransfer TransactionType = "transfer"
)

// ShareSide distinguishes the two halves of a transaction's share
// tables: creditors receive/paid the value, debitors consume it.
type ShareSide string

const (
	ShareSideCreditor ShareSide = "creditor"
	ShareSideDebitor  ShareSide = "debitor"
)

// Transaction represents a purchase or transfer. Value is the total
// amount in the group's common unit; currency symbol and conversion
// rate are carried for display, the stored value is already
// normalized.
type Transaction struct {
	ID                     int64             `json:"id"`
	Type                   TransactionType   `json:"type"`
	Description            string            `json:"description"`
	Value                  float64           `json:"value"`
	CurrencySymbol         string            `json:"currency_symbol"`
	CurrencyConversionRate float64           `json:"currency_conversion_rate"`
	CreditorShares         map[int64]float64 `json:"creditor_shares"`
	DebitorShares          map[int64]float64 `json:"debitor_shares"`
	Positions              []*Position       `json:"positions,omitempty"`
	BilledAt               time.Time         `json:"billed_at"`
	Deleted                bool              `json:"deleted"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// Position is an itemized part of a purchase. Usages maps account id
// to that account's weighted claim on the item; CommunistShares is the
// weight of the unclaimed remainder that flows back into the
// transaction's shared debitor pool.
type Position struct {
	ID              int64             `json:"id"`
	TransactionID   int64             `json:"transaction_id"`
	Name            string            `json:"name"`
	Price           float64           `json:"price"`
	CommunistShares float64           `json:"communist_shares"`
	Usages          map[int64]float64 `json:"usages"`
	Deleted         bool              `json:"deleted"`
}

// IsValidType reports whether t is one of the supported transaction kinds.
func IsValidType(t TransactionType) bool {
	return t == TransactionTypePurchase || t == TransactionTypeTransfer
}
