package account

import "time"

// AccountType is the closed set of account kinds. A third kind existed
// in legacy data; it is rejected on input, never silently mapped.
type AccountType string

const (
	AccountTypePersonal AccountType = "personal"
	AccountTypeClearing AccountType = "clearing"
)

// Account represents a balance-carrying account. Personal accounts
// belong to an individual participant; clearing accounts are virtual
// pools (shared events) whose balance is always redistributed to
// other accounts via the clearing shares.
type Account struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description,omitempty"`
	Type         AccountType `json:"type"`
	OwningUserID *int64      `json:"owning_user_id,omitempty"`

	// ClearingShares maps participant account id to weight. Only set
	// for clearing accounts; weights are non-negative and meaningful
	// only relative to each other.
	ClearingShares map[int64]float64 `json:"clearing_shares,omitempty"`

	Deleted   bool      `json:"deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsValidType reports whether t is one of the supported account kinds.
func IsValidType(t AccountType) bool {
	return t == AccountTypePersonal || t == AccountTypeClearing
}
