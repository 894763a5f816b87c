package transaction

import (
	"errors"
	"fmt"
	"math"

	"github.com/mbecker/splitpool/internal/account"
)

// Common errors
var (
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrInvalidTransactionType   = errors.New("transaction type must be purchase or transfer")
	ErrNonPositiveValue         = errors.New("transaction value must be positive")
	ErrNegativeShareWeight      = errors.New("share weights must be non-negative")
	ErrNoCreditorShares         = errors.New("at least one positive creditor share is required")
	ErrNoDebitorShares          = errors.New("at least one positive debitor share is required")
	ErrTransferWithPositions    = errors.New("transfers cannot carry positions")
	ErrNonPositivePositionPrice = errors.New("position price must be positive")
	ErrUnclaimedPosition        = errors.New("position must have a positive usage or communist share")
	ErrPositionsExceedValue     = errors.New("position prices must not exceed the transaction value")
	ErrUnknownAccount           = errors.New("share references an unknown account")
	ErrDeletedAccount           = errors.New("share references a deleted account")
)

// transactionInput is the validated shape shared by create and update
// requests.
type transactionInput struct {
	txType         TransactionType
	value          float64
	creditorShares map[int64]float64
	debitorShares  map[int64]float64
	positions      []*PositionRequest
}

// validateInput checks a transaction against the known accounts. New
// transactions may only reference existing, non-deleted accounts;
// filtering deleted accounts out of fresh input is this layer's job,
// the balance engine only requires that historical references resolve.
func validateInput(in transactionInput, accounts map[int64]*account.Account) error {
	if !IsValidType(in.txType) {
		return fmt.Errorf("%w: got %q", ErrInvalidTransactionType, in.txType)
	}
	if in.value <= 0 {
		return ErrNonPositiveValue
	}

	if err := validateShareMap(in.creditorShares, accounts); err != nil {
		return fmt.Errorf("creditor shares: %w", err)
	}
	if err := validateShareMap(in.debitorShares, accounts); err != nil {
		return fmt.Errorf("debitor shares: %w", err)
	}
	if !hasPositiveWeight(in.creditorShares) {
		return ErrNoCreditorShares
	}
	if !hasPositiveWeight(in.debitorShares) {
		return ErrNoDebitorShares
	}

	if len(in.positions) > 0 && in.txType == TransactionTypeTransfer {
		return ErrTransferWithPositions
	}
	var positionTotal float64
	for _, p := range in.positions {
		if p.Price <= 0 {
			return fmt.Errorf("%w: position %q", ErrNonPositivePositionPrice, p.Name)
		}
		if p.CommunistShares < 0 {
			return fmt.Errorf("%w: position %q", ErrNegativeShareWeight, p.Name)
		}
		if err := validateShareMap(p.Usages, accounts); err != nil {
			return fmt.Errorf("position %q usages: %w", p.Name, err)
		}
		// an unclaimed price would vanish from the debitor pool
		if !hasPositiveWeight(p.Usages) && p.CommunistShares == 0 {
			return fmt.Errorf("%w: position %q", ErrUnclaimedPosition, p.Name)
		}
		positionTotal += p.Price
	}
	// half-cent tolerance: stored values are two-decimal currency
	if positionTotal > in.value && math.Abs(positionTotal-in.value) > 0.005 {
		return ErrPositionsExceedValue
	}
	return nil
}

func validateShareMap(shares map[int64]float64, accounts map[int64]*account.Account) error {
	for accountID, weight := range shares {
		if weight < 0 {
			return fmt.Errorf("%w: account %d has weight %v", ErrNegativeShareWeight, accountID, weight)
		}
		a, ok := accounts[accountID]
		if !ok {
			return fmt.Errorf("%w: account %d", ErrUnknownAccount, accountID)
		}
		if a.Deleted {
			return fmt.Errorf("%w: account %d", ErrDeletedAccount, accountID)
		}
	}
	return nil
}

func hasPositiveWeight(shares map[int64]float64) bool {
	for _, w := range shares {
		if w > 0 {
			return true
		}
	}
	return false
}

func isValidationErr(err error) bool {
	return errors.Is(err, ErrInvalidTransactionType) ||
		errors.Is(err, ErrNonPositiveValue) ||
		errors.Is(err, ErrNegativeShareWeight) ||
		errors.Is(err, ErrNoCreditorShares) ||
		errors.Is(err, ErrNoDebitorShares) ||
		errors.Is(err, ErrTransferWithPositions) ||
		errors.Is(err, ErrNonPositivePositionPrice) ||
		errors.Is(err, ErrUnclaimedPosition) ||
		errors.Is(err, ErrPositionsExceedValue) ||
		errors.Is(err, ErrUnknownAccount) ||
		errors.Is(err, ErrDeletedAccount)
}
