package engine

import (
	"errors"
	"fmt"
)

// The engine distinguishes two failure kinds. ErrValidation means the
// caller's data is inconsistent; ErrConsistency means an internal
// invariant broke on input that passed validation, i.e. a bug on our
// side. Every concrete error below wraps one of the two, so callers
// check kinds with errors.Is(err, engine.ErrValidation) and specifics
// with errors.Is(err, engine.ErrClearingCycle).
var (
	ErrValidation  = errors.New("invalid input")
	ErrConsistency = errors.New("consistency violation")
)

var (
	ErrNegativeWeight           = fmt.Errorf("%w: negative share weight", ErrValidation)
	ErrUnknownAccount           = fmt.Errorf("%w: reference to unknown account", ErrValidation)
	ErrUnknownAccountType       = fmt.Errorf("%w: unknown account type", ErrValidation)
	ErrDuplicateAccount         = fmt.Errorf("%w: duplicate account id", ErrValidation)
	ErrClearingSharesOnPersonal = fmt.Errorf("%w: personal account carries clearing shares", ErrValidation)
	ErrTransferWithPositions    = fmt.Errorf("%w: transfer carries positions", ErrValidation)
	ErrPositionsExceedValue     = fmt.Errorf("%w: position prices exceed transaction value", ErrValidation)
	ErrUnclaimedPosition        = fmt.Errorf("%w: position has no positive usage or communist share", ErrValidation)
	ErrNoCreditors              = fmt.Errorf("%w: transaction has no positive creditor share", ErrValidation)
	ErrNoDebitors               = fmt.Errorf("%w: transaction has no positive debitor share", ErrValidation)
	ErrClearingCycle            = fmt.Errorf("%w: clearing accounts form a cycle", ErrValidation)
	ErrUndistributableClearing  = fmt.Errorf("%w: clearing account has a balance but no positive clearing share", ErrValidation)

	ErrUnsettledRemainder = fmt.Errorf("%w: settlement plan left a nonzero remainder", ErrConsistency)
)

func wrapAccountErr(id int64, err error) error {
	return fmt.Errorf("account %d: %w", id, err)
}

func wrapTransactionErr(id int64, err error) error {
	return fmt.Errorf("transaction %d: %w", id, err)
}

func wrapRemainderErr(cents int64) error {
	return fmt.Errorf("%.2f left over: %w", float64(cents)/centScale, ErrUnsettledRemainder)
}
