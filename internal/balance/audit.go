package balance

import (
	"context"
	"fmt"
	"math"

	"github.com/mbecker/splitpool/internal/balance/engine"
)

// Audit recomputes all balances and verifies the engine's closing
// invariants against the stored data. It exists as a scheduled
// consistency check: data edited outside the API (or a bug in the
// engine itself) surfaces here instead of as a silently wrong
// settlement plan.
func (s *Service) Audit(ctx context.Context) error {
	accounts, transactions, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	result, err := engine.Aggregate(accounts, transactions)
	if err != nil {
		return err
	}

	accountTypes := make(map[int64]engine.AccountType, len(accounts))
	for _, a := range accounts {
		accountTypes[a.ID] = a.Type
	}

	var personalSum float64
	for id, b := range result.Balances {
		switch accountTypes[id] {
		case engine.AccountTypePersonal:
			personalSum += b.Balance
		case engine.AccountTypeClearing:
			// every clearing pool must be fully distributed
			if math.Abs(b.Balance) > engine.Epsilon {
				return fmt.Errorf("clearing account %d kept a balance of %.2f after resolution", id, b.Balance)
			}
		}
	}
	if math.Abs(personalSum) > engine.Epsilon {
		return fmt.Errorf("personal balances sum to %.2f, want 0", personalSum)
	}

	s.log.WithField("accounts", len(result.Balances)).Debug("balance audit passed")
	return nil
}
