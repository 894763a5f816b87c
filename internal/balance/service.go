package balance

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/mbecker/splitpool/internal/account"
	"github.com/mbecker/splitpool/internal/balance/engine"
	"github.com/mbecker/splitpool/internal/transaction"
)

// Common errors
var (
	ErrAccountNotFound = errors.New("account not found")
)

// Service wires the pure balance engine to the stored account and
// transaction snapshots. Every call loads a fresh, consistent snapshot
// and re-runs the full computation; results are not cached because
// clearing resolution is global and partial invalidation is not worth
// the correctness risk.
type Service struct {
	accountRepo     *account.Repository
	transactionRepo *transaction.Repository
	log             *logrus.Logger
}

// NewService creates a new balance service
func NewService(accountRepo *account.Repository, transactionRepo *transaction.Repository, log *logrus.Logger) *Service {
	return &Service{
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		log:             log,
	}
}

// ComputeAll runs the full pipeline over the current snapshot
func (s *Service) ComputeAll(ctx context.Context) (*engine.Result, error) {
	accounts, transactions, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return engine.Aggregate(accounts, transactions)
}

// AccountBalance returns the resolved balance of a single account
func (s *Service) AccountBalance(ctx context.Context, accountID int64) (*engine.Balance, error) {
	result, err := s.ComputeAll(ctx)
	if err != nil {
		return nil, err
	}
	balance, ok := result.Balances[accountID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return &balance, nil
}

// History returns an account's time-ordered balance history
func (s *Service) History(ctx context.Context, accountID int64) ([]engine.HistoryEntry, error) {
	result, err := s.ComputeAll(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := result.Balances[accountID]; !ok {
		return nil, ErrAccountNotFound
	}
	return result.History[accountID], nil
}

// SettlementPlan computes the payment directives that settle all
// personal balances. The plan is advice, not a booked transaction;
// recording an actual settlement is a separate transfer.
func (s *Service) SettlementPlan(ctx context.Context) ([]engine.SettlementPlanItem, error) {
	accounts, transactions, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	result, err := engine.Aggregate(accounts, transactions)
	if err != nil {
		return nil, err
	}

	balances := make(map[int64]float64, len(result.Balances))
	for id, b := range result.Balances {
		balances[id] = b.Balance
	}
	return engine.PlanSettlement(accounts, balances)
}

// snapshot loads all accounts (deleted included, historical references
// must resolve) and all live transactions, mapped to engine inputs.
func (s *Service) snapshot(ctx context.Context) ([]engine.Account, []engine.Transaction, error) {
	storedAccounts, err := s.accountRepo.List(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	storedTransactions, err := s.transactionRepo.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	accounts := make([]engine.Account, len(storedAccounts))
	for i, a := range storedAccounts {
		accounts[i] = engine.Account{
			ID:             a.ID,
			Type:           engine.AccountType(a.Type),
			OwningUserID:   a.OwningUserID,
			ClearingShares: a.ClearingShares,
			Deleted:        a.Deleted,
			LastChanged:    a.UpdatedAt,
		}
	}

	transactions := make([]engine.Transaction, len(storedTransactions))
	for i, t := range storedTransactions {
		et := engine.Transaction{
			ID:                     t.ID,
			Type:                   engine.TransactionType(t.Type),
			Value:                  t.Value,
			CurrencySymbol:         t.CurrencySymbol,
			CurrencyConversionRate: t.CurrencyConversionRate,
			CreditorShares:         t.CreditorShares,
			DebitorShares:          t.DebitorShares,
			BilledAt:               t.BilledAt,
			LastChanged:            t.UpdatedAt,
			Deleted:                t.Deleted,
		}
		for _, p := range t.Positions {
			et.Positions = append(et.Positions, engine.Position{
				ID:              p.ID,
				Price:           p.Price,
				CommunistShares: p.CommunistShares,
				Usages:          p.Usages,
				Deleted:         p.Deleted,
			})
		}
		transactions[i] = et
	}
	return accounts, transactions, nil
}
