package transaction

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mbecker/splitpool/internal/account"
)

// Service handles transaction business logic
type Service struct {
	repo        *Repository
	accountRepo *account.Repository
	log         *logrus.Logger
}

// NewService creates a new transaction service
func NewService(repo *Repository, accountRepo *account.Repository, log *logrus.Logger) *Service {
	return &Service{
		repo:        repo,
		accountRepo: accountRepo,
		log:         log,
	}
}

// Create validates a transaction against the current account set and
// stores it.
func (s *Service) Create(ctx context.Context, req *CreateTransactionRequest) (*Transaction, error) {
	accounts, err := s.accountIndex(ctx)
	if err != nil {
		return nil, err
	}

	in := transactionInput{
		txType:         TransactionType(req.Type),
		value:          req.Value,
		creditorShares: req.CreditorShares,
		debitorShares:  req.DebitorShares,
		positions:      req.Positions,
	}
	if err := validateInput(in, accounts); err != nil {
		return nil, err
	}

	if req.BilledAt.IsZero() {
		req.BilledAt = time.Now().UTC()
	}
	if req.CurrencyConversionRate == 0 {
		req.CurrencyConversionRate = 1
	}

	t, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"transaction_id": t.ID,
		"type":           t.Type,
		"value":          t.Value,
	}).Info("transaction created")
	return t, nil
}

// GetByID retrieves a transaction by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

// List retrieves transactions with pagination
func (s *Service) List(ctx context.Context, page, perPage int) ([]*Transaction, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	offset := (page - 1) * perPage
	return s.repo.List(ctx, perPage, offset)
}

// Update validates and replaces a transaction's editable content
func (s *Service) Update(ctx context.Context, id int64, req *UpdateTransactionRequest) (*Transaction, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Deleted {
		return nil, ErrTransactionNotFound
	}

	accounts, err := s.accountIndex(ctx)
	if err != nil {
		return nil, err
	}
	in := transactionInput{
		txType:         existing.Type,
		value:          req.Value,
		creditorShares: req.CreditorShares,
		debitorShares:  req.DebitorShares,
		positions:      req.Positions,
	}
	if err := validateInput(in, accounts); err != nil {
		return nil, err
	}

	if req.BilledAt.IsZero() {
		req.BilledAt = existing.BilledAt
	}

	t, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

// Delete soft-deletes a transaction
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTransactionNotFound
	}
	s.log.WithField("transaction_id", id).Info("transaction deleted")
	return nil
}

// accountIndex loads the full account set keyed by id, deleted ones
// included so validation can tell "unknown" from "deleted" apart. New
// transactions may reference neither.
func (s *Service) accountIndex(ctx context.Context) (map[int64]*account.Account, error) {
	accounts, err := s.accountRepo.List(ctx, true)
	if err != nil {
		return nil, err
	}
	index := make(map[int64]*account.Account, len(accounts))
	for _, a := range accounts {
		index[a.ID] = a
	}
	return index, nil
}
