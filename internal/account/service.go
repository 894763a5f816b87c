package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Common errors
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidAccountType  = errors.New("account type must be personal or clearing")
	ErrNameRequired        = errors.New("account name is required")
	ErrNegativeShareWeight = errors.New("clearing share weights must be non-negative")
	ErrSharesOnPersonal    = errors.New("personal accounts cannot carry clearing shares")
	ErrSelfShare           = errors.New("clearing account cannot allocate to itself")
	ErrShareTargetNotFound = errors.New("clearing share references an unknown account")
	ErrShareTargetDeleted  = errors.New("clearing share references a deleted account")
)

// Service handles account business logic
type Service struct {
	repo *Repository
	log  *logrus.Logger
}

// NewService creates a new account service
func NewService(repo *Repository, log *logrus.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create validates and creates an account. New clearing shares may only
// point at existing, non-deleted accounts; the engine tolerates deleted
// accounts in historical data but new references are filtered here.
func (s *Service) Create(ctx context.Context, req *CreateAccountRequest) (*Account, error) {
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if !IsValidType(AccountType(req.Type)) {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidAccountType, req.Type)
	}
	if err := s.validateClearingShares(ctx, AccountType(req.Type), 0, req.ClearingShares); err != nil {
		return nil, err
	}

	account, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"account_id": account.ID,
		"type":       account.Type,
	}).Info("account created")
	return account, nil
}

// GetByID retrieves an account by its ID
func (s *Service) GetByID(ctx context.Context, id int64) (*Account, error) {
	account, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// List retrieves all accounts, optionally including soft-deleted ones
func (s *Service) List(ctx context.Context, includeDeleted bool) ([]*Account, error) {
	return s.repo.List(ctx, includeDeleted)
}

// Update validates and applies a partial update
func (s *Service) Update(ctx context.Context, id int64, req *UpdateAccountRequest) (*Account, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Deleted {
		return nil, ErrAccountNotFound
	}
	if req.Name != nil && *req.Name == "" {
		return nil, ErrNameRequired
	}
	if req.ClearingShares != nil {
		if err := s.validateClearingShares(ctx, existing.Type, id, *req.ClearingShares); err != nil {
			return nil, err
		}
	}

	account, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// Delete soft-deletes an account
func (s *Service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAccountNotFound
	}
	s.log.WithField("account_id", id).Info("account deleted")
	return nil
}

func (s *Service) validateClearingShares(ctx context.Context, accountType AccountType, selfID int64, shares map[int64]float64) error {
	if len(shares) == 0 {
		return nil
	}
	if accountType != AccountTypeClearing {
		return ErrSharesOnPersonal
	}

	for targetID, weight := range shares {
		if weight < 0 {
			return fmt.Errorf("%w: account %d has weight %v", ErrNegativeShareWeight, targetID, weight)
		}
		if targetID == selfID {
			return ErrSelfShare
		}
		target, err := s.repo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return fmt.Errorf("%w: account %d", ErrShareTargetNotFound, targetID)
		}
		if target.Deleted {
			return fmt.Errorf("%w: account %d", ErrShareTargetDeleted, targetID)
		}
	}
	return nil
}
