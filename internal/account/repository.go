package account

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles account data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new account repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account and its clearing shares
func (r *Repository) Create(ctx context.Context, req *CreateAccountRequest) (*Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO accounts (name, description, type, owning_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, type, owning_user_id, deleted, created_at, updated_at
	`

	account := &Account{}
	var description sql.NullString
	err = tx.QueryRowContext(ctx, query, req.Name, req.Description, req.Type, req.OwningUserID).Scan(
		&account.ID,
		&account.Name,
		&description,
		&account.Type,
		&account.OwningUserID,
		&account.Deleted,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	account.Description = description.String

	if err := insertClearingShares(ctx, tx, account.ID, req.ClearingShares); err != nil {
		return nil, err
	}
	account.ClearingShares = req.ClearingShares

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account: %w", err)
	}
	return account, nil
}

// GetByID retrieves an account by its ID, including deleted ones
func (r *Repository) GetByID(ctx context.Context, id int64) (*Account, error) {
	query := `
		SELECT id, name, description, type, owning_user_id, deleted, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`

	account := &Account{}
	var description sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID,
		&account.Name,
		&description,
		&account.Type,
		&account.OwningUserID,
		&account.Deleted,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	account.Description = description.String

	shares, err := r.clearingShares(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	account.ClearingShares = shares[id]
	return account, nil
}

// List retrieves accounts. With includeDeleted the full historical set
// is returned, which is what the balance engine needs as its snapshot.
func (r *Repository) List(ctx context.Context, includeDeleted bool) ([]*Account, error) {
	query := `
		SELECT id, name, description, type, owning_user_id, deleted, created_at, updated_at
		FROM accounts
	`
	if !includeDeleted {
		query += ` WHERE NOT deleted`
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*Account
	var ids []int64
	for rows.Next() {
		account := &Account{}
		var description sql.NullString
		if err := rows.Scan(
			&account.ID,
			&account.Name,
			&description,
			&account.Type,
			&account.OwningUserID,
			&account.Deleted,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.Description = description.String
		accounts = append(accounts, account)
		ids = append(ids, account.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	shares, err := r.clearingShares(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		account.ClearingShares = shares[account.ID]
	}
	return accounts, nil
}

// Update applies the non-nil fields of req and, if given, replaces the
// clearing shares wholesale.
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateAccountRequest) (*Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE accounts
		SET name = COALESCE($2, name),
		    description = COALESCE($3, description),
		    owning_user_id = COALESCE($4, owning_user_id),
		    updated_at = NOW()
		WHERE id = $1 AND NOT deleted
		RETURNING id, name, description, type, owning_user_id, deleted, created_at, updated_at
	`

	account := &Account{}
	var description sql.NullString
	err = tx.QueryRowContext(ctx, query, id, req.Name, req.Description, req.OwningUserID).Scan(
		&account.ID,
		&account.Name,
		&description,
		&account.Type,
		&account.OwningUserID,
		&account.Deleted,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	account.Description = description.String

	if req.ClearingShares != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM account_clearing_shares WHERE account_id = $1`, id); err != nil {
			return nil, fmt.Errorf("failed to clear clearing shares: %w", err)
		}
		if err := insertClearingShares(ctx, tx, id, *req.ClearingShares); err != nil {
			return nil, err
		}
		account.ClearingShares = *req.ClearingShares
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account update: %w", err)
	}

	if req.ClearingShares == nil {
		shares, err := r.clearingShares(ctx, []int64{id})
		if err != nil {
			return nil, err
		}
		account.ClearingShares = shares[id]
	}
	return account, nil
}

// SoftDelete marks an account as deleted. Historical balances keep
// resolving against it; it just stops being referenceable going
// forward.
func (r *Repository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT deleted
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// clearingShares loads the share maps for the given account ids.
func (r *Repository) clearingShares(ctx context.Context, ids []int64) (map[int64]map[int64]float64, error) {
	shares := make(map[int64]map[int64]float64)
	if len(ids) == 0 {
		return shares, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT account_id, target_account_id, weight
		FROM account_clearing_shares
		WHERE account_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load clearing shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var accountID, targetID int64
		var weight float64
		if err := rows.Scan(&accountID, &targetID, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan clearing share: %w", err)
		}
		if shares[accountID] == nil {
			shares[accountID] = make(map[int64]float64)
		}
		shares[accountID][targetID] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate clearing shares: %w", err)
	}
	return shares, nil
}

func insertClearingShares(ctx context.Context, tx *sql.Tx, accountID int64, shares map[int64]float64) error {
	for targetID, weight := range shares {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO account_clearing_shares (account_id, target_account_id, weight)
			VALUES ($1, $2, $3)
		`, accountID, targetID, weight)
		if err != nil {
			return fmt.Errorf("failed to insert clearing share: %w", err)
		}
	}
	return nil
}
