package transaction

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles transaction and position data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new transaction repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a transaction with its shares and positions in one
// database transaction.
func (r *Repository) Create(ctx context.Context, req *CreateTransactionRequest) (*Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transactions (type, description, value, currency_symbol, currency_conversion_rate, billed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, type, description, value, currency_symbol, currency_conversion_rate, billed_at, deleted, created_at, updated_at
	`

	t := &Transaction{}
	err = tx.QueryRowContext(ctx, query,
		req.Type,
		req.Description,
		req.Value,
		req.CurrencySymbol,
		req.CurrencyConversionRate,
		req.BilledAt,
	).Scan(
		&t.ID,
		&t.Type,
		&t.Description,
		&t.Value,
		&t.CurrencySymbol,
		&t.CurrencyConversionRate,
		&t.BilledAt,
		&t.Deleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := insertShares(ctx, tx, t.ID, ShareSideCreditor, req.CreditorShares); err != nil {
		return nil, err
	}
	if err := insertShares(ctx, tx, t.ID, ShareSideDebitor, req.DebitorShares); err != nil {
		return nil, err
	}
	t.CreditorShares = req.CreditorShares
	t.DebitorShares = req.DebitorShares

	for _, p := range req.Positions {
		position, err := insertPosition(ctx, tx, t.ID, p)
		if err != nil {
			return nil, err
		}
		t.Positions = append(t.Positions, position)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return t, nil
}

// GetByID retrieves a transaction with its shares and positions
func (r *Repository) GetByID(ctx context.Context, id int64) (*Transaction, error) {
	query := `
		SELECT id, type, description, value, currency_symbol, currency_conversion_rate, billed_at, deleted, created_at, updated_at
		FROM transactions
		WHERE id = $1
	`

	t := &Transaction{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Type,
		&t.Description,
		&t.Value,
		&t.CurrencySymbol,
		&t.CurrencyConversionRate,
		&t.BilledAt,
		&t.Deleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	if err := r.attachDetails(ctx, []*Transaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves non-deleted transactions ordered by billing date,
// newest first, with total count for pagination.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Transaction, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE NOT deleted`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	query := `
		SELECT id, type, description, value, currency_symbol, currency_conversion_rate, billed_at, deleted, created_at, updated_at
		FROM transactions
		WHERE NOT deleted
		ORDER BY billed_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachDetails(ctx, transactions); err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

// ListAll retrieves every non-deleted transaction with full details.
// This is the balance engine's snapshot; deleted transactions
// contribute nothing and are filtered here.
func (r *Repository) ListAll(ctx context.Context) ([]*Transaction, error) {
	query := `
		SELECT id, type, description, value, currency_symbol, currency_conversion_rate, billed_at, deleted, created_at, updated_at
		FROM transactions
		WHERE NOT deleted
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions, err := scanTransactions(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachDetails(ctx, transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Update replaces the editable fields, shares, and positions of a
// transaction wholesale.
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateTransactionRequest) (*Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE transactions
		SET description = $2, value = $3, billed_at = $4, updated_at = NOW()
		WHERE id = $1 AND NOT deleted
		RETURNING id, type, description, value, currency_symbol, currency_conversion_rate, billed_at, deleted, created_at, updated_at
	`

	t := &Transaction{}
	err = tx.QueryRowContext(ctx, query, id, req.Description, req.Value, req.BilledAt).Scan(
		&t.ID,
		&t.Type,
		&t.Description,
		&t.Value,
		&t.CurrencySymbol,
		&t.CurrencyConversionRate,
		&t.BilledAt,
		&t.Deleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transaction_shares WHERE transaction_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to clear shares: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM position_usages WHERE position_id IN (SELECT id FROM positions WHERE transaction_id = $1)`, id); err != nil {
		return nil, fmt.Errorf("failed to clear position usages: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE transaction_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to clear positions: %w", err)
	}

	if err := insertShares(ctx, tx, id, ShareSideCreditor, req.CreditorShares); err != nil {
		return nil, err
	}
	if err := insertShares(ctx, tx, id, ShareSideDebitor, req.DebitorShares); err != nil {
		return nil, err
	}
	t.CreditorShares = req.CreditorShares
	t.DebitorShares = req.DebitorShares

	for _, p := range req.Positions {
		position, err := insertPosition(ctx, tx, id, p)
		if err != nil {
			return nil, err
		}
		t.Positions = append(t.Positions, position)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction update: %w", err)
	}
	return t, nil
}

// SoftDelete marks a transaction as deleted
func (r *Repository) SoftDelete(ctx context.Context, id int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE transactions SET deleted = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT deleted
	`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete transaction: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return affected > 0, nil
}

// attachDetails loads shares and positions for the given transactions.
func (r *Repository) attachDetails(ctx context.Context, transactions []*Transaction) error {
	if len(transactions) == 0 {
		return nil
	}
	byID := make(map[int64]*Transaction, len(transactions))
	ids := make([]int64, 0, len(transactions))
	for _, t := range transactions {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	shareRows, err := r.db.QueryContext(ctx, `
		SELECT transaction_id, side, account_id, weight
		FROM transaction_shares
		WHERE transaction_id = ANY($1)
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load shares: %w", err)
	}
	defer shareRows.Close()

	for shareRows.Next() {
		var txID, accountID int64
		var side ShareSide
		var weight float64
		if err := shareRows.Scan(&txID, &side, &accountID, &weight); err != nil {
			return fmt.Errorf("failed to scan share: %w", err)
		}
		t := byID[txID]
		switch side {
		case ShareSideCreditor:
			if t.CreditorShares == nil {
				t.CreditorShares = make(map[int64]float64)
			}
			t.CreditorShares[accountID] = weight
		case ShareSideDebitor:
			if t.DebitorShares == nil {
				t.DebitorShares = make(map[int64]float64)
			}
			t.DebitorShares[accountID] = weight
		}
	}
	if err := shareRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate shares: %w", err)
	}

	positionRows, err := r.db.QueryContext(ctx, `
		SELECT id, transaction_id, name, price, communist_shares, deleted
		FROM positions
		WHERE transaction_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load positions: %w", err)
	}
	defer positionRows.Close()

	positionsByID := make(map[int64]*Position)
	for positionRows.Next() {
		p := &Position{}
		if err := positionRows.Scan(&p.ID, &p.TransactionID, &p.Name, &p.Price, &p.CommunistShares, &p.Deleted); err != nil {
			return fmt.Errorf("failed to scan position: %w", err)
		}
		positionsByID[p.ID] = p
		byID[p.TransactionID].Positions = append(byID[p.TransactionID].Positions, p)
	}
	if err := positionRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate positions: %w", err)
	}

	if len(positionsByID) == 0 {
		return nil
	}
	positionIDs := make([]int64, 0, len(positionsByID))
	for id := range positionsByID {
		positionIDs = append(positionIDs, id)
	}

	usageRows, err := r.db.QueryContext(ctx, `
		SELECT position_id, account_id, weight
		FROM position_usages
		WHERE position_id = ANY($1)
	`, pq.Array(positionIDs))
	if err != nil {
		return fmt.Errorf("failed to load position usages: %w", err)
	}
	defer usageRows.Close()

	for usageRows.Next() {
		var positionID, accountID int64
		var weight float64
		if err := usageRows.Scan(&positionID, &accountID, &weight); err != nil {
			return fmt.Errorf("failed to scan position usage: %w", err)
		}
		p := positionsByID[positionID]
		if p.Usages == nil {
			p.Usages = make(map[int64]float64)
		}
		p.Usages[accountID] = weight
	}
	if err := usageRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate position usages: %w", err)
	}
	return nil
}

func scanTransactions(rows *sql.Rows) ([]*Transaction, error) {
	var transactions []*Transaction
	for rows.Next() {
		t := &Transaction{}
		if err := rows.Scan(
			&t.ID,
			&t.Type,
			&t.Description,
			&t.Value,
			&t.CurrencySymbol,
			&t.CurrencyConversionRate,
			&t.BilledAt,
			&t.Deleted,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

func insertShares(ctx context.Context, tx *sql.Tx, transactionID int64, side ShareSide, shares map[int64]float64) error {
	for accountID, weight := range shares {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transaction_shares (transaction_id, side, account_id, weight)
			VALUES ($1, $2, $3, $4)
		`, transactionID, side, accountID, weight)
		if err != nil {
			return fmt.Errorf("failed to insert %s share: %w", side, err)
		}
	}
	return nil
}

func insertPosition(ctx context.Context, tx *sql.Tx, transactionID int64, req *PositionRequest) (*Position, error) {
	query := `
		INSERT INTO positions (transaction_id, name, price, communist_shares)
		VALUES ($1, $2, $3, $4)
		RETURNING id, transaction_id, name, price, communist_shares, deleted
	`
	p := &Position{}
	err := tx.QueryRowContext(ctx, query, transactionID, req.Name, req.Price, req.CommunistShares).Scan(
		&p.ID,
		&p.TransactionID,
		&p.Name,
		&p.Price,
		&p.CommunistShares,
		&p.Deleted,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert position: %w", err)
	}

	for accountID, weight := range req.Usages {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO position_usages (position_id, account_id, weight)
			VALUES ($1, $2, $3)
		`, p.ID, accountID, weight)
		if err != nil {
			return nil, fmt.Errorf("failed to insert position usage: %w", err)
		}
	}
	p.Usages = req.Usages
	return p, nil
}
