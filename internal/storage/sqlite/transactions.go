package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/internal/storage"
)

const transactionColumns = `id, user_id, category_id, amount, description, date, is_shared,
	paid_by, settlement_id, created_at, updated_at`

// CreateTransaction persists a new transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	if t.UpdatedAt == 0 {
		t.UpdatedAt = t.CreatedAt
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.UserID, t.CategoryID, t.Amount.String(), t.Description, t.Date.Unix(), t.IsShared,
		nullable(t.PaidBy), nullable(t.SettlementID), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// GetTransaction retrieves a transaction by ID.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// UpdateTransaction overwrites the editable fields of an unsettled transaction.
func (s *SQLiteStore) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureUnsettled(ctx, tx, t.ID); err != nil {
			return err
		}

		t.UpdatedAt = time.Now().Unix()
		_, err := tx.ExecContext(ctx,
			`UPDATE transactions
			 SET category_id = ?, amount = ?, description = ?, date = ?, is_shared = ?, paid_by = ?, updated_at = ?
			 WHERE id = ?`,
			t.CategoryID, t.Amount.String(), t.Description, t.Date.Unix(), t.IsShared,
			nullable(t.PaidBy), t.UpdatedAt, t.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return nil
	})
}

// DeleteTransaction removes an unsettled transaction.
func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureUnsettled(ctx, tx, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		return nil
	})
}

func ensureUnsettled(ctx context.Context, q querier, id string) error {
	var settlementID sql.NullString
	err := q.QueryRowContext(ctx, "SELECT settlement_id FROM transactions WHERE id = ?", id).Scan(&settlementID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: transaction %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to check transaction: %w", err)
	}
	if settlementID.Valid {
		return storage.ErrTransactionSettled
	}
	return nil
}

// ListTransactions returns transactions visible to filter.UserID, newest first.
func (s *SQLiteStore) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error) {
	where, args := visibilityClause(filter)
	conds := []string{where}

	if filter.CategoryID != "" {
		conds = append(conds, "category_id = ?")
		args = append(args, filter.CategoryID)
	}
	if !filter.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, filter.From.Unix())
	}
	if !filter.To.IsZero() {
		conds = append(conds, "date <= ?")
		args = append(args, filter.To.Unix())
	}

	query := "SELECT " + transactionColumns + " FROM transactions WHERE " +
		strings.Join(conds, " AND ") + " ORDER BY date DESC, created_at DESC"

	return s.queryTransactions(ctx, query, args...)
}

// visibilityClause builds the view-mode condition.
//
//   - personal: own non-shared transactions
//   - shared: shared transactions of either partner (own only when unlinked)
//   - all: own transactions plus the partner's shared ones
func visibilityClause(f models.TransactionFilter) (string, []any) {
	switch f.Mode {
	case models.ViewPersonal:
		return "(user_id = ? AND is_shared = 0)", []any{f.UserID}
	case models.ViewShared:
		if f.PartnerID == "" {
			return "(user_id = ? AND is_shared = 1)", []any{f.UserID}
		}
		return "(is_shared = 1 AND user_id IN (?, ?))", []any{f.UserID, f.PartnerID}
	default:
		if f.PartnerID == "" {
			return "(user_id = ?)", []any{f.UserID}
		}
		return "(user_id = ? OR (user_id = ? AND is_shared = 1))", []any{f.UserID, f.PartnerID}
	}
}

// FindUnsettledSharedTransactions returns shared, unsettled transactions logged by either user.
func (s *SQLiteStore) FindUnsettledSharedTransactions(ctx context.Context, userA, userB string) ([]*models.Transaction, error) {
	return s.queryTransactions(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE is_shared = 1 AND settlement_id IS NULL AND user_id IN (?, ?)
		 ORDER BY date, created_at`,
		userA, userB,
	)
}

func (s *SQLiteStore) queryTransactions(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txs, nil
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	t := &models.Transaction{}
	var (
		amount       string
		date         int64
		paidBy       sql.NullString
		settlementID sql.NullString
	)
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.CategoryID,
		&amount,
		&t.Description,
		&date,
		&t.IsShared,
		&paidBy,
		&settlementID,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	t.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q on transaction %s: %w", amount, t.ID, err)
	}
	t.Date = time.Unix(date, 0).UTC()
	t.PaidBy = paidBy.String
	t.SettlementID = settlementID.String

	return t, nil
}
