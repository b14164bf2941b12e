package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/duet/internal/ledger"
	"github.com/mmynk/duet/internal/models"
)

// Ensure SQLiteStore can back the ledger directly.
var _ ledger.Repository = (*SQLiteStore)(nil)

// CreateSettlement persists a new settlement and claims the given transactions.
//
// claimed must be the rows the settlement's snapshot was computed from. Inside
// one database transaction every row is re-read and compared on the fields
// that feed the balance. A row already claimed by another settlement yields
// ledger.ErrNothingToSettle; a row that was edited, unshared or deleted yields
// ledger.ErrBalanceChanged. Either way nothing is written.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement, claimed []*models.Transaction) error {
	if len(claimed) == 0 {
		return ledger.ErrNothingToSettle
	}

	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	ids := make([]string, len(claimed))
	for i, t := range claimed {
		ids[i] = t.ID
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := verifyClaim(ctx, tx, claimed); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO settlements (id, partner_link_id, settled_by, balance_snapshot, total_shared, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			settlement.ID, settlement.PartnerLinkID, settlement.SettledBy,
			settlement.BalanceSnapshot.String(), settlement.TotalShared.String(), settlement.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement: %w", err)
		}

		args := append([]any{settlement.ID}, stringArgs(ids)...)
		res, err := tx.ExecContext(ctx,
			`UPDATE transactions SET settlement_id = ?
			 WHERE settlement_id IS NULL AND is_shared = 1 AND id IN (`+placeholders(len(ids))+`)`,
			args...,
		)
		if err != nil {
			return fmt.Errorf("failed to claim transactions: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read claimed rows: %w", err)
		}
		if n != int64(len(ids)) {
			return ledger.ErrNothingToSettle
		}

		settlement.TransactionIDs = ids
		return nil
	})
}

// verifyClaim checks that every claimed row still looks the way it did when
// the balance was computed.
func verifyClaim(ctx context.Context, tx *sql.Tx, claimed []*models.Transaction) error {
	ids := make([]string, len(claimed))
	for i, t := range claimed {
		ids[i] = t.ID
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id IN ("+placeholders(len(ids))+")",
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("failed to reload claimed transactions: %w", err)
	}
	defer rows.Close()

	current := make(map[string]*models.Transaction, len(ids))
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return fmt.Errorf("failed to scan claimed transaction: %w", err)
		}
		current[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate claimed transactions: %w", err)
	}

	for _, want := range claimed {
		got, ok := current[want.ID]
		switch {
		case !ok:
			return ledger.ErrBalanceChanged
		case got.Settled():
			return ledger.ErrNothingToSettle
		case !got.IsShared,
			got.UserID != want.UserID,
			got.PaidBy != want.PaidBy,
			!got.Amount.Equal(want.Amount):
			return ledger.ErrBalanceChanged
		}
	}
	return nil
}

// ListSettlements retrieves the most recent settlements for a partner link.
func (s *SQLiteStore) ListSettlements(ctx context.Context, partnerLinkID string, limit int) ([]*models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, partner_link_id, settled_by, balance_snapshot, total_shared, created_at
		 FROM settlements WHERE partner_link_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		partnerLinkID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	byID := make(map[string]*models.Settlement)
	for rows.Next() {
		settlement := &models.Settlement{}
		var snapshot, total string
		if err := rows.Scan(&settlement.ID, &settlement.PartnerLinkID, &settlement.SettledBy,
			&snapshot, &total, &settlement.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		if settlement.BalanceSnapshot, err = decimal.NewFromString(snapshot); err != nil {
			return nil, fmt.Errorf("invalid balance snapshot on settlement %s: %w", settlement.ID, err)
		}
		if settlement.TotalShared, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("invalid total on settlement %s: %w", settlement.ID, err)
		}
		settlements = append(settlements, settlement)
		byID[settlement.ID] = settlement
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}
	rows.Close()

	if len(settlements) == 0 {
		return settlements, nil
	}

	ids := make([]string, len(settlements))
	for i, st := range settlements {
		ids[i] = st.ID
	}
	txRows, err := s.db.QueryContext(ctx,
		"SELECT id, settlement_id FROM transactions WHERE settlement_id IN ("+placeholders(len(ids))+") ORDER BY date, created_at",
		stringArgs(ids)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settled transactions: %w", err)
	}
	defer txRows.Close()

	for txRows.Next() {
		var txID, settlementID string
		if err := txRows.Scan(&txID, &settlementID); err != nil {
			return nil, fmt.Errorf("failed to scan settled transaction: %w", err)
		}
		st := byID[settlementID]
		st.TransactionIDs = append(st.TransactionIDs, txID)
	}
	if err := txRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settled transactions: %w", err)
	}

	return settlements, nil
}
