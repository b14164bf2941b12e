// Package ledger computes the running balance between two partners and
// settles it up.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/duet/internal/models"
)

// Repository is the storage the ledger needs.
type Repository interface {
	// FindAcceptedPartnerLink returns nil, nil when the user has no accepted link.
	FindAcceptedPartnerLink(ctx context.Context, userID string) (*models.PartnerLink, error)

	// FindUnsettledSharedTransactions returns shared transactions logged by
	// either user that no settlement has claimed yet.
	FindUnsettledSharedTransactions(ctx context.Context, userA, userB string) ([]*models.Transaction, error)

	// CreateSettlement stores the settlement and claims every listed
	// transaction in one atomic step. It stores nothing and returns
	// ErrNothingToSettle if any listed transaction was already claimed, or
	// ErrBalanceChanged if one no longer matches the listed row.
	CreateSettlement(ctx context.Context, settlement *models.Settlement, claimed []*models.Transaction) error
}

// Locker runs fn while holding a named lock.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(context.Context) error) error
}

// settleAttempts bounds how often SettleUp recomputes after ErrBalanceChanged.
const settleAttempts = 3

// Summary is a Balance together with the partnership it was computed for.
type Summary struct {
	Balance
	LinkID    string
	PartnerID string
}

// SettleResult describes a completed settle-up.
type SettleResult struct {
	Settlement *models.Settlement
	Cleared    int
}

// Ledger answers balance queries and performs settle-ups.
type Ledger struct {
	repo   Repository
	locker Locker
	logger *slog.Logger
}

// New creates a Ledger. locker serialises settle-ups per partner link.
func New(repo Repository, locker Locker, logger *slog.Logger) *Ledger {
	return &Ledger{
		repo:   repo,
		locker: locker,
		logger: logger,
	}
}

// Balance returns the unsettled balance between userID and their partner.
func (l *Ledger) Balance(ctx context.Context, userID string) (*Summary, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	link, partnerID, err := l.activeLink(ctx, userID)
	if err != nil {
		return nil, err
	}

	txs, err := l.repo.FindUnsettledSharedTransactions(ctx, userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shared transactions: %w", err)
	}

	balance := ComputeBalance(txs, userID, partnerID)
	l.warnUnresolved(userID, link.ID, balance.Unresolved)

	return &Summary{
		Balance:   balance,
		LinkID:    link.ID,
		PartnerID: partnerID,
	}, nil
}

// SettleUp records a settlement that clears every unsettled shared transaction
// between userID and their partner, snapshotting the balance at that moment.
func (l *Ledger) SettleUp(ctx context.Context, userID string) (*SettleResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	link, partnerID, err := l.activeLink(ctx, userID)
	if err != nil {
		return nil, err
	}

	var result *SettleResult
	err = l.locker.WithLock(ctx, settleLockKey(link.ID), func(ctx context.Context) error {
		for attempt := 1; ; attempt++ {
			res, err := l.settleOnce(ctx, userID, partnerID, link.ID)
			if err == nil {
				result = res
				return nil
			}
			if !errors.Is(err, ErrBalanceChanged) || attempt == settleAttempts {
				return err
			}
			l.logger.Debug("Shared transactions changed during settle-up, retrying",
				"link_id", link.ID,
				"attempt", attempt,
			)
		}
	})
	if err != nil {
		if errors.Is(err, ErrNothingToSettle) || errors.Is(err, ErrBalanceChanged) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to settle up: %w", err)
	}

	l.logger.Info("Settled up",
		"settlement_id", result.Settlement.ID,
		"link_id", link.ID,
		"user_id", userID,
		"cleared", result.Cleared,
		"balance", result.Settlement.BalanceSnapshot.String(),
	)
	return result, nil
}

// settleOnce snapshots the unsettled balance and claims exactly the rows the
// snapshot was computed from.
func (l *Ledger) settleOnce(ctx context.Context, userID, partnerID, linkID string) (*SettleResult, error) {
	txs, err := l.repo.FindUnsettledSharedTransactions(ctx, userID, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shared transactions: %w", err)
	}
	if len(txs) == 0 {
		return nil, ErrNothingToSettle
	}

	balance := ComputeBalance(txs, userID, partnerID)
	l.warnUnresolved(userID, linkID, balance.Unresolved)

	settlement := &models.Settlement{
		PartnerLinkID:   linkID,
		SettledBy:       userID,
		BalanceSnapshot: balance.Balance,
		TotalShared:     balance.TotalShared,
	}
	if err := l.repo.CreateSettlement(ctx, settlement, txs); err != nil {
		return nil, err
	}
	return &SettleResult{Settlement: settlement, Cleared: len(txs)}, nil
}

func (l *Ledger) activeLink(ctx context.Context, userID string) (*models.PartnerLink, string, error) {
	link, err := l.repo.FindAcceptedPartnerLink(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to find partner link: %w", err)
	}
	if link == nil {
		return nil, "", ErrNoActivePartner
	}
	return link, link.PartnerOf(userID), nil
}

func (l *Ledger) warnUnresolved(userID, linkID string, ids []string) {
	if len(ids) == 0 {
		return
	}
	l.logger.Warn("Shared transactions with unresolvable payer ignored",
		"user_id", userID,
		"link_id", linkID,
		"transaction_ids", ids,
	)
}

func settleLockKey(linkID string) string {
	return "duet:settle:" + linkID
}
