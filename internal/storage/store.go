// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/duet/internal/models"
)

var (
	// ErrNotFound is returned when a requested row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a unique constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")

	// ErrAlreadyPartnered is returned when accepting an invite while either
	// user already has an accepted partner.
	ErrAlreadyPartnered = errors.New("user already has an active partner")

	// ErrInviteNotPending is returned when responding to an invite that was
	// already accepted or rejected.
	ErrInviteNotPending = errors.New("invite already processed")

	// ErrCategoryInUse is returned when deleting a category that still has transactions.
	ErrCategoryInUse = errors.New("cannot delete category with existing transactions")

	// ErrTransactionSettled is returned when changing a transaction a settlement has claimed.
	ErrTransactionSettled = errors.New("transaction is already settled")
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail and GetUserByID return nil, nil when the user does not exist.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// GetUsersByIDs omits users that don't exist.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// PartnerStore persists partner links and their lifecycle.
type PartnerStore interface {
	CreatePartnerLink(ctx context.Context, link *models.PartnerLink) error
	GetPartnerLink(ctx context.Context, id string) (*models.PartnerLink, error)

	// FindAcceptedPartnerLink returns nil, nil when the user has no accepted link.
	FindAcceptedPartnerLink(ctx context.Context, userID string) (*models.PartnerLink, error)

	// FindPendingPartnerLink returns a pending link between the two users in
	// either direction, or nil, nil.
	FindPendingPartnerLink(ctx context.Context, userA, userB string) (*models.PartnerLink, error)

	// ListPendingPartnerLinks returns invites sent or received by the user.
	ListPendingPartnerLinks(ctx context.Context, userID string) ([]*models.PartnerLink, error)

	// AcceptPartnerLink atomically marks a pending link accepted, failing with
	// ErrAlreadyPartnered if either user gained an accepted link meanwhile.
	AcceptPartnerLink(ctx context.Context, id string, at int64) (*models.PartnerLink, error)

	// RejectPartnerLink marks a pending link rejected.
	RejectPartnerLink(ctx context.Context, id string, at int64) (*models.PartnerLink, error)
}

// CategoryStore persists categories.
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *models.Category) error

	// CreateCategories inserts several categories in one transaction.
	CreateCategories(ctx context.Context, categories []*models.Category) error

	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context, userID string) ([]*models.Category, error)
	RenameCategory(ctx context.Context, id, name string) error

	// DeleteCategory fails with ErrCategoryInUse while transactions reference it.
	DeleteCategory(ctx context.Context, id string) error
}

// TransactionStore persists transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// UpdateTransaction and DeleteTransaction fail with ErrTransactionSettled
	// once a settlement has claimed the transaction.
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	// ListTransactions returns matching transactions, newest date first.
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error)

	// FindUnsettledSharedTransactions returns shared transactions logged by
	// either user with no settlement.
	FindUnsettledSharedTransactions(ctx context.Context, userA, userB string) ([]*models.Transaction, error)
}

// SettlementStore persists settlements.
type SettlementStore interface {
	// CreateSettlement inserts the settlement and claims every listed
	// transaction atomically. Nothing is written if any of them is already
	// claimed (ledger.ErrNothingToSettle) or no longer matches the listed
	// row (ledger.ErrBalanceChanged).
	CreateSettlement(ctx context.Context, settlement *models.Settlement, claimed []*models.Transaction) error

	// ListSettlements returns the link's settlements, newest first.
	ListSettlements(ctx context.Context, partnerLinkID string, limit int) ([]*models.Settlement, error)
}

// Store defines the full storage surface.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	UserStore
	PartnerStore
	CategoryStore
	TransactionStore
	SettlementStore

	// Ping checks the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
