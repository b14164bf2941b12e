package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// PaidBySplit marks a shared expense whose cost is divided evenly.
	PaidBySplit = "split"

	// PaidByPartnerLegacy is the old relative form of "the other person paid".
	// It is resolved against the transaction's logger. New writes never store it.
	PaidByPartnerLegacy = "partner"
)

// Transaction is an expense logged by one user.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// UserID is the owner (logger) of the transaction.
	UserID string

	// CategoryID references one of the owner's categories.
	CategoryID string

	// Amount is always positive.
	Amount decimal.Decimal

	Description string

	// Date is the day the expense happened (UTC midnight).
	Date time.Time

	// IsShared marks the expense as relevant to both partners.
	IsShared bool

	// PaidBy is a user ID, PaidBySplit, or PaidByPartnerLegacy.
	// Empty for personal transactions.
	PaidBy string

	// SettlementID is set once a settlement clears the transaction.
	SettlementID string

	CreatedAt int64
	UpdatedAt int64
}

// Settled reports whether a settlement has claimed the transaction.
func (t *Transaction) Settled() bool {
	return t.SettlementID != ""
}

// ViewMode selects which transactions a listing returns.
type ViewMode string

const (
	// ViewAll is the user's own transactions plus the partner's shared ones.
	ViewAll ViewMode = "all"
	// ViewPersonal is the user's own non-shared transactions.
	ViewPersonal ViewMode = "personal"
	// ViewShared is shared transactions logged by either partner.
	ViewShared ViewMode = "shared"
)

// TransactionFilter narrows a transaction listing.
type TransactionFilter struct {
	// UserID is the requesting user.
	UserID string

	// PartnerID is the accepted partner, empty when unlinked.
	PartnerID string

	Mode       ViewMode
	CategoryID string

	// From and To bound Date inclusively. Zero values are open ends.
	From time.Time
	To   time.Time
}
