package models

import "github.com/shopspring/decimal"

// Settlement closes out a batch of shared transactions between two partners.
// It is created once per settle-up and never modified.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// PartnerLinkID is the link the settlement belongs to.
	PartnerLinkID string

	// SettledBy is the user who triggered the settle-up.
	SettledBy string

	// BalanceSnapshot is the balance from SettledBy's point of view at settle time.
	// Positive = the partner owed SettledBy.
	BalanceSnapshot decimal.Decimal

	// TotalShared is the sum of shared spending covered by the settlement.
	TotalShared decimal.Decimal

	// TransactionIDs are the transactions cleared by this settlement.
	TransactionIDs []string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64
}
