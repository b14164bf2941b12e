package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/duet/internal/models"
)

var two = decimal.NewFromInt(2)

// Balance is the state of shared spending between two partners,
// seen from the current user's side.
type Balance struct {
	MyPaid      decimal.Decimal // Paid in full by the current user
	PartnerPaid decimal.Decimal // Paid in full by the partner
	SplitAmount decimal.Decimal // Half of every split expense

	TotalShared   decimal.Decimal // MyPaid + PartnerPaid + SplitAmount
	ShouldPayEach decimal.Decimal // TotalShared / 2
	ActuallyPaid  decimal.Decimal // MyPaid + SplitAmount / 2

	// Balance is ActuallyPaid - ShouldPayEach.
	// Positive = partner owes the current user, negative = current user owes partner.
	Balance decimal.Decimal

	// TransactionCount is the number of transactions considered, resolved or not.
	TransactionCount int

	// Unresolved lists transactions whose payer matched neither partner nor split.
	// They contribute to none of the sums.
	Unresolved []string
}

// ComputeBalance sums unsettled shared transactions between currentUserID and partnerID.
// Callers pass only shared transactions with no settlement.
//
// Algorithm:
// - split: half the amount goes to SplitAmount
// - paid by me / partner: full amount goes to MyPaid / PartnerPaid
// - legacy "partner": resolved against the transaction's logger
// - anything else: recorded in Unresolved, not counted
// - balance = (MyPaid + SplitAmount/2) - TotalShared/2
//
// The result is independent of input order.
func ComputeBalance(txs []*models.Transaction, currentUserID, partnerID string) Balance {
	b := Balance{
		MyPaid:      decimal.Zero,
		PartnerPaid: decimal.Zero,
		SplitAmount: decimal.Zero,
	}

	for _, tx := range txs {
		b.TransactionCount++
		switch ResolvePayer(tx.PaidBy, tx.UserID, currentUserID, partnerID) {
		case PayerSplit:
			b.SplitAmount = b.SplitAmount.Add(tx.Amount.Div(two))
		case PayerMe:
			b.MyPaid = b.MyPaid.Add(tx.Amount)
		case PayerPartner:
			b.PartnerPaid = b.PartnerPaid.Add(tx.Amount)
		default:
			b.Unresolved = append(b.Unresolved, tx.ID)
		}
	}

	b.TotalShared = b.MyPaid.Add(b.PartnerPaid).Add(b.SplitAmount)
	b.ShouldPayEach = b.TotalShared.Div(two)
	b.ActuallyPaid = b.MyPaid.Add(b.SplitAmount.Div(two))
	b.Balance = b.ActuallyPaid.Sub(b.ShouldPayEach)

	return b
}

// IsZero reports whether nothing is owed either way.
func (b Balance) IsZero() bool {
	return b.Balance.IsZero()
}
