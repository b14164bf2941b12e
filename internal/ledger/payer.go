package ledger

import "github.com/mmynk/duet/internal/models"

// Payer is who covered a shared expense, relative to the viewing user.
type Payer int

const (
	PayerUnknown Payer = iota
	PayerMe
	PayerPartner
	PayerSplit
)

func (p Payer) String() string {
	switch p {
	case PayerMe:
		return "me"
	case PayerPartner:
		return "partner"
	case PayerSplit:
		return "split"
	default:
		return "unknown"
	}
}

// ResolvePayer classifies a paidBy value from currentUserID's point of view.
//
// The legacy "partner" value is relative to whoever logged the transaction:
// when the current user logged it the partner paid, otherwise the current user did.
func ResolvePayer(paidBy, loggerID, currentUserID, partnerID string) Payer {
	switch {
	case paidBy == models.PaidBySplit:
		return PayerSplit
	case paidBy != "" && paidBy == currentUserID:
		return PayerMe
	case paidBy != "" && paidBy == partnerID:
		return PayerPartner
	case paidBy == models.PaidByPartnerLegacy:
		if loggerID == currentUserID {
			return PayerPartner
		}
		return PayerMe
	default:
		return PayerUnknown
	}
}

// NormalizePayer turns a client-supplied paidBy into the value stored on a
// transaction logged by userID. partnerID is empty when the user is unlinked.
//
// Personal transactions store no payer. "partner" and an empty value mean
// the partner paid, falling back to the user while unlinked. The legacy
// relative form is never written.
func NormalizePayer(paidBy string, isShared bool, userID, partnerID string) (string, error) {
	if !isShared {
		return "", nil
	}
	switch {
	case paidBy == models.PaidBySplit:
		return models.PaidBySplit, nil
	case paidBy == userID:
		return userID, nil
	case partnerID != "" && paidBy == partnerID:
		return partnerID, nil
	case paidBy == "" || paidBy == models.PaidByPartnerLegacy:
		if partnerID != "" {
			return partnerID, nil
		}
		return userID, nil
	default:
		return "", ErrInvalidPayer
	}
}
