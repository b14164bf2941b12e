package ledger

import "errors"

var (
	// ErrUnauthenticated is returned when no user is attached to the request.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrNoActivePartner is returned when the user has no accepted partner link.
	ErrNoActivePartner = errors.New("no active partner")

	// ErrNothingToSettle is returned when there are no unsettled shared
	// transactions, or a concurrent settle-up claimed them first.
	ErrNothingToSettle = errors.New("nothing to settle")

	// ErrBalanceChanged is returned when a shared transaction was edited or
	// removed between computing a balance and claiming it.
	ErrBalanceChanged = errors.New("shared transactions changed during settle-up")

	// ErrInvalidPayer is returned when a paidBy value does not resolve to
	// either partner or to a split.
	ErrInvalidPayer = errors.New("paid_by must be you, your partner, or split")
)
