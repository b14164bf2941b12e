package models

// PartnerStatus is the lifecycle state of a partner link.
type PartnerStatus string

const (
	PartnerPending  PartnerStatus = "pending"
	PartnerAccepted PartnerStatus = "accepted"
	PartnerRejected PartnerStatus = "rejected"
)

// PartnerLink connects exactly two users.
// User1 is always the inviter, User2 the invitee.
type PartnerLink struct {
	// ID is the unique identifier for the link (UUID format).
	ID string

	// User1ID is the user who sent the invite.
	User1ID string

	// User2ID is the user who received the invite.
	User2ID string

	// InvitedBy is the user who initiated the link. Equal to User1ID.
	InvitedBy string

	// Status is pending until the invitee accepts or rejects.
	Status PartnerStatus

	// CreatedAt is the Unix timestamp when the invite was sent.
	CreatedAt int64

	// RespondedAt is the Unix timestamp of accept/reject, 0 while pending.
	RespondedAt int64
}

// PartnerOf returns the other user on the link, or "" if userID is not on it.
func (l *PartnerLink) PartnerOf(userID string) string {
	switch userID {
	case l.User1ID:
		return l.User2ID
	case l.User2ID:
		return l.User1ID
	default:
		return ""
	}
}

// Involves reports whether userID is one of the two linked users.
func (l *PartnerLink) Involves(userID string) bool {
	return l.User1ID == userID || l.User2ID == userID
}
