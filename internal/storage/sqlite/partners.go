package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/internal/storage"
)

const partnerColumns = "id, user1_id, user2_id, invited_by, status, created_at, responded_at"

// CreatePartnerLink persists a new partner link.
func (s *SQLiteStore) CreatePartnerLink(ctx context.Context, link *models.PartnerLink) error {
	if link.ID == "" {
		link.ID = uuid.New().String()
	}
	if link.CreatedAt == 0 {
		link.CreatedAt = time.Now().Unix()
	}
	if link.Status == "" {
		link.Status = models.PartnerPending
	}
	if link.InvitedBy == "" {
		link.InvitedBy = link.User1ID
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO partner_links ("+partnerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		link.ID, link.User1ID, link.User2ID, link.InvitedBy, string(link.Status), link.CreatedAt, link.RespondedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert partner link: %w", err)
	}

	return nil
}

// GetPartnerLink retrieves a partner link by ID.
func (s *SQLiteStore) GetPartnerLink(ctx context.Context, id string) (*models.PartnerLink, error) {
	return getPartnerLink(ctx, s.db, id)
}

func getPartnerLink(ctx context.Context, q querier, id string) (*models.PartnerLink, error) {
	link, err := scanPartnerLink(q.QueryRowContext(ctx,
		"SELECT "+partnerColumns+" FROM partner_links WHERE id = ?", id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: partner link %s", storage.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get partner link: %w", err)
	}
	return link, nil
}

// FindAcceptedPartnerLink returns the user's accepted link, or nil if there is none.
func (s *SQLiteStore) FindAcceptedPartnerLink(ctx context.Context, userID string) (*models.PartnerLink, error) {
	return findAcceptedPartnerLink(ctx, s.db, userID)
}

func findAcceptedPartnerLink(ctx context.Context, q querier, userID string) (*models.PartnerLink, error) {
	link, err := scanPartnerLink(q.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partner_links
		 WHERE status = ? AND (user1_id = ? OR user2_id = ?)
		 ORDER BY responded_at DESC LIMIT 1`,
		string(models.PartnerAccepted), userID, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find accepted partner link: %w", err)
	}
	return link, nil
}

// FindPendingPartnerLink returns a pending link between the two users in either direction.
func (s *SQLiteStore) FindPendingPartnerLink(ctx context.Context, userA, userB string) (*models.PartnerLink, error) {
	link, err := scanPartnerLink(s.db.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partner_links
		 WHERE status = ?
		   AND ((user1_id = ? AND user2_id = ?) OR (user1_id = ? AND user2_id = ?))
		 LIMIT 1`,
		string(models.PartnerPending), userA, userB, userB, userA,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pending partner link: %w", err)
	}
	return link, nil
}

// ListPendingPartnerLinks returns pending invites sent or received by the user.
func (s *SQLiteStore) ListPendingPartnerLinks(ctx context.Context, userID string) ([]*models.PartnerLink, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+partnerColumns+` FROM partner_links
		 WHERE status = ? AND (user1_id = ? OR user2_id = ?)
		 ORDER BY created_at DESC`,
		string(models.PartnerPending), userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending partner links: %w", err)
	}
	defer rows.Close()

	var links []*models.PartnerLink
	for rows.Next() {
		link, err := scanPartnerLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner link: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate partner links: %w", err)
	}

	return links, nil
}

// AcceptPartnerLink marks a pending link accepted.
// The at-most-one-accepted-link rule is re-checked inside the same transaction.
func (s *SQLiteStore) AcceptPartnerLink(ctx context.Context, id string, at int64) (*models.PartnerLink, error) {
	var link *models.PartnerLink
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		link, err = getPartnerLink(ctx, tx, id)
		if err != nil {
			return err
		}
		if link.Status != models.PartnerPending {
			return storage.ErrInviteNotPending
		}

		for _, userID := range []string{link.User1ID, link.User2ID} {
			existing, err := findAcceptedPartnerLink(ctx, tx, userID)
			if err != nil {
				return err
			}
			if existing != nil {
				return storage.ErrAlreadyPartnered
			}
		}

		if err := setPartnerStatus(ctx, tx, id, models.PartnerAccepted, at); err != nil {
			return err
		}
		link.Status = models.PartnerAccepted
		link.RespondedAt = at
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

// RejectPartnerLink marks a pending link rejected.
func (s *SQLiteStore) RejectPartnerLink(ctx context.Context, id string, at int64) (*models.PartnerLink, error) {
	var link *models.PartnerLink
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		link, err = getPartnerLink(ctx, tx, id)
		if err != nil {
			return err
		}
		if link.Status != models.PartnerPending {
			return storage.ErrInviteNotPending
		}
		if err := setPartnerStatus(ctx, tx, id, models.PartnerRejected, at); err != nil {
			return err
		}
		link.Status = models.PartnerRejected
		link.RespondedAt = at
		return nil
	})
	if err != nil {
		return nil, err
	}
	return link, nil
}

func setPartnerStatus(ctx context.Context, q querier, id string, status models.PartnerStatus, at int64) error {
	_, err := q.ExecContext(ctx,
		"UPDATE partner_links SET status = ?, responded_at = ? WHERE id = ?",
		string(status), at, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update partner link status: %w", err)
	}
	return nil
}

func scanPartnerLink(row scanner) (*models.PartnerLink, error) {
	link := &models.PartnerLink{}
	var status string
	if err := row.Scan(
		&link.ID,
		&link.User1ID,
		&link.User2ID,
		&link.InvitedBy,
		&status,
		&link.CreatedAt,
		&link.RespondedAt,
	); err != nil {
		return nil, err
	}
	link.Status = models.PartnerStatus(status)
	return link, nil
}
