package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/duet/internal/auth"
	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/internal/storage"
	"github.com/mmynk/duet/pkg/api"
)

var (
	errInviteSelf       = errors.New("you cannot invite yourself")
	errAlreadyPartnered = errors.New("you already have an active partner")
	errInviteeTaken     = errors.New("this user already has an active partner")
	errInviteExists     = errors.New("invite already sent")
	errNotInviteeOfLink = errors.New("only the invited user can respond")
	errInviteeNotFound  = errors.New("user with this email not found")
)

// PartnerStore is the storage the partner service needs.
type PartnerStore interface {
	storage.UserStore
	storage.PartnerStore
}

// PartnerService manages partner invites and links.
type PartnerService struct {
	store  PartnerStore
	logger *slog.Logger
}

func NewPartnerService(store PartnerStore, logger *slog.Logger) *PartnerService {
	return &PartnerService{store: store, logger: logger}
}

// GetPartnerStatus returns the accepted partner, if any, and pending invites.
func (s *PartnerService) GetPartnerStatus(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.PartnerStatusResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	link, err := s.store.FindAcceptedPartnerLink(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	pending, err := s.store.ListPendingPartnerLinks(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	ids := []string{userID}
	if link != nil {
		ids = append(ids, link.PartnerOf(userID))
	}
	for _, p := range pending {
		ids = append(ids, p.User1ID, p.User2ID)
	}
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.PartnerStatusResponse{PendingInvites: make([]*api.Invite, 0, len(pending))}
	if link != nil {
		resp.LinkID = link.ID
		resp.Partner = toAPIUser(users[link.PartnerOf(userID)])
	}
	for _, p := range pending {
		resp.PendingInvites = append(resp.PendingInvites, toAPIInvite(p, userID, users))
	}
	return connect.NewResponse(resp), nil
}

// InvitePartner sends an invite to the user registered under the given email.
func (s *PartnerService) InvitePartner(ctx context.Context, req *connect.Request[api.InvitePartnerRequest]) (*connect.Response[api.InvitePartnerResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req.Msg); err != nil {
		return nil, err
	}

	existing, err := s.store.FindAcceptedPartnerLink(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if existing != nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errAlreadyPartnered)
	}

	invitee, err := s.store.GetUserByEmail(ctx, auth.NormalizeEmail(req.Msg.Email))
	if err != nil {
		return nil, toConnectError(err)
	}
	if invitee == nil {
		return nil, connect.NewError(connect.CodeNotFound, errInviteeNotFound)
	}
	if invitee.ID == userID {
		return nil, connect.NewError(connect.CodeInvalidArgument, errInviteSelf)
	}

	taken, err := s.store.FindAcceptedPartnerLink(ctx, invitee.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if taken != nil {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errInviteeTaken)
	}

	dup, err := s.store.FindPendingPartnerLink(ctx, userID, invitee.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if dup != nil {
		return nil, connect.NewError(connect.CodeAlreadyExists, errInviteExists)
	}

	link := &models.PartnerLink{
		User1ID:   userID,
		User2ID:   invitee.ID,
		InvitedBy: userID,
		Status:    models.PartnerPending,
	}
	if err := s.store.CreatePartnerLink(ctx, link); err != nil {
		s.logger.Error("Failed to create invite", "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	inviter, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Partner invite sent", "link_id", link.ID, "from", userID, "to", invitee.ID)
	users := map[string]*models.User{invitee.ID: invitee}
	if inviter != nil {
		users[userID] = inviter
	}
	return connect.NewResponse(&api.InvitePartnerResponse{
		Invite: toAPIInvite(link, userID, users),
	}), nil
}

// RespondToInvite accepts or rejects a pending invite. Only the invitee may respond.
func (s *PartnerService) RespondToInvite(ctx context.Context, req *connect.Request[api.RespondToInviteRequest]) (*connect.Response[api.RespondToInviteResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req.Msg); err != nil {
		return nil, err
	}

	link, err := s.store.GetPartnerLink(ctx, req.Msg.InviteID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if link.User2ID != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errNotInviteeOfLink)
	}

	now := time.Now().Unix()
	if !req.Msg.Accept {
		updated, err := s.store.RejectPartnerLink(ctx, link.ID, now)
		if err != nil {
			return nil, toConnectError(err)
		}
		s.logger.Info("Partner invite rejected", "link_id", link.ID, "user_id", userID)
		return connect.NewResponse(&api.RespondToInviteResponse{Status: string(updated.Status)}), nil
	}

	updated, err := s.store.AcceptPartnerLink(ctx, link.ID, now)
	if err != nil {
		s.logger.Warn("Failed to accept invite", "link_id", link.ID, "user_id", userID, "error", err)
		return nil, toConnectError(err)
	}

	partner, err := s.store.GetUserByID(ctx, updated.PartnerOf(userID))
	if err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Partner invite accepted", "link_id", link.ID, "user_id", userID)
	return connect.NewResponse(&api.RespondToInviteResponse{
		Status:  string(updated.Status),
		Partner: toAPIUser(partner),
	}), nil
}

func toAPIInvite(link *models.PartnerLink, viewerID string, users map[string]*models.User) *api.Invite {
	return &api.Invite{
		ID:        link.ID,
		From:      userOrID(users, link.User1ID),
		To:        userOrID(users, link.User2ID),
		Incoming:  link.User2ID == viewerID,
		CreatedAt: link.CreatedAt,
	}
}

func userOrID(users map[string]*models.User, id string) *api.User {
	if u, ok := users[id]; ok {
		return toAPIUser(u)
	}
	return &api.User{ID: id}
}
