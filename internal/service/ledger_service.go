package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/duet/internal/ledger"
	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/internal/storage"
	"github.com/mmynk/duet/pkg/api"
)

// settlementHistoryLimit caps ListSettlements.
const settlementHistoryLimit = 20

// LedgerStore is the storage the ledger service reads directly.
type LedgerStore interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	FindAcceptedPartnerLink(ctx context.Context, userID string) (*models.PartnerLink, error)
	ListSettlements(ctx context.Context, partnerLinkID string, limit int) ([]*models.Settlement, error)
}

// SettlementObserver is told about every completed settle-up.
type SettlementObserver interface {
	ObserveSettlement(cleared int)
}

// LedgerService exposes the balance between partners and settle-up.
type LedgerService struct {
	ledger   *ledger.Ledger
	store    LedgerStore
	observer SettlementObserver
	logger   *slog.Logger
}

func NewLedgerService(l *ledger.Ledger, store LedgerStore, observer SettlementObserver, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		ledger:   l,
		store:    store,
		observer: observer,
		logger:   logger,
	}
}

// GetBalance returns the unsettled balance. Positive means the partner owes the caller.
func (s *LedgerService) GetBalance(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.BalanceResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	users, err := s.store.GetUsersByIDs(ctx, []string{summary.PartnerID})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.BalanceResponse{
		MyPaid:           summary.MyPaid,
		PartnerPaid:      summary.PartnerPaid,
		SplitAmount:      summary.SplitAmount,
		TotalShared:      summary.TotalShared,
		Balance:          summary.Balance.Balance,
		TransactionCount: summary.TransactionCount,
		Partner:          userOrID(users, summary.PartnerID),
	}), nil
}

// SettleUp clears every unsettled shared transaction between the partners.
func (s *LedgerService) SettleUp(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.SettleUpResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.ledger.SettleUp(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	s.observer.ObserveSettlement(result.Cleared)

	// The settlement is committed; a failed lookup only degrades the response.
	users, err := s.store.GetUsersByIDs(ctx, []string{userID})
	if err != nil {
		s.logger.Warn("Failed to load settling user",
			"settlement_id", result.Settlement.ID,
			"user_id", userID,
			"error", err,
		)
		users = nil
	}

	st := result.Settlement
	return connect.NewResponse(&api.SettleUpResponse{
		SettlementID:            st.ID,
		BalanceSnapshot:         st.BalanceSnapshot,
		ClearedTransactionCount: result.Cleared,
		TotalShared:             st.TotalShared,
		Settlement:              toAPISettlement(st, users),
	}), nil
}

// ListSettlements returns the most recent settlements of the caller's partnership.
func (s *LedgerService) ListSettlements(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.ListSettlementsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	link, err := s.store.FindAcceptedPartnerLink(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if link == nil {
		return nil, toConnectError(ledger.ErrNoActivePartner)
	}

	settlements, err := s.store.ListSettlements(ctx, link.ID, settlementHistoryLimit)
	if err != nil {
		return nil, toConnectError(err)
	}
	users, err := s.store.GetUsersByIDs(ctx, []string{link.User1ID, link.User2ID})
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.ListSettlementsResponse{Settlements: make([]*api.Settlement, len(settlements))}
	for i, st := range settlements {
		resp.Settlements[i] = toAPISettlement(st, users)
	}
	return connect.NewResponse(resp), nil
}

func toAPISettlement(st *models.Settlement, users map[string]*models.User) *api.Settlement {
	return &api.Settlement{
		ID:              st.ID,
		BalanceSnapshot: st.BalanceSnapshot,
		TotalShared:     st.TotalShared,
		SettledBy:       userOrID(users, st.SettledBy),
		TransactionIDs:  st.TransactionIDs,
		CreatedAt:       st.CreatedAt,
	}
}

var _ LedgerStore = (storage.Store)(nil)
