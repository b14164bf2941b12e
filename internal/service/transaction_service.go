package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/duet/internal/ledger"
	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/internal/storage"
	"github.com/mmynk/duet/pkg/api"
)

const dateLayout = "2006-01-02"

var errInvalidCategory = errors.New("invalid category")

// TransactionStore is the storage the transaction service needs.
type TransactionStore interface {
	storage.TransactionStore
	FindAcceptedPartnerLink(ctx context.Context, userID string) (*models.PartnerLink, error)
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context, userID string) ([]*models.Category, error)
}

// TransactionService manages transactions.
type TransactionService struct {
	store  TransactionStore
	logger *slog.Logger
}

func NewTransactionService(store TransactionStore, logger *slog.Logger) *TransactionService {
	return &TransactionService{store: store, logger: logger}
}

// ListTransactions returns the caller's view of transactions, newest first.
// The all view includes the partner's shared transactions.
func (s *TransactionService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req.Msg); err != nil {
		return nil, err
	}

	partnerID, err := s.partnerID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	filter := models.TransactionFilter{
		UserID:     userID,
		PartnerID:  partnerID,
		Mode:       models.ViewAll,
		CategoryID: req.Msg.CategoryID,
	}
	if req.Msg.Mode != "" {
		filter.Mode = models.ViewMode(req.Msg.Mode)
	}
	if filter.From, err = parseOptionalDate(req.Msg.From); err != nil {
		return nil, toConnectError(err)
	}
	if filter.To, err = parseOptionalDate(req.Msg.To); err != nil {
		return nil, toConnectError(err)
	}

	txs, err := s.store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, toConnectError(err)
	}

	names, err := s.categoryNames(ctx, userID, partnerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.ListTransactionsResponse{Transactions: make([]*api.Transaction, len(txs))}
	for i, t := range txs {
		resp.Transactions[i] = toAPITransaction(t, userID, names[t.CategoryID])
	}
	return connect.NewResponse(resp), nil
}

func (s *TransactionService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req.Msg); err != nil {
		return nil, err
	}

	t := &models.Transaction{UserID: userID}
	category, err := s.apply(ctx, t, fields{
		categoryID:  req.Msg.CategoryID,
		amount:      req.Msg.Amount,
		description: req.Msg.Description,
		date:        req.Msg.Date,
		isShared:    req.Msg.IsShared,
		paidBy:      req.Msg.PaidBy,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateTransaction(ctx, t); err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Transaction created",
		"user_id", userID,
		"transaction_id", t.ID,
		"shared", t.IsShared,
		"paid_by", t.PaidBy,
	)
	return connect.NewResponse(&api.CreateTransactionResponse{
		Transaction: toAPITransaction(t, userID, category.Name),
	}), nil
}

// UpdateTransaction edits one of the caller's unsettled transactions.
func (s *TransactionService) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req.Msg); err != nil {
		return nil, err
	}

	t, err := s.ownedTransaction(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if t.Settled() {
		return nil, toConnectError(storage.ErrTransactionSettled)
	}

	category, err := s.apply(ctx, t, fields{
		categoryID:  req.Msg.CategoryID,
		amount:      req.Msg.Amount,
		description: req.Msg.Description,
		date:        req.Msg.Date,
		isShared:    req.Msg.IsShared,
		paidBy:      req.Msg.PaidBy,
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateTransaction(ctx, t); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.UpdateTransactionResponse{
		Transaction: toAPITransaction(t, userID, category.Name),
	}), nil
}

// DeleteTransaction removes one of the caller's unsettled transactions.
func (s *TransactionService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req.Msg); err != nil {
		return nil, err
	}

	t, err := s.ownedTransaction(ctx, userID, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteTransaction(ctx, t.ID); err != nil {
		return nil, toConnectError(err)
	}

	s.logger.Info("Transaction deleted", "user_id", userID, "transaction_id", t.ID)
	return connect.NewResponse(&api.DeleteTransactionResponse{}), nil
}

// fields are the editable parts of a transaction as sent by a client.
type fields struct {
	categoryID  string
	amount      decimal.Decimal
	description string
	date        string
	isShared    bool
	paidBy      string
}

// apply checks f and copies it onto t, normalising the payer.
func (s *TransactionService) apply(ctx context.Context, t *models.Transaction, f fields) (*models.Category, error) {
	date, err := time.Parse(dateLayout, f.date)
	if err != nil {
		return nil, toConnectError(fmt.Errorf("%w: %q", errInvalidDate, f.date))
	}

	category, err := s.store.GetCategory(ctx, f.categoryID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && category.UserID != t.UserID) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errInvalidCategory)
	}
	if err != nil {
		return nil, toConnectError(err)
	}

	partnerID, err := s.partnerID(ctx, t.UserID)
	if err != nil {
		return nil, toConnectError(err)
	}
	paidBy, err := ledger.NormalizePayer(strings.TrimSpace(f.paidBy), f.isShared, t.UserID, partnerID)
	if err != nil {
		return nil, toConnectError(err)
	}

	t.CategoryID = category.ID
	t.Amount = f.amount
	t.Description = strings.TrimSpace(f.description)
	t.Date = date
	t.IsShared = f.isShared
	t.PaidBy = paidBy
	return category, nil
}

func (s *TransactionService) ownedTransaction(ctx context.Context, userID, id string) (*models.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return nil, toConnectError(err)
	}
	if t.UserID != userID {
		return nil, toConnectError(fmt.Errorf("%w: transaction %s", storage.ErrNotFound, id))
	}
	return t, nil
}

func (s *TransactionService) partnerID(ctx context.Context, userID string) (string, error) {
	link, err := s.store.FindAcceptedPartnerLink(ctx, userID)
	if err != nil || link == nil {
		return "", err
	}
	return link.PartnerOf(userID), nil
}

// categoryNames maps category IDs of the user and partner to their names.
func (s *TransactionService) categoryNames(ctx context.Context, userIDs ...string) (map[string]string, error) {
	names := make(map[string]string)
	for _, id := range userIDs {
		if id == "" {
			continue
		}
		categories, err := s.store.ListCategories(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, c := range categories {
			names[c.ID] = c.Name
		}
	}
	return names, nil
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", errInvalidDate, s)
	}
	return d, nil
}

func toAPITransaction(t *models.Transaction, viewerID, categoryName string) *api.Transaction {
	return &api.Transaction{
		ID:           t.ID,
		UserID:       t.UserID,
		CategoryID:   t.CategoryID,
		CategoryName: categoryName,
		Amount:       t.Amount,
		Description:  t.Description,
		Date:         t.Date.UTC().Format(dateLayout),
		IsShared:     t.IsShared,
		PaidBy:       t.PaidBy,
		SettlementID: t.SettlementID,
		Mine:         t.UserID == viewerID,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
