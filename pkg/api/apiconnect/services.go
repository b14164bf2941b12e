package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/duet/pkg/api"
)

// AuthServiceHandler is implemented by the auth service.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	GetCurrentUser(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc and returns the path to mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return mount(AuthServiceName, map[string]http.Handler{
		AuthServiceRegisterProcedure:       connect.NewUnaryHandler(AuthServiceRegisterProcedure, svc.Register, opts...),
		AuthServiceLoginProcedure:          connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...),
		AuthServiceGetCurrentUserProcedure: connect.NewUnaryHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts...),
	})
}

// AuthServiceClient calls the auth service.
type AuthServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login          *connect.Client[api.LoginRequest, api.LoginResponse]
	getCurrentUser *connect.Client[emptypb.Empty, api.GetCurrentUserResponse]
}

func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	opts = clientOptions(opts)
	return &AuthServiceClient{
		register:       connect.NewClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL+AuthServiceRegisterProcedure, opts...),
		login:          connect.NewClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		getCurrentUser: connect.NewClient[emptypb.Empty, api.GetCurrentUserResponse](httpClient, baseURL+AuthServiceGetCurrentUserProcedure, opts...),
	}
}

func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}

// PartnerServiceHandler is implemented by the partner service.
type PartnerServiceHandler interface {
	GetPartnerStatus(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.PartnerStatusResponse], error)
	InvitePartner(context.Context, *connect.Request[api.InvitePartnerRequest]) (*connect.Response[api.InvitePartnerResponse], error)
	RespondToInvite(context.Context, *connect.Request[api.RespondToInviteRequest]) (*connect.Response[api.RespondToInviteResponse], error)
}

func NewPartnerServiceHandler(svc PartnerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return mount(PartnerServiceName, map[string]http.Handler{
		PartnerServiceGetPartnerStatusProcedure: connect.NewUnaryHandler(PartnerServiceGetPartnerStatusProcedure, svc.GetPartnerStatus, opts...),
		PartnerServiceInvitePartnerProcedure:    connect.NewUnaryHandler(PartnerServiceInvitePartnerProcedure, svc.InvitePartner, opts...),
		PartnerServiceRespondToInviteProcedure:  connect.NewUnaryHandler(PartnerServiceRespondToInviteProcedure, svc.RespondToInvite, opts...),
	})
}

type PartnerServiceClient struct {
	getPartnerStatus *connect.Client[emptypb.Empty, api.PartnerStatusResponse]
	invitePartner    *connect.Client[api.InvitePartnerRequest, api.InvitePartnerResponse]
	respondToInvite  *connect.Client[api.RespondToInviteRequest, api.RespondToInviteResponse]
}

func NewPartnerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PartnerServiceClient {
	opts = clientOptions(opts)
	return &PartnerServiceClient{
		getPartnerStatus: connect.NewClient[emptypb.Empty, api.PartnerStatusResponse](httpClient, baseURL+PartnerServiceGetPartnerStatusProcedure, opts...),
		invitePartner:    connect.NewClient[api.InvitePartnerRequest, api.InvitePartnerResponse](httpClient, baseURL+PartnerServiceInvitePartnerProcedure, opts...),
		respondToInvite:  connect.NewClient[api.RespondToInviteRequest, api.RespondToInviteResponse](httpClient, baseURL+PartnerServiceRespondToInviteProcedure, opts...),
	}
}

func (c *PartnerServiceClient) GetPartnerStatus(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.PartnerStatusResponse], error) {
	return c.getPartnerStatus.CallUnary(ctx, req)
}

func (c *PartnerServiceClient) InvitePartner(ctx context.Context, req *connect.Request[api.InvitePartnerRequest]) (*connect.Response[api.InvitePartnerResponse], error) {
	return c.invitePartner.CallUnary(ctx, req)
}

func (c *PartnerServiceClient) RespondToInvite(ctx context.Context, req *connect.Request[api.RespondToInviteRequest]) (*connect.Response[api.RespondToInviteResponse], error) {
	return c.respondToInvite.CallUnary(ctx, req)
}

// CategoryServiceHandler is implemented by the category service.
type CategoryServiceHandler interface {
	ListCategories(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListCategoriesResponse], error)
	CreateCategory(context.Context, *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error)
	RenameCategory(context.Context, *connect.Request[api.RenameCategoryRequest]) (*connect.Response[api.RenameCategoryResponse], error)
	DeleteCategory(context.Context, *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error)
}

func NewCategoryServiceHandler(svc CategoryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return mount(CategoryServiceName, map[string]http.Handler{
		CategoryServiceListCategoriesProcedure: connect.NewUnaryHandler(CategoryServiceListCategoriesProcedure, svc.ListCategories, opts...),
		CategoryServiceCreateCategoryProcedure: connect.NewUnaryHandler(CategoryServiceCreateCategoryProcedure, svc.CreateCategory, opts...),
		CategoryServiceRenameCategoryProcedure: connect.NewUnaryHandler(CategoryServiceRenameCategoryProcedure, svc.RenameCategory, opts...),
		CategoryServiceDeleteCategoryProcedure: connect.NewUnaryHandler(CategoryServiceDeleteCategoryProcedure, svc.DeleteCategory, opts...),
	})
}

type CategoryServiceClient struct {
	listCategories *connect.Client[emptypb.Empty, api.ListCategoriesResponse]
	createCategory *connect.Client[api.CreateCategoryRequest, api.CreateCategoryResponse]
	renameCategory *connect.Client[api.RenameCategoryRequest, api.RenameCategoryResponse]
	deleteCategory *connect.Client[api.DeleteCategoryRequest, api.DeleteCategoryResponse]
}

func NewCategoryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CategoryServiceClient {
	opts = clientOptions(opts)
	return &CategoryServiceClient{
		listCategories: connect.NewClient[emptypb.Empty, api.ListCategoriesResponse](httpClient, baseURL+CategoryServiceListCategoriesProcedure, opts...),
		createCategory: connect.NewClient[api.CreateCategoryRequest, api.CreateCategoryResponse](httpClient, baseURL+CategoryServiceCreateCategoryProcedure, opts...),
		renameCategory: connect.NewClient[api.RenameCategoryRequest, api.RenameCategoryResponse](httpClient, baseURL+CategoryServiceRenameCategoryProcedure, opts...),
		deleteCategory: connect.NewClient[api.DeleteCategoryRequest, api.DeleteCategoryResponse](httpClient, baseURL+CategoryServiceDeleteCategoryProcedure, opts...),
	}
}

func (c *CategoryServiceClient) ListCategories(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}

func (c *CategoryServiceClient) CreateCategory(ctx context.Context, req *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error) {
	return c.createCategory.CallUnary(ctx, req)
}

func (c *CategoryServiceClient) RenameCategory(ctx context.Context, req *connect.Request[api.RenameCategoryRequest]) (*connect.Response[api.RenameCategoryResponse], error) {
	return c.renameCategory.CallUnary(ctx, req)
}

func (c *CategoryServiceClient) DeleteCategory(ctx context.Context, req *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error) {
	return c.deleteCategory.CallUnary(ctx, req)
}

// TransactionServiceHandler is implemented by the transaction service.
type TransactionServiceHandler interface {
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
	CreateTransaction(context.Context, *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error)
}

func NewTransactionServiceHandler(svc TransactionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return mount(TransactionServiceName, map[string]http.Handler{
		TransactionServiceListTransactionsProcedure:  connect.NewUnaryHandler(TransactionServiceListTransactionsProcedure, svc.ListTransactions, opts...),
		TransactionServiceCreateTransactionProcedure: connect.NewUnaryHandler(TransactionServiceCreateTransactionProcedure, svc.CreateTransaction, opts...),
		TransactionServiceUpdateTransactionProcedure: connect.NewUnaryHandler(TransactionServiceUpdateTransactionProcedure, svc.UpdateTransaction, opts...),
		TransactionServiceDeleteTransactionProcedure: connect.NewUnaryHandler(TransactionServiceDeleteTransactionProcedure, svc.DeleteTransaction, opts...),
	})
}

type TransactionServiceClient struct {
	listTransactions  *connect.Client[api.ListTransactionsRequest, api.ListTransactionsResponse]
	createTransaction *connect.Client[api.CreateTransactionRequest, api.CreateTransactionResponse]
	updateTransaction *connect.Client[api.UpdateTransactionRequest, api.UpdateTransactionResponse]
	deleteTransaction *connect.Client[api.DeleteTransactionRequest, api.DeleteTransactionResponse]
}

func NewTransactionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TransactionServiceClient {
	opts = clientOptions(opts)
	return &TransactionServiceClient{
		listTransactions:  connect.NewClient[api.ListTransactionsRequest, api.ListTransactionsResponse](httpClient, baseURL+TransactionServiceListTransactionsProcedure, opts...),
		createTransaction: connect.NewClient[api.CreateTransactionRequest, api.CreateTransactionResponse](httpClient, baseURL+TransactionServiceCreateTransactionProcedure, opts...),
		updateTransaction: connect.NewClient[api.UpdateTransactionRequest, api.UpdateTransactionResponse](httpClient, baseURL+TransactionServiceUpdateTransactionProcedure, opts...),
		deleteTransaction: connect.NewClient[api.DeleteTransactionRequest, api.DeleteTransactionResponse](httpClient, baseURL+TransactionServiceDeleteTransactionProcedure, opts...),
	}
}

func (c *TransactionServiceClient) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *TransactionServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *TransactionServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *TransactionServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

// LedgerServiceHandler is implemented by the ledger service.
type LedgerServiceHandler interface {
	GetBalance(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.BalanceResponse], error)
	SettleUp(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.SettleUpResponse], error)
	ListSettlements(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.ListSettlementsResponse], error)
}

func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return mount(LedgerServiceName, map[string]http.Handler{
		LedgerServiceGetBalanceProcedure:      connect.NewUnaryHandler(LedgerServiceGetBalanceProcedure, svc.GetBalance, opts...),
		LedgerServiceSettleUpProcedure:        connect.NewUnaryHandler(LedgerServiceSettleUpProcedure, svc.SettleUp, opts...),
		LedgerServiceListSettlementsProcedure: connect.NewUnaryHandler(LedgerServiceListSettlementsProcedure, svc.ListSettlements, opts...),
	})
}

type LedgerServiceClient struct {
	getBalance      *connect.Client[emptypb.Empty, api.BalanceResponse]
	settleUp        *connect.Client[emptypb.Empty, api.SettleUpResponse]
	listSettlements *connect.Client[emptypb.Empty, api.ListSettlementsResponse]
}

func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	opts = clientOptions(opts)
	return &LedgerServiceClient{
		getBalance:      connect.NewClient[emptypb.Empty, api.BalanceResponse](httpClient, baseURL+LedgerServiceGetBalanceProcedure, opts...),
		settleUp:        connect.NewClient[emptypb.Empty, api.SettleUpResponse](httpClient, baseURL+LedgerServiceSettleUpProcedure, opts...),
		listSettlements: connect.NewClient[emptypb.Empty, api.ListSettlementsResponse](httpClient, baseURL+LedgerServiceListSettlementsProcedure, opts...),
	}
}

func (c *LedgerServiceClient) GetBalance(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.BalanceResponse], error) {
	return c.getBalance.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SettleUp(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.SettleUpResponse], error) {
	return c.settleUp.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListSettlements(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

// AnalyticsServiceHandler is implemented by the analytics service.
type AnalyticsServiceHandler interface {
	GetAnalytics(context.Context, *connect.Request[emptypb.Empty]) (*connect.Response[api.AnalyticsResponse], error)
}

func NewAnalyticsServiceHandler(svc AnalyticsServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	return mount(AnalyticsServiceName, map[string]http.Handler{
		AnalyticsServiceGetAnalyticsProcedure: connect.NewUnaryHandler(AnalyticsServiceGetAnalyticsProcedure, svc.GetAnalytics, opts...),
	})
}

type AnalyticsServiceClient struct {
	getAnalytics *connect.Client[emptypb.Empty, api.AnalyticsResponse]
}

func NewAnalyticsServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AnalyticsServiceClient {
	opts = clientOptions(opts)
	return &AnalyticsServiceClient{
		getAnalytics: connect.NewClient[emptypb.Empty, api.AnalyticsResponse](httpClient, baseURL+AnalyticsServiceGetAnalyticsProcedure, opts...),
	}
}

func (c *AnalyticsServiceClient) GetAnalytics(ctx context.Context, req *connect.Request[emptypb.Empty]) (*connect.Response[api.AnalyticsResponse], error) {
	return c.getAnalytics.CallUnary(ctx, req)
}
