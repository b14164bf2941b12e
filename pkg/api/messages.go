package api

import "github.com/shopspring/decimal"

// User is the public view of an account.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
}

// Auth

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Partner

// Invite is a pending partner link as seen by one of its two users.
type Invite struct {
	ID        string `json:"id"`
	From      *User  `json:"from"`
	To        *User  `json:"to"`
	Incoming  bool   `json:"incoming"`
	CreatedAt int64  `json:"createdAt"`
}

type PartnerStatusResponse struct {
	// Partner is nil when the user has no accepted link.
	Partner        *User     `json:"partner,omitempty"`
	LinkID         string    `json:"linkId,omitempty"`
	PendingInvites []*Invite `json:"pendingInvites"`
}

type InvitePartnerRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type InvitePartnerResponse struct {
	Invite *Invite `json:"invite"`
}

type RespondToInviteRequest struct {
	InviteID string `json:"inviteId" validate:"required"`
	Accept   bool   `json:"accept"`
}

type RespondToInviteResponse struct {
	Status  string `json:"status"`
	Partner *User  `json:"partner,omitempty"`
}

// Categories

type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

type ListCategoriesResponse struct {
	Categories []*Category `json:"categories"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type CreateCategoryResponse struct {
	Category *Category `json:"category"`
}

type RenameCategoryRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required,max=50"`
}

type RenameCategoryResponse struct {
	Category *Category `json:"category"`
}

type DeleteCategoryRequest struct {
	ID string `json:"id" validate:"required"`
}

type DeleteCategoryResponse struct{}

// Transactions

type Transaction struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userId"`
	CategoryID   string          `json:"categoryId"`
	CategoryName string          `json:"categoryName,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         string          `json:"date"`
	IsShared     bool            `json:"isShared"`
	PaidBy       string          `json:"paidBy,omitempty"`
	SettlementID string          `json:"settlementId,omitempty"`
	// Mine is true when the caller logged the transaction.
	Mine      bool  `json:"mine"`
	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

type ListTransactionsRequest struct {
	// Mode is all, personal or shared. Empty means all.
	Mode       string `json:"mode" validate:"omitempty,oneof=all personal shared"`
	CategoryID string `json:"categoryId"`
	From       string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

type ListTransactionsResponse struct {
	Transactions []*Transaction `json:"transactions"`
}

type CreateTransactionRequest struct {
	CategoryID  string          `json:"categoryId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"positive_decimal"`
	Description string          `json:"description" validate:"max=200"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	IsShared    bool            `json:"isShared"`
	// PaidBy is a user id, "split", or "partner". Ignored unless shared.
	PaidBy string `json:"paidBy"`
}

type CreateTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type UpdateTransactionRequest struct {
	ID          string          `json:"id" validate:"required"`
	CategoryID  string          `json:"categoryId" validate:"required"`
	Amount      decimal.Decimal `json:"amount" validate:"positive_decimal"`
	Description string          `json:"description" validate:"max=200"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
	IsShared    bool            `json:"isShared"`
	PaidBy      string          `json:"paidBy"`
}

type UpdateTransactionResponse struct {
	Transaction *Transaction `json:"transaction"`
}

type DeleteTransactionRequest struct {
	ID string `json:"id" validate:"required"`
}

type DeleteTransactionResponse struct{}

// Ledger

type BalanceResponse struct {
	MyPaid           decimal.Decimal `json:"myPaid"`
	PartnerPaid      decimal.Decimal `json:"partnerPaid"`
	SplitAmount      decimal.Decimal `json:"splitAmount"`
	TotalShared      decimal.Decimal `json:"totalShared"`
	Balance          decimal.Decimal `json:"balance"`
	TransactionCount int             `json:"transactionCount"`
	Partner          *User           `json:"partner,omitempty"`
}

type Settlement struct {
	ID              string          `json:"id"`
	BalanceSnapshot decimal.Decimal `json:"balanceSnapshot"`
	TotalShared     decimal.Decimal `json:"totalShared"`
	SettledBy       *User           `json:"settledBy,omitempty"`
	TransactionIDs  []string        `json:"transactionIds,omitempty"`
	CreatedAt       int64           `json:"createdAt"`
}

type SettleUpResponse struct {
	SettlementID            string          `json:"settlementId"`
	BalanceSnapshot         decimal.Decimal `json:"balanceSnapshot"`
	ClearedTransactionCount int             `json:"clearedTransactionCount"`
	TotalShared             decimal.Decimal `json:"totalShared"`
	Settlement              *Settlement     `json:"settlement"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

// Analytics

type MonthlyTrend struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

type CategorySpend struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
	Color    string          `json:"color"`
}

type AnalyticsSummary struct {
	TotalSpent           decimal.Decimal `json:"totalSpent"`
	AvgTransactionAmount decimal.Decimal `json:"avgTransactionAmount"`
	CurrentMonthSpent    decimal.Decimal `json:"currentMonthSpent"`
	MonthOverMonthChange decimal.Decimal `json:"monthOverMonthChange"`
	TotalTransactions    int             `json:"totalTransactions"`
}

type AnalyticsResponse struct {
	MonthlyTrends []*MonthlyTrend   `json:"monthlyTrends"`
	TopCategories []*CategorySpend  `json:"topCategories"`
	Summary       *AnalyticsSummary `json:"summary"`
}
