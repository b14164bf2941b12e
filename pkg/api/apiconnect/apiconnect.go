// Package apiconnect wires the duet services to Connect handlers and clients.
package apiconnect

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/duet/pkg/api"
)

// ServicePrefix is the path prefix shared by all duet procedures.
const ServicePrefix = "/duet.v1."

const (
	AuthServiceName        = "duet.v1.AuthService"
	PartnerServiceName     = "duet.v1.PartnerService"
	CategoryServiceName    = "duet.v1.CategoryService"
	TransactionServiceName = "duet.v1.TransactionService"
	LedgerServiceName      = "duet.v1.LedgerService"
	AnalyticsServiceName   = "duet.v1.AnalyticsService"
)

const (
	AuthServiceRegisterProcedure       = "/duet.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/duet.v1.AuthService/Login"
	AuthServiceGetCurrentUserProcedure = "/duet.v1.AuthService/GetCurrentUser"

	PartnerServiceGetPartnerStatusProcedure = "/duet.v1.PartnerService/GetPartnerStatus"
	PartnerServiceInvitePartnerProcedure    = "/duet.v1.PartnerService/InvitePartner"
	PartnerServiceRespondToInviteProcedure  = "/duet.v1.PartnerService/RespondToInvite"

	CategoryServiceListCategoriesProcedure = "/duet.v1.CategoryService/ListCategories"
	CategoryServiceCreateCategoryProcedure = "/duet.v1.CategoryService/CreateCategory"
	CategoryServiceRenameCategoryProcedure = "/duet.v1.CategoryService/RenameCategory"
	CategoryServiceDeleteCategoryProcedure = "/duet.v1.CategoryService/DeleteCategory"

	TransactionServiceListTransactionsProcedure  = "/duet.v1.TransactionService/ListTransactions"
	TransactionServiceCreateTransactionProcedure = "/duet.v1.TransactionService/CreateTransaction"
	TransactionServiceUpdateTransactionProcedure = "/duet.v1.TransactionService/UpdateTransaction"
	TransactionServiceDeleteTransactionProcedure = "/duet.v1.TransactionService/DeleteTransaction"

	LedgerServiceGetBalanceProcedure      = "/duet.v1.LedgerService/GetBalance"
	LedgerServiceSettleUpProcedure        = "/duet.v1.LedgerService/SettleUp"
	LedgerServiceListSettlementsProcedure = "/duet.v1.LedgerService/ListSettlements"

	AnalyticsServiceGetAnalyticsProcedure = "/duet.v1.AnalyticsService/GetAnalytics"
)

// PublicProcedures can be called without a session token.
var PublicProcedures = map[string]bool{
	AuthServiceRegisterProcedure: true,
	AuthServiceLoginProcedure:    true,
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}

// mount routes each procedure path to its handler under one service prefix.
func mount(serviceName string, handlers map[string]http.Handler) (string, http.Handler) {
	return "/" + serviceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
