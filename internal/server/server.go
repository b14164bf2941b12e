// Package server assembles the HTTP handler that serves every duet endpoint.
package server

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/duet/internal/auth"
	"github.com/mmynk/duet/internal/ledger"
	"github.com/mmynk/duet/internal/metrics"
	"github.com/mmynk/duet/internal/middleware"
	"github.com/mmynk/duet/internal/service"
	"github.com/mmynk/duet/internal/storage"
	"github.com/mmynk/duet/pkg/api/apiconnect"
)

// Deps are the collaborators the handler is built from.
type Deps struct {
	Store      storage.Store
	Ledger     *ledger.Ledger
	JWTManager *auth.JWTManager
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	// SecretGenerated is reported by /healthz.
	SecretGenerated bool
}

// NewHandler mounts the Connect services, /healthz and /metrics, wrapped in
// CORS and h2c so Connect clients can use HTTP/2 without TLS.
func NewHandler(d Deps) http.Handler {
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(d.Metrics),
		middleware.RequireAuth(d.JWTManager, apiconnect.PublicProcedures),
		middleware.LoggingInterceptor(d.Logger),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		service.NewAuthService(auth.NewPasswordAuthenticator(d.Store), d.JWTManager, d.Store, d.Logger),
		interceptors,
	))
	mux.Handle(apiconnect.NewPartnerServiceHandler(service.NewPartnerService(d.Store, d.Logger), interceptors))
	mux.Handle(apiconnect.NewCategoryServiceHandler(service.NewCategoryService(d.Store, d.Logger), interceptors))
	mux.Handle(apiconnect.NewTransactionServiceHandler(service.NewTransactionService(d.Store, d.Logger), interceptors))
	mux.Handle(apiconnect.NewLedgerServiceHandler(service.NewLedgerService(d.Ledger, d.Store, d.Metrics, d.Logger), interceptors))
	mux.Handle(apiconnect.NewAnalyticsServiceHandler(service.NewAnalyticsService(d.Store, d.Logger), interceptors))

	mux.Handle("/healthz", service.HealthHandler(d.Store, d.SecretGenerated, d.Logger))
	mux.Handle("/metrics", d.Metrics.Handler())

	return h2c.NewHandler(corsMiddleware(mux), &http2.Server{})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
