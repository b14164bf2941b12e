package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthStatus struct {
	Status          string `json:"status"`
	Database        string `json:"database"`
	SecretGenerated bool   `json:"secretGenerated"`
}

// HealthHandler serves GET /healthz. It answers 503 while the database is unreachable.
// secretGenerated reports that JWT_SECRET was not configured and sessions
// will not survive a restart.
func HealthHandler(db Pinger, secretGenerated bool, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := healthStatus{Status: "ok", Database: "ok", SecretGenerated: secretGenerated}
		code := http.StatusOK
		if err := db.Ping(ctx); err != nil {
			logger.Error("Health check failed", "error", err)
			status.Status = "unavailable"
			status.Database = "unreachable"
			code = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	})
}
