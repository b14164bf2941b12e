package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"

	"github.com/mmynk/duet/internal/auth"
	"github.com/mmynk/duet/internal/ledger"
	"github.com/mmynk/duet/internal/middleware"
	"github.com/mmynk/duet/internal/storage"
	"github.com/mmynk/duet/internal/validation"
	"github.com/mmynk/duet/pkg/logging"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{ledger.ErrUnauthenticated, connect.CodeUnauthenticated},
		{ledger.ErrNoActivePartner, connect.CodeFailedPrecondition},
		{ledger.ErrNothingToSettle, connect.CodeFailedPrecondition},
		{ledger.ErrBalanceChanged, connect.CodeAborted},
		{fmt.Errorf("wrapped: %w", storage.ErrTransactionSettled), connect.CodeFailedPrecondition},
		{storage.ErrCategoryInUse, connect.CodeFailedPrecondition},
		{storage.ErrAlreadyPartnered, connect.CodeFailedPrecondition},
		{storage.ErrInviteNotPending, connect.CodeFailedPrecondition},
		{ledger.ErrInvalidPayer, connect.CodeInvalidArgument},
		{fmt.Errorf("%w: 'amount'", validation.ErrValidationFailed), connect.CodeInvalidArgument},
		{auth.ErrWeakPassword, connect.CodeInvalidArgument},
		{errInvalidDate, connect.CodeInvalidArgument},
		{fmt.Errorf("%w: transaction t1", storage.ErrNotFound), connect.CodeNotFound},
		{storage.ErrAlreadyExists, connect.CodeAlreadyExists},
		{auth.ErrEmailExists, connect.CodeAlreadyExists},
		{context.DeadlineExceeded, connect.CodeDeadlineExceeded},
		{errors.New("disk on fire"), connect.CodeInternal},
		{connect.NewError(connect.CodePermissionDenied, errors.New("no")), connect.CodePermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, connect.CodeOf(toConnectError(tt.err)))
		})
	}
}

func TestNoActivePartnerAndNothingToSettleAreDistinct(t *testing.T) {
	a := toConnectError(ledger.ErrNoActivePartner)
	b := toConnectError(ledger.ErrNothingToSettle)
	assert.Equal(t, connect.CodeOf(a), connect.CodeOf(b))
	assert.NotEqual(t, a.Error(), b.Error())
}

func TestCurrentUser(t *testing.T) {
	_, err := currentUser(context.Background())
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	id, err := currentUser(middleware.WithUser(context.Background(), "u1", "u1@example.com"))
	assert.NoError(t, err)
	assert.Equal(t, "u1", id)
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	logger := logging.Discard()

	t.Run("healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(pinger{}, true, logger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok","database":"ok","secretGenerated":true}`, rec.Body.String())
	})

	t.Run("database down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(pinger{err: errors.New("closed")}, false, logger).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable","database":"unreachable","secretGenerated":false}`, rec.Body.String())
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(pinger{}, false, logger).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
