// Package service implements the duet Connect RPC services.
package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/duet/internal/auth"
	"github.com/mmynk/duet/internal/ledger"
	"github.com/mmynk/duet/internal/middleware"
	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/internal/storage"
	"github.com/mmynk/duet/internal/validation"
	"github.com/mmynk/duet/pkg/api"
)

var errInvalidDate = errors.New("date must be formatted YYYY-MM-DD")

// currentUser returns the authenticated caller's ID.
func currentUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, ledger.ErrUnauthenticated)
	}
	return userID, nil
}

// validate runs struct-tag validation on a request message.
func validate(msg any) error {
	if err := validation.Struct(msg); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

// toConnectError maps domain and storage errors to Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}

	switch {
	case errors.Is(err, ledger.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)

	case errors.Is(err, ledger.ErrNoActivePartner),
		errors.Is(err, ledger.ErrNothingToSettle),
		errors.Is(err, storage.ErrAlreadyPartnered),
		errors.Is(err, storage.ErrInviteNotPending),
		errors.Is(err, storage.ErrCategoryInUse),
		errors.Is(err, storage.ErrTransactionSettled):
		return connect.NewError(connect.CodeFailedPrecondition, err)

	case errors.Is(err, ledger.ErrInvalidPayer),
		errors.Is(err, validation.ErrValidationFailed),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, errInvalidDate):
		return connect.NewError(connect.CodeInvalidArgument, err)

	case errors.Is(err, ledger.ErrBalanceChanged):
		return connect.NewError(connect.CodeAborted, err)

	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)

	case errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)

	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)

	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func toAPIUser(u *models.User) *api.User {
	if u == nil {
		return nil
	}
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
