package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/duet/internal/ledger"
	"github.com/mmynk/duet/internal/lock"
	"github.com/mmynk/duet/internal/middleware"
	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/internal/storage/sqlite"
	"github.com/mmynk/duet/pkg/logging"
)

// failingUsers is a LedgerStore whose user lookups fail.
type failingUsers struct {
	*sqlite.SQLiteStore
}

func (failingUsers) GetUsersByIDs(context.Context, []string) (map[string]*models.User, error) {
	return nil, errors.New("users table unavailable")
}

type countingObserver struct{ cleared []int }

func (o *countingObserver) ObserveSettlement(n int) { o.cleared = append(o.cleared, n) }

func TestLedgerService_SettleUpSurvivesUserLookupFailure(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "duet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	alice := models.NewUser("alice@example.com", "Alice", "hash")
	bob := models.NewUser("bob@example.com", "Bob", "hash")
	require.NoError(t, store.CreateUser(ctx, alice))
	require.NoError(t, store.CreateUser(ctx, bob))

	link := &models.PartnerLink{User1ID: alice.ID, User2ID: bob.ID}
	require.NoError(t, store.CreatePartnerLink(ctx, link))
	_, err = store.AcceptPartnerLink(ctx, link.ID, time.Now().Unix())
	require.NoError(t, err)

	cat := &models.Category{UserID: alice.ID, Name: "Food"}
	require.NoError(t, store.CreateCategory(ctx, cat))
	require.NoError(t, store.CreateTransaction(ctx, &models.Transaction{
		UserID:     alice.ID,
		CategoryID: cat.ID,
		Amount:     decimal.RequireFromString("60"),
		Date:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		IsShared:   true,
		PaidBy:     alice.ID,
	}))

	logger := logging.Discard()
	observer := &countingObserver{}
	svc := NewLedgerService(ledger.New(store, lock.Noop{}, logger), failingUsers{store}, observer, logger)

	authed := middleware.WithUser(ctx, alice.ID, alice.Email)
	resp, err := svc.SettleUp(authed, connect.NewRequest(&emptypb.Empty{}))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Msg.ClearedTransactionCount)
	assert.Equal(t, "30", resp.Msg.BalanceSnapshot.String())
	assert.Equal(t, alice.ID, resp.Msg.Settlement.SettledBy.ID)
	assert.Equal(t, []int{1}, observer.cleared)

	// A retry sees the committed settlement.
	_, err = svc.SettleUp(authed, connect.NewRequest(&emptypb.Empty{}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}
