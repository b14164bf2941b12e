package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/duet/internal/auth"
	"github.com/mmynk/duet/internal/ledger"
	"github.com/mmynk/duet/internal/lock"
	"github.com/mmynk/duet/internal/metrics"
	"github.com/mmynk/duet/internal/storage/sqlite"
	"github.com/mmynk/duet/pkg/api"
	"github.com/mmynk/duet/pkg/api/apiconnect"
	"github.com/mmynk/duet/pkg/logging"
)

type testEnv struct {
	url          string
	auth         *apiconnect.AuthServiceClient
	partners     *apiconnect.PartnerServiceClient
	categories   *apiconnect.CategoryServiceClient
	transactions *apiconnect.TransactionServiceClient
	ledger       *apiconnect.LedgerServiceClient
	analytics    *apiconnect.AnalyticsServiceClient
}

type session struct {
	user  *api.User
	token string
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "duet.db"))
	require.NoError(t, err)

	logger := logging.Discard()
	handler := NewHandler(Deps{
		Store:      store,
		Ledger:     ledger.New(store, lock.Noop{}, logger),
		JWTManager: auth.NewJWTManager("test-secret", time.Hour),
		Metrics:    metrics.New(),
		Logger:     logger,
	})

	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})

	c := srv.Client()
	return &testEnv{
		url:          srv.URL,
		auth:         apiconnect.NewAuthServiceClient(c, srv.URL),
		partners:     apiconnect.NewPartnerServiceClient(c, srv.URL),
		categories:   apiconnect.NewCategoryServiceClient(c, srv.URL),
		transactions: apiconnect.NewTransactionServiceClient(c, srv.URL),
		ledger:       apiconnect.NewLedgerServiceClient(c, srv.URL),
		analytics:    apiconnect.NewAnalyticsServiceClient(c, srv.URL),
	}
}

// authed wraps msg in a request carrying s's session token.
func authed[T any](s *session, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+s.token)
	return req
}

func empty(s *session) *connect.Request[emptypb.Empty] {
	return authed(s, &emptypb.Empty{})
}

func (e *testEnv) register(t *testing.T, email, name string) *session {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		Password:    "password123",
		DisplayName: name,
	}))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Msg.Token)
	return &session{user: resp.Msg.User, token: resp.Msg.Token}
}

// link makes a and b partners.
func (e *testEnv) link(t *testing.T, a, b *session) {
	t.Helper()
	ctx := context.Background()
	inv, err := e.partners.InvitePartner(ctx, authed(a, &api.InvitePartnerRequest{Email: b.user.Email}))
	require.NoError(t, err)
	_, err = e.partners.RespondToInvite(ctx, authed(b, &api.RespondToInviteRequest{InviteID: inv.Msg.Invite.ID, Accept: true}))
	require.NoError(t, err)
}

func (e *testEnv) categoryID(t *testing.T, s *session, name string) string {
	t.Helper()
	resp, err := e.categories.ListCategories(context.Background(), empty(s))
	require.NoError(t, err)
	for _, c := range resp.Msg.Categories {
		if c.Name == name {
			return c.ID
		}
	}
	t.Fatalf("category %q not found", name)
	return ""
}

func (e *testEnv) spend(t *testing.T, s *session, amount string, shared bool, paidBy, date string) *api.Transaction {
	t.Helper()
	resp, err := e.transactions.CreateTransaction(context.Background(), authed(s, &api.CreateTransactionRequest{
		CategoryID:  e.categoryID(t, s, "Groceries"),
		Amount:      decimal.RequireFromString(amount),
		Description: "test",
		Date:        date,
		IsShared:    shared,
		PaidBy:      paidBy,
	}))
	require.NoError(t, err)
	return resp.Msg.Transaction
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func assertCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, connect.CodeOf(err), "error: %v", err)
}

func TestAuthFlow(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")

	me, err := env.auth.GetCurrentUser(ctx, empty(alice))
	require.NoError(t, err)
	assert.Equal(t, alice.user.ID, me.Msg.User.ID)
	assert.Equal(t, "Alice", me.Msg.User.DisplayName)

	cats, err := env.categories.ListCategories(ctx, empty(alice))
	require.NoError(t, err)
	assert.Len(t, cats.Msg.Categories, 8)

	login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "password123"}))
	require.NoError(t, err)
	assert.Equal(t, alice.user.ID, login.Msg.User.ID)

	_, err = env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "wrong-password"}))
	assertCode(t, connect.CodeUnauthenticated, err)

	_, err = env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "alice@example.com", Password: "password123", DisplayName: "A"}))
	assertCode(t, connect.CodeAlreadyExists, err)

	_, err = env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "short@example.com", Password: "short", DisplayName: "S"}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{Email: "not-an-email", Password: "password123", DisplayName: "N"}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.categories.ListCategories(ctx, connect.NewRequest(&emptypb.Empty{}))
	assertCode(t, connect.CodeUnauthenticated, err)

	_, err = env.ledger.GetBalance(ctx, empty(&session{token: "garbage"}))
	assertCode(t, connect.CodeUnauthenticated, err)
}

func TestPartnerFlow(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	carol := env.register(t, "carol@example.com", "Carol")

	_, err := env.partners.InvitePartner(ctx, authed(alice, &api.InvitePartnerRequest{Email: "alice@example.com"}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.partners.InvitePartner(ctx, authed(alice, &api.InvitePartnerRequest{Email: "nobody@example.com"}))
	assertCode(t, connect.CodeNotFound, err)

	inv, err := env.partners.InvitePartner(ctx, authed(alice, &api.InvitePartnerRequest{Email: "BOB@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, bob.user.ID, inv.Msg.Invite.To.ID)
	assert.False(t, inv.Msg.Invite.Incoming)

	_, err = env.partners.InvitePartner(ctx, authed(alice, &api.InvitePartnerRequest{Email: "bob@example.com"}))
	assertCode(t, connect.CodeAlreadyExists, err)

	status, err := env.partners.GetPartnerStatus(ctx, empty(bob))
	require.NoError(t, err)
	assert.Nil(t, status.Msg.Partner)
	require.Len(t, status.Msg.PendingInvites, 1)
	assert.True(t, status.Msg.PendingInvites[0].Incoming)
	assert.Equal(t, "Alice", status.Msg.PendingInvites[0].From.DisplayName)

	_, err = env.partners.RespondToInvite(ctx, authed(alice, &api.RespondToInviteRequest{InviteID: inv.Msg.Invite.ID, Accept: true}))
	assertCode(t, connect.CodePermissionDenied, err)

	accepted, err := env.partners.RespondToInvite(ctx, authed(bob, &api.RespondToInviteRequest{InviteID: inv.Msg.Invite.ID, Accept: true}))
	require.NoError(t, err)
	assert.Equal(t, "accepted", accepted.Msg.Status)
	assert.Equal(t, alice.user.ID, accepted.Msg.Partner.ID)

	_, err = env.partners.RespondToInvite(ctx, authed(bob, &api.RespondToInviteRequest{InviteID: inv.Msg.Invite.ID, Accept: false}))
	assertCode(t, connect.CodeFailedPrecondition, err)

	status, err = env.partners.GetPartnerStatus(ctx, empty(alice))
	require.NoError(t, err)
	require.NotNil(t, status.Msg.Partner)
	assert.Equal(t, bob.user.ID, status.Msg.Partner.ID)
	assert.Empty(t, status.Msg.PendingInvites)

	_, err = env.partners.InvitePartner(ctx, authed(carol, &api.InvitePartnerRequest{Email: "alice@example.com"}))
	assertCode(t, connect.CodeFailedPrecondition, err)

	_, err = env.partners.InvitePartner(ctx, authed(alice, &api.InvitePartnerRequest{Email: "carol@example.com"}))
	assertCode(t, connect.CodeFailedPrecondition, err)
}

func TestLedgerFlow(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")

	_, err := env.ledger.GetBalance(ctx, empty(alice))
	assertCode(t, connect.CodeFailedPrecondition, err)
	assert.Contains(t, err.Error(), ledger.ErrNoActivePartner.Error())

	env.link(t, alice, bob)

	_, err = env.ledger.SettleUp(ctx, empty(alice))
	assertCode(t, connect.CodeFailedPrecondition, err)
	assert.Contains(t, err.Error(), ledger.ErrNothingToSettle.Error())

	env.spend(t, alice, "100", true, alice.user.ID, "2024-03-01")
	bobPaid := env.spend(t, bob, "40", true, bob.user.ID, "2024-03-02")
	env.spend(t, bob, "60", true, "split", "2024-03-03")
	env.spend(t, bob, "500", false, "", "2024-03-04")

	// empty payer from bob resolves to his partner
	fromBob := env.spend(t, bob, "10", true, "", "2024-03-05")
	assert.Equal(t, alice.user.ID, fromBob.PaidBy)
	_, err = env.transactions.DeleteTransaction(ctx, authed(bob, &api.DeleteTransactionRequest{ID: fromBob.ID}))
	require.NoError(t, err)

	_, err = env.transactions.CreateTransaction(ctx, authed(alice, &api.CreateTransactionRequest{
		CategoryID: env.categoryID(t, alice, "Rent"),
		Amount:     decimal.NewFromInt(5),
		Date:       "2024-03-01",
		IsShared:   true,
		PaidBy:     "someone-else",
	}))
	assertCode(t, connect.CodeInvalidArgument, err)

	bal, err := env.ledger.GetBalance(ctx, empty(alice))
	require.NoError(t, err)
	assertDecimal(t, "100", bal.Msg.MyPaid)
	assertDecimal(t, "40", bal.Msg.PartnerPaid)
	assertDecimal(t, "30", bal.Msg.SplitAmount)
	assertDecimal(t, "170", bal.Msg.TotalShared)
	assertDecimal(t, "30", bal.Msg.Balance)
	assert.Equal(t, 3, bal.Msg.TransactionCount)
	assert.Equal(t, bob.user.ID, bal.Msg.Partner.ID)

	bobBal, err := env.ledger.GetBalance(ctx, empty(bob))
	require.NoError(t, err)
	assertDecimal(t, "-30", bobBal.Msg.Balance)

	settled, err := env.ledger.SettleUp(ctx, empty(bob))
	require.NoError(t, err)
	assert.NotEmpty(t, settled.Msg.SettlementID)
	assertDecimal(t, "-30", settled.Msg.BalanceSnapshot)
	assertDecimal(t, "170", settled.Msg.TotalShared)
	assert.Equal(t, 3, settled.Msg.ClearedTransactionCount)
	assert.Equal(t, "Bob", settled.Msg.Settlement.SettledBy.DisplayName)

	bal, err = env.ledger.GetBalance(ctx, empty(alice))
	require.NoError(t, err)
	assert.True(t, bal.Msg.Balance.IsZero())
	assert.Equal(t, 0, bal.Msg.TransactionCount)

	_, err = env.ledger.SettleUp(ctx, empty(alice))
	assertCode(t, connect.CodeFailedPrecondition, err)

	_, err = env.transactions.UpdateTransaction(ctx, authed(bob, &api.UpdateTransactionRequest{
		ID:         bobPaid.ID,
		CategoryID: bobPaid.CategoryID,
		Amount:     decimal.NewFromInt(41),
		Date:       "2024-03-02",
		IsShared:   true,
		PaidBy:     bob.user.ID,
	}))
	assertCode(t, connect.CodeFailedPrecondition, err)

	history, err := env.ledger.ListSettlements(ctx, empty(alice))
	require.NoError(t, err)
	require.Len(t, history.Msg.Settlements, 1)
	assert.Equal(t, settled.Msg.SettlementID, history.Msg.Settlements[0].ID)
	assert.Equal(t, bob.user.ID, history.Msg.Settlements[0].SettledBy.ID)
	assert.Len(t, history.Msg.Settlements[0].TransactionIDs, 3)

	resp, err := http.Get(env.url + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "duet_settlements_total 1")
	assert.Contains(t, string(body), "duet_settled_transactions_total 3")
}

func TestTransactionViews(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")
	env.link(t, alice, bob)

	env.spend(t, alice, "10", false, "", "2024-01-10")
	env.spend(t, alice, "20", true, "split", "2024-01-20")
	env.spend(t, bob, "30", true, "split", "2024-02-01")
	env.spend(t, bob, "40", false, "", "2024-02-02")

	list := func(req *api.ListTransactionsRequest) []*api.Transaction {
		t.Helper()
		resp, err := env.transactions.ListTransactions(ctx, authed(alice, req))
		require.NoError(t, err)
		return resp.Msg.Transactions
	}

	all := list(&api.ListTransactionsRequest{})
	require.Len(t, all, 3)
	assert.Equal(t, "2024-02-01", all[0].Date)
	assert.False(t, all[0].Mine)
	assert.Equal(t, "Groceries", all[0].CategoryName)

	assert.Len(t, list(&api.ListTransactionsRequest{Mode: "personal"}), 1)
	assert.Len(t, list(&api.ListTransactionsRequest{Mode: "shared"}), 2)
	assert.Len(t, list(&api.ListTransactionsRequest{From: "2024-01-15", To: "2024-01-31"}), 1)

	_, err := env.transactions.ListTransactions(ctx, authed(alice, &api.ListTransactionsRequest{Mode: "everything"}))
	assertCode(t, connect.CodeInvalidArgument, err)

	// bob's transactions are not alice's to change
	bobs, err := env.transactions.ListTransactions(ctx, authed(bob, &api.ListTransactionsRequest{Mode: "personal"}))
	require.NoError(t, err)
	require.Len(t, bobs.Msg.Transactions, 1)
	_, err = env.transactions.DeleteTransaction(ctx, authed(alice, &api.DeleteTransactionRequest{ID: bobs.Msg.Transactions[0].ID}))
	assertCode(t, connect.CodeNotFound, err)

	_, err = env.transactions.CreateTransaction(ctx, authed(alice, &api.CreateTransactionRequest{
		CategoryID: env.categoryID(t, bob, "Rent"),
		Amount:     decimal.NewFromInt(1),
		Date:       "2024-01-01",
	}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.transactions.CreateTransaction(ctx, authed(alice, &api.CreateTransactionRequest{
		CategoryID: env.categoryID(t, alice, "Rent"),
		Amount:     decimal.Zero,
		Date:       "2024-01-01",
	}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

func TestCategories(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	bob := env.register(t, "bob@example.com", "Bob")

	created, err := env.categories.CreateCategory(ctx, authed(alice, &api.CreateCategoryRequest{Name: "  Travel "}))
	require.NoError(t, err)
	assert.Equal(t, "Travel", created.Msg.Category.Name)

	_, err = env.categories.CreateCategory(ctx, authed(alice, &api.CreateCategoryRequest{Name: "Travel"}))
	assertCode(t, connect.CodeAlreadyExists, err)

	renamed, err := env.categories.RenameCategory(ctx, authed(alice, &api.RenameCategoryRequest{ID: created.Msg.Category.ID, Name: "Trips"}))
	require.NoError(t, err)
	assert.Equal(t, "Trips", renamed.Msg.Category.Name)

	_, err = env.categories.RenameCategory(ctx, authed(bob, &api.RenameCategoryRequest{ID: created.Msg.Category.ID, Name: "Mine"}))
	assertCode(t, connect.CodeNotFound, err)

	env.spend(t, alice, "12", false, "", "2024-01-01")
	_, err = env.categories.DeleteCategory(ctx, authed(alice, &api.DeleteCategoryRequest{ID: env.categoryID(t, alice, "Groceries")}))
	assertCode(t, connect.CodeFailedPrecondition, err)

	_, err = env.categories.DeleteCategory(ctx, authed(alice, &api.DeleteCategoryRequest{ID: created.Msg.Category.ID}))
	require.NoError(t, err)

	_, err = env.categories.DeleteCategory(ctx, authed(alice, &api.DeleteCategoryRequest{ID: created.Msg.Category.ID}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestAnalytics(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice := env.register(t, "alice@example.com", "Alice")
	env.spend(t, alice, "30", false, "", "2024-01-05")
	env.spend(t, alice, "70", true, "", "2024-02-05")

	resp, err := env.analytics.GetAnalytics(ctx, empty(alice))
	require.NoError(t, err)

	require.Len(t, resp.Msg.MonthlyTrends, 2)
	assert.Equal(t, "2024-01", resp.Msg.MonthlyTrends[0].Month)
	require.Len(t, resp.Msg.TopCategories, 1)
	assert.Equal(t, "Groceries", resp.Msg.TopCategories[0].Category)
	assert.Equal(t, 2, resp.Msg.TopCategories[0].Count)
	assertDecimal(t, "100", resp.Msg.Summary.TotalSpent)
	assertDecimal(t, "50", resp.Msg.Summary.AvgTransactionAmount)
	assert.Equal(t, 2, resp.Msg.Summary.TotalTransactions)
}

func TestHealthz(t *testing.T) {
	env := setupTestServer(t)

	resp, err := http.Get(env.url + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["database"])
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, env.url+apiconnect.LedgerServiceGetBalanceProcedure, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Authorization")
}
