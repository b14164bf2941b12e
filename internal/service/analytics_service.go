package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/duet/internal/analytics"
	"github.com/mmynk/duet/internal/models"
	"github.com/mmynk/duet/pkg/api"
)

// AnalyticsStore is the storage the analytics service needs.
type AnalyticsStore interface {
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]*models.Transaction, error)
	ListCategories(ctx context.Context, userID string) ([]*models.Category, error)
}

// AnalyticsService reports spending trends over the caller's own transactions.
type AnalyticsService struct {
	store  AnalyticsStore
	now    func() time.Time
	logger *slog.Logger
}

func NewAnalyticsService(store AnalyticsStore, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now, logger: logger}
}

func (s *AnalyticsService) GetAnalytics(ctx context.Context, _ *connect.Request[emptypb.Empty]) (*connect.Response[api.AnalyticsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	// no PartnerID: only transactions the caller logged
	txs, err := s.store.ListTransactions(ctx, models.TransactionFilter{UserID: userID, Mode: models.ViewAll})
	if err != nil {
		return nil, toConnectError(err)
	}
	categories, err := s.store.ListCategories(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	report := analytics.Summarize(txs, names, s.now())

	resp := &api.AnalyticsResponse{
		MonthlyTrends: make([]*api.MonthlyTrend, len(report.Months)),
		TopCategories: make([]*api.CategorySpend, len(report.TopCategories)),
		Summary: &api.AnalyticsSummary{
			TotalSpent:           report.Summary.TotalSpent,
			AvgTransactionAmount: report.Summary.AvgAmount,
			CurrentMonthSpent:    report.Summary.CurrentMonthSpent,
			MonthOverMonthChange: report.Summary.MonthOverMonthChange,
			TotalTransactions:    report.Summary.TotalTransactions,
		},
	}
	for i, m := range report.Months {
		resp.MonthlyTrends[i] = &api.MonthlyTrend{Month: m.Key, Total: m.Total, Count: m.Count}
	}
	for i, c := range report.TopCategories {
		resp.TopCategories[i] = &api.CategorySpend{Category: c.Name, Total: c.Total, Count: c.Count, Color: c.Color}
	}
	return connect.NewResponse(resp), nil
}
