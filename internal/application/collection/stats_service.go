package collection

import (
	"context"
	"encoding/json"

	"github.com/callbridge/backend/internal/domain/collection"
	"github.com/callbridge/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// SampleDataThreshold is the customer count from which the store is
// reported as seeded
const SampleDataThreshold = 5

// StoreHealth summarises the collections store for health probes
type StoreHealth struct {
	Customers     int64 `json:"customers"`
	Loans         int64 `json:"loans"`
	Interactions  int64 `json:"interactions"`
	HasSampleData bool  `json:"has_sample_data"`
}

// DashboardStats is the portfolio overview
type DashboardStats struct {
	TotalCustomers int64       `json:"total_customers"`
	TotalLoans     int64       `json:"total_loans"`
	ActiveLoans    int64       `json:"active_loans"`
	PastDueLoans   int64       `json:"past_due_loans"`
	TotalPortfolio json.Number `json:"total_portfolio"`
}

// StatsService answers read-only portfolio and health queries
type StatsService struct {
	repo   collection.StatsRepository
	logger *zap.Logger
}

// NewStatsService creates a new StatsService
func NewStatsService(repo collection.StatsRepository, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, logger: logger}
}

// StoreHealth counts records in the store
func (s *StatsService) StoreHealth(ctx context.Context) (*StoreHealth, error) {
	counts, err := s.repo.CountRecords(ctx)
	if err != nil {
		s.logger.Error("Failed to count records", zap.Error(err))
		return nil, shared.NewPersistenceFault(err)
	}
	return &StoreHealth{
		Customers:     counts.Customers,
		Loans:         counts.Loans,
		Interactions:  counts.Interactions,
		HasSampleData: counts.Customers >= SampleDataThreshold,
	}, nil
}

// DashboardStats summarises the loan book
func (s *StatsService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats, err := s.repo.PortfolioStats(ctx)
	if err != nil {
		s.logger.Error("Failed to load portfolio statistics", zap.Error(err))
		return nil, shared.NewPersistenceFault(err)
	}
	return &DashboardStats{
		TotalCustomers: stats.TotalCustomers,
		TotalLoans:     stats.TotalLoans,
		ActiveLoans:    stats.ActiveLoans,
		PastDueLoans:   stats.PastDueLoans,
		TotalPortfolio: json.Number(stats.TotalPortfolio.String()),
	}, nil
}
