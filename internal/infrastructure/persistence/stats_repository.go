package persistence

import (
	"context"

	"github.com/callbridge/backend/internal/domain/collection"
	"github.com/callbridge/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormStatsRepository implements collection.StatsRepository using GORM
type GormStatsRepository struct {
	db *gorm.DB
}

// NewGormStatsRepository creates a new GormStatsRepository
func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// CountRecords counts customers, loans and interactions
func (r *GormStatsRepository) CountRecords(ctx context.Context) (collection.RecordCounts, error) {
	var counts collection.RecordCounts
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.CustomerModel{}).Count(&counts.Customers).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&models.LoanModel{}).Count(&counts.Loans).Error; err != nil {
		return counts, err
	}
	if err := db.Model(&models.InteractionModel{}).Count(&counts.Interactions).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

// PortfolioStats summarises the loan book. Active loans have status
// "active"; past-due loans have days_past_due above zero.
func (r *GormStatsRepository) PortfolioStats(ctx context.Context) (collection.PortfolioStats, error) {
	var stats collection.PortfolioStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.CustomerModel{}).Count(&stats.TotalCustomers).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.LoanModel{}).Count(&stats.TotalLoans).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.LoanModel{}).
		Where("status = ?", collection.LoanStatusActive.String()).
		Count(&stats.ActiveLoans).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.LoanModel{}).
		Where("days_past_due > ?", 0).
		Count(&stats.PastDueLoans).Error; err != nil {
		return stats, err
	}

	var total decimal.NullDecimal
	if err := db.Model(&models.LoanModel{}).
		Select("SUM(balance_remaining)").
		Row().Scan(&total); err != nil {
		return stats, err
	}
	stats.TotalPortfolio = total.Decimal
	return stats, nil
}

var _ collection.StatsRepository = (*GormStatsRepository)(nil)
