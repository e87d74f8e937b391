package persistence

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/callbridge/backend/internal/domain/collection"
	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/callbridge/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

const latestFirst = "created_at DESC, id DESC"

// ErrNoRowsUpdated reports an update whose target row no longer exists
var ErrNoRowsUpdated = errors.New("no rows updated")

// GormProfileRepository implements collection.ProfileRepository using GORM
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GormProfileRepository
func NewGormProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindCustomerByPhone finds the customer whose primary phone number matches
func (r *GormProfileRepository) FindCustomerByPhone(ctx context.Context, phone int64) (*collection.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("primary_phone_number = ?", phone).
		Order("id ASC").
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindCustomerByAccount finds a customer by account number
func (r *GormProfileRepository) FindCustomerByAccount(ctx context.Context, accountNumber string) (*collection.Customer, error) {
	var model models.CustomerModel
	if err := r.db.WithContext(ctx).
		Where("account_number = ?", accountNumber).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindLatestLoan returns the customer's most recently created loan, or nil
func (r *GormProfileRepository) FindLatestLoan(ctx context.Context, customerID int64) (*collection.Loan, error) {
	var model models.LoanModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order(latestFirst).
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindLatestInteraction returns the customer's most recent interaction, or nil
func (r *GormProfileRepository) FindLatestInteraction(ctx context.Context, customerID int64) (*collection.Interaction, error) {
	var model models.InteractionModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order(latestFirst).
		Take(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpdateCustomer writes only the named columns plus updated_at, so
// concurrent outcomes touching different fields do not overwrite each other
func (r *GormProfileRepository) UpdateCustomer(ctx context.Context, customer *collection.Customer, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return r.updateColumns(ctx, models.CustomerModelFromDomain(customer), fields)
}

// UpdateLoan writes only the named columns plus updated_at
func (r *GormProfileRepository) UpdateLoan(ctx context.Context, loan *collection.Loan, fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return r.updateColumns(ctx, models.LoanModelFromDomain(loan), fields)
}

func (r *GormProfileRepository) updateColumns(ctx context.Context, model any, fields []string) error {
	columns := append(slices.Clone(fields), "updated_at")
	result := r.db.WithContext(ctx).Model(model).Select(columns).Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("update %T: %w", model, ErrNoRowsUpdated)
	}
	return nil
}

// CreateInteraction inserts the interaction and assigns its ID
func (r *GormProfileRepository) CreateInteraction(ctx context.Context, interaction *collection.Interaction) error {
	model := models.InteractionModelFromDomain(interaction)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	interaction.ID = model.ID
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

var _ collection.ProfileRepository = (*GormProfileRepository)(nil)
