package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/callbridge/backend/internal/domain/collection"
	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/callbridge/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var seedTime = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func setupCollectionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, (&Database{DB: db}).AutoMigrate())
	return db
}

func seedCustomer(t *testing.T, db *gorm.DB, account string, phone int64) *models.CustomerModel {
	t.Helper()
	first := "Ada"
	m := &models.CustomerModel{
		BaseModel:          models.BaseModel{CreatedAt: seedTime, UpdatedAt: seedTime},
		AccountNumber:      account,
		FirstName:          &first,
		PrimaryPhoneNumber: &phone,
		IsEligibleToCall:   true,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func seedLoan(t *testing.T, db *gorm.DB, customerID int64, created time.Time, product string) *models.LoanModel {
	t.Helper()
	m := &models.LoanModel{
		BaseModel:  models.BaseModel{CreatedAt: created, UpdatedAt: created},
		CustomerID: customerID,
		DueAmount:  decimal.RequireFromString("1285.50"),
		Status:     "active",
	}
	if product != "" {
		m.ProductName = &product
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

func TestGormProfileRepository_FindCustomer(t *testing.T) {
	db := setupCollectionsTestDB(t)
	repo := NewGormProfileRepository(db)
	ctx := context.Background()
	seeded := seedCustomer(t, db, "1001234567", 5551234567)

	t.Run("by phone", func(t *testing.T) {
		c, err := repo.FindCustomerByPhone(ctx, 5551234567)
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, c.ID)
		assert.Equal(t, "1001234567", c.AccountNumber)
		assert.Equal(t, "Ada", *c.FirstName)
		assert.True(t, c.IsEligibleToCall)
	})

	t.Run("by account", func(t *testing.T) {
		c, err := repo.FindCustomerByAccount(ctx, "1001234567")
		require.NoError(t, err)
		assert.Equal(t, seeded.ID, c.ID)
	})

	t.Run("unknown phone is ErrNotFound", func(t *testing.T) {
		_, err := repo.FindCustomerByPhone(ctx, 5550000000)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("unknown account is ErrNotFound", func(t *testing.T) {
		_, err := repo.FindCustomerByAccount(ctx, "nope")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProfileRepository_FindLatest(t *testing.T) {
	db := setupCollectionsTestDB(t)
	repo := NewGormProfileRepository(db)
	ctx := context.Background()
	c := seedCustomer(t, db, "1001234567", 5551234567)
	other := seedCustomer(t, db, "1009999999", 5559999999)

	t.Run("no loan returns nil", func(t *testing.T) {
		loan, err := repo.FindLatestLoan(ctx, c.ID)
		require.NoError(t, err)
		assert.Nil(t, loan)
	})

	seedLoan(t, db, c.ID, seedTime.Add(-48*time.Hour), "Auto Loan")
	tieA := seedLoan(t, db, c.ID, seedTime, "Personal Loan")
	tieB := seedLoan(t, db, c.ID, seedTime, "Home Equity")
	seedLoan(t, db, other.ID, seedTime.Add(time.Hour), "Other")

	t.Run("greatest created_at then greatest id", func(t *testing.T) {
		require.Greater(t, tieB.ID, tieA.ID)
		loan, err := repo.FindLatestLoan(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, loan)
		assert.Equal(t, tieB.ID, loan.ID)
		require.NotNil(t, loan.ProductName)
		assert.Equal(t, "Home Equity", *loan.ProductName)
		assert.Equal(t, collection.LoanStatusActive, loan.Status)
		assert.True(t, decimal.RequireFromString("1285.5").Equal(loan.DueAmount))
	})

	t.Run("null product name stays nil", func(t *testing.T) {
		bare := seedCustomer(t, db, "1005555555", 5555555555)
		seedLoan(t, db, bare.ID, seedTime, "")

		loan, err := repo.FindLatestLoan(ctx, bare.ID)
		require.NoError(t, err)
		require.NotNil(t, loan)
		assert.Nil(t, loan.ProductName)
	})

	t.Run("latest interaction", func(t *testing.T) {
		none, err := repo.FindLatestInteraction(ctx, c.ID)
		require.NoError(t, err)
		assert.Nil(t, none)

		older := collection.NewInteraction(c.ID, seedTime, seedTime, "", "", "first call")
		newer := collection.NewInteraction(c.ID, seedTime.Add(time.Hour), seedTime.Add(time.Hour), "", "", "second call")
		require.NoError(t, repo.CreateInteraction(ctx, older))
		require.NoError(t, repo.CreateInteraction(ctx, newer))

		latest, err := repo.FindLatestInteraction(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, newer.ID, latest.ID)
		assert.Equal(t, "second call", latest.Notes)
		assert.Equal(t, collection.DefaultInteractionSource, latest.Source)
	})
}

func TestGormProfileRepository_UpdateCustomer(t *testing.T) {
	db := setupCollectionsTestDB(t)
	repo := NewGormProfileRepository(db)
	ctx := context.Background()
	seeded := seedCustomer(t, db, "1001234567", 5551234567)

	t.Run("writes only named columns and updated_at", func(t *testing.T) {
		stale, err := repo.FindCustomerByAccount(ctx, "1001234567")
		require.NoError(t, err)

		// a concurrent writer changes the first name
		require.NoError(t, db.Model(&models.CustomerModel{}).
			Where("id = ?", seeded.ID).
			Update("first_name", "Grace").Error)

		city := "Austin"
		stale.City = &city
		stale.Touch(seedTime.Add(time.Hour))
		require.NoError(t, repo.UpdateCustomer(ctx, stale, []string{"city"}))

		got, err := repo.FindCustomerByAccount(ctx, "1001234567")
		require.NoError(t, err)
		assert.Equal(t, "Austin", *got.City)
		assert.Equal(t, "Grace", *got.FirstName)
		assert.True(t, got.UpdatedAt.Equal(seedTime.Add(time.Hour)))
	})

	t.Run("clears a nullable column", func(t *testing.T) {
		c, err := repo.FindCustomerByAccount(ctx, "1001234567")
		require.NoError(t, err)
		c.PrimaryPhoneNumber = nil
		require.NoError(t, repo.UpdateCustomer(ctx, c, []string{"primary_phone_number"}))

		_, err = repo.FindCustomerByPhone(ctx, 5551234567)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("no fields is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.UpdateCustomer(ctx, &collection.Customer{}, nil))
	})

	t.Run("missing row is a store error", func(t *testing.T) {
		ghost := &collection.Customer{BaseEntity: shared.BaseEntity{ID: 9999}}
		err := repo.UpdateCustomer(ctx, ghost, []string{"city"})
		assert.ErrorIs(t, err, ErrNoRowsUpdated)
		assert.NotErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProfileRepository_UpdateLoan(t *testing.T) {
	db := setupCollectionsTestDB(t)
	repo := NewGormProfileRepository(db)
	ctx := context.Background()
	c := seedCustomer(t, db, "1001234567", 5551234567)
	seedLoan(t, db, c.ID, seedTime, "Personal Loan")

	loan, err := repo.FindLatestLoan(ctx, c.ID)
	require.NoError(t, err)

	payLater := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	loan.DueAmount = decimal.Zero
	loan.Status = collection.LoanStatusPaidOff
	loan.AcceptablePayLaterDate = &payLater
	overwrite := "should not be written"
	loan.ProductName = &overwrite
	require.NoError(t, repo.UpdateLoan(ctx, loan, []string{"due_amount", "status", "acceptable_pay_later_date"}))

	got, err := repo.FindLatestLoan(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.DueAmount.IsZero())
	assert.Equal(t, collection.LoanStatusPaidOff, got.Status)
	require.NotNil(t, got.AcceptablePayLaterDate)
	assert.True(t, collection.SameDate(payLater, *got.AcceptablePayLaterDate))
	require.NotNil(t, got.ProductName)
	assert.Equal(t, "Personal Loan", *got.ProductName)
}

func TestGormProfileRepository_CreateInteraction(t *testing.T) {
	db := setupCollectionsTestDB(t)
	repo := NewGormProfileRepository(db)
	c := seedCustomer(t, db, "1001234567", 5551234567)

	i := collection.NewInteraction(c.ID, seedTime, seedTime, "Phone Call", "Resolved", "paid")
	require.NoError(t, repo.CreateInteraction(context.Background(), i))
	assert.NotZero(t, i.ID)

	var count int64
	require.NoError(t, db.Model(&models.InteractionModel{}).Where("customer_id = ?", c.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
