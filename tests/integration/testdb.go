// Package integration runs the call bridge against a real PostgreSQL
// database started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/callbridge/backend/internal/infrastructure/logger"
	"github.com/callbridge/backend/internal/infrastructure/migration"
	"github.com/callbridge/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seedTime = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

// TestDB is a migrated PostgreSQL database in its own container
type TestDB struct {
	DB        *gorm.DB
	SqlDB     *sql.DB
	Container testcontainers.Container
	DSN       string
	t         *testing.T
}

// NewTestDB starts PostgreSQL, applies the SQL migrations and registers
// cleanup with t
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("callbridge_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("bridge123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "Failed to get connection string")

	db, sqlDB := connectToDatabase(t, dsn)
	runMigrations(t, sqlDB)

	testDB := &TestDB{
		DB:        db,
		SqlDB:     sqlDB,
		Container: container,
		DSN:       dsn,
		t:         t,
	}
	t.Cleanup(testDB.Close)

	return testDB
}

// Close closes the connection and terminates the container
func (tdb *TestDB) Close() {
	if tdb.SqlDB != nil {
		_ = tdb.SqlDB.Close()
	}
	if tdb.Container != nil {
		if err := tdb.Container.Terminate(context.Background()); err != nil {
			tdb.t.Logf("Warning: Failed to terminate container: %v", err)
		}
	}
}

// CleanTables empties the collections tables
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()
	err := tdb.DB.Exec("TRUNCATE TABLE customer_interactions, loans, customers RESTART IDENTITY CASCADE").Error
	require.NoError(tdb.t, err, "Failed to truncate tables")
}

// SeedCustomer inserts a callable customer
func (tdb *TestDB) SeedCustomer(account string, phone int64) *models.CustomerModel {
	tdb.t.Helper()
	first, last := "Dana", "Reyes"
	m := &models.CustomerModel{
		BaseModel:          models.BaseModel{CreatedAt: seedTime, UpdatedAt: seedTime},
		AccountNumber:      account,
		FirstName:          &first,
		LastName:           &last,
		PrimaryPhoneNumber: &phone,
		IsEligibleToCall:   true,
	}
	require.NoError(tdb.t, tdb.DB.Create(m).Error)
	return m
}

// SeedLoan inserts an active loan with the given arrears
func (tdb *TestDB) SeedLoan(customerID int64, due string, missed int64) *models.LoanModel {
	tdb.t.Helper()
	product := "Personal Loan"
	m := &models.LoanModel{
		BaseModel:                    models.BaseModel{CreatedAt: seedTime, UpdatedAt: seedTime},
		CustomerID:                   customerID,
		ProductName:                  &product,
		DueAmount:                    decimal.RequireFromString(due),
		NoOfMissedInstallments:       missed,
		ContractualInstallmentAmount: decimal.RequireFromString("428.50"),
		InterestLateFee:              decimal.RequireFromString("35.00"),
		MinimumAmount:                decimal.RequireFromString("150.00"),
		Status:                       "active",
		BalanceRemaining:             decimal.NewNullDecimal(decimal.RequireFromString("7200.00")),
		DaysPastDue:                  31,
	}
	require.NoError(tdb.t, tdb.DB.Create(m).Error)
	return m
}

// ReloadLoan reads a loan back from the store
func (tdb *TestDB) ReloadLoan(id int64) *models.LoanModel {
	tdb.t.Helper()
	var m models.LoanModel
	require.NoError(tdb.t, tdb.DB.First(&m, id).Error)
	return &m
}

// Interactions returns the customer's interactions, oldest first
func (tdb *TestDB) Interactions(customerID int64) []models.InteractionModel {
	tdb.t.Helper()
	var rows []models.InteractionModel
	require.NoError(tdb.t, tdb.DB.Where("customer_id = ?", customerID).Order("id").Find(&rows).Error)
	return rows
}

func connectToDatabase(t *testing.T, dsn string) (*gorm.DB, *sql.DB) {
	t.Helper()

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	return db, sqlDB
}

func runMigrations(t *testing.T, sqlDB *sql.DB) {
	t.Helper()

	migrationsPath := findMigrationsPath()
	require.NotEmpty(t, migrationsPath, "Could not find migrations directory")

	log := zap.NewNop()
	if os.Getenv("TEST_DB_DEBUG") != "" {
		log, _ = logger.New(logger.DefaultConfig())
	}

	m, err := migration.New(sqlDB, migrationsPath, log)
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")

	status, err := m.Status()
	require.NoError(t, err)
	require.False(t, status.Dirty, "schema left dirty")
}

// findMigrationsPath walks up from this file to the repository migrations
func findMigrationsPath() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}

	dir := filepath.Dir(filename)
	for range 5 {
		candidate := filepath.Join(dir, "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		dir = filepath.Dir(dir)
	}
	return ""
}
