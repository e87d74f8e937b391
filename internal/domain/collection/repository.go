package collection

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProfileRepository gives access to the records a call touches. Latest
// means greatest created_at, ties broken by greatest id.
type ProfileRepository interface {
	// FindCustomerByPhone returns shared.ErrNotFound when no customer has
	// the primary phone number
	FindCustomerByPhone(ctx context.Context, phone int64) (*Customer, error)

	// FindCustomerByAccount returns shared.ErrNotFound for unknown accounts
	FindCustomerByAccount(ctx context.Context, accountNumber string) (*Customer, error)

	// FindLatestLoan returns nil, nil when the customer has no loan
	FindLatestLoan(ctx context.Context, customerID int64) (*Loan, error)

	// FindLatestInteraction returns nil, nil when the customer has none
	FindLatestInteraction(ctx context.Context, customerID int64) (*Interaction, error)

	// UpdateCustomer writes the named columns plus updated_at. A row that
	// vanished mid-call is a store error, never shared.ErrNotFound
	UpdateCustomer(ctx context.Context, customer *Customer, fields []string) error

	// UpdateLoan writes the named columns plus updated_at
	UpdateLoan(ctx context.Context, loan *Loan, fields []string) error

	// CreateInteraction inserts the interaction and assigns its ID
	CreateInteraction(ctx context.Context, interaction *Interaction) error
}

// RecordCounts are row counts of the collections store
type RecordCounts struct {
	Customers    int64
	Loans        int64
	Interactions int64
}

// PortfolioStats summarises the loan book
type PortfolioStats struct {
	TotalCustomers int64
	TotalLoans     int64
	ActiveLoans    int64
	PastDueLoans   int64
	TotalPortfolio decimal.Decimal
}

// StatsRepository answers the read-only portfolio queries
type StatsRepository interface {
	CountRecords(ctx context.Context) (RecordCounts, error)
	PortfolioStats(ctx context.Context) (PortfolioStats, error)
}
