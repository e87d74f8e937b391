package models

import (
	"testing"
	"time"

	"github.com/callbridge/backend/internal/domain/collection"
	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "customers", CustomerModel{}.TableName())
	assert.Equal(t, "loans", LoanModel{}.TableName())
	assert.Equal(t, "customer_interactions", InteractionModel{}.TableName())
}

func TestCustomerModel_RoundTrip(t *testing.T) {
	now := time.Date(2025, 5, 20, 14, 0, 0, 0, time.UTC)
	first := "Ada"
	phone := int64(5551234567)
	dob := time.Date(1980, 1, 2, 0, 0, 0, 0, time.UTC)

	c := &collection.Customer{
		BaseEntity:         shared.BaseEntity{ID: 7, CreatedAt: now, UpdatedAt: now},
		AccountNumber:      "1001234567",
		FirstName:          &first,
		PrimaryPhoneNumber: &phone,
		DOB:                &dob,
		IsEligibleToCall:   true,
		MonthlyIncome:      decimal.NewNullDecimal(decimal.RequireFromString("4200.50")),
	}

	m := CustomerModelFromDomain(c)
	assert.Equal(t, int64(7), m.ID)
	assert.Equal(t, "1001234567", m.AccountNumber)

	back := m.ToDomain()
	assert.Equal(t, c, back)
}

func TestLoanModel_Status(t *testing.T) {
	t.Run("known status round-trips", func(t *testing.T) {
		l := &collection.Loan{Status: collection.LoanStatusArranged, DueAmount: decimal.NewFromInt(500)}
		m := LoanModelFromDomain(l)
		assert.Equal(t, "arranged", m.Status)
		assert.Equal(t, collection.LoanStatusArranged, m.ToDomain().Status)
	})

	t.Run("unrecognised stored status reads as unknown", func(t *testing.T) {
		m := &LoanModel{Status: "charged_off"}
		assert.Equal(t, collection.LoanStatusUnknown, m.ToDomain().Status)
		assert.Equal(t, "", LoanModelFromDomain(m.ToDomain()).Status)
	})
}

func TestInteractionModel_FromDomain(t *testing.T) {
	created := time.Date(2025, 5, 20, 14, 3, 11, 0, time.UTC)
	i := collection.NewInteraction(3, created, created, "", "Promise to Pay", "note")

	m := InteractionModelFromDomain(i)
	assert.Equal(t, int64(3), m.CustomerID)
	assert.Equal(t, collection.DefaultInteractionSource, m.Source)
	assert.Equal(t, "Promise to Pay", m.Status)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), m.LastUpdatedDate)
	assert.Equal(t, created, m.CreatedAt)

	assert.Equal(t, i, m.ToDomain())
}
