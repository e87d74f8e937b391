package models

import (
	"time"

	"github.com/callbridge/backend/internal/domain/collection"
	"github.com/shopspring/decimal"
)

// CustomerModel is the persistence model for the Customer entity
type CustomerModel struct {
	BaseModel
	AccountNumber       string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	FirstName           *string             `gorm:"type:varchar(100)"`
	LastName            *string             `gorm:"type:varchar(100)"`
	EmailAddress        *string             `gorm:"type:varchar(120)"`
	PrimaryPhoneNumber  *int64              `gorm:"index"`
	SSN                 *int64              `gorm:"column:ssn"`
	DOB                 *time.Time          `gorm:"column:dob;type:date"`
	AddressLine1        *string             `gorm:"column:address_line_1;type:varchar(200)"`
	AddressLine2        *string             `gorm:"column:address_line_2;type:varchar(200)"`
	City                *string             `gorm:"type:varchar(100)"`
	State               *string             `gorm:"type:varchar(50)"`
	ZipCode             *int64              `gorm:"column:zip_code"`
	CustomerNumber      *int64              `gorm:"column:customer_number"`
	RecordType          *string             `gorm:"type:varchar(50)"`
	BorrowerFirstName   *string             `gorm:"type:varchar(100)"`
	BorrowerLastName    *string             `gorm:"type:varchar(100)"`
	IsEligibleToCall    bool                `gorm:"not null"`
	TransferPhoneNumber *int64              `gorm:"column:transfer_phone_number"`
	TransferIPAddress   *string             `gorm:"column:transfer_ip_address;type:varchar(50)"`
	CreditScore         *int64              `gorm:"column:credit_score"`
	MonthlyIncome       decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	EmploymentStatus    *string             `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}

// ToDomain converts the persistence model to a domain Customer
func (m *CustomerModel) ToDomain() *collection.Customer {
	return &collection.Customer{
		BaseEntity:          m.BaseModel.ToDomain(),
		AccountNumber:       m.AccountNumber,
		FirstName:           m.FirstName,
		LastName:            m.LastName,
		EmailAddress:        m.EmailAddress,
		PrimaryPhoneNumber:  m.PrimaryPhoneNumber,
		SSN:                 m.SSN,
		DOB:                 m.DOB,
		AddressLine1:        m.AddressLine1,
		AddressLine2:        m.AddressLine2,
		City:                m.City,
		State:               m.State,
		ZipCode:             m.ZipCode,
		CustomerNumber:      m.CustomerNumber,
		RecordType:          m.RecordType,
		BorrowerFirstName:   m.BorrowerFirstName,
		BorrowerLastName:    m.BorrowerLastName,
		IsEligibleToCall:    m.IsEligibleToCall,
		TransferPhoneNumber: m.TransferPhoneNumber,
		TransferIPAddress:   m.TransferIPAddress,
		CreditScore:         m.CreditScore,
		MonthlyIncome:       m.MonthlyIncome,
		EmploymentStatus:    m.EmploymentStatus,
	}
}

// FromDomain populates the persistence model from a domain Customer
func (m *CustomerModel) FromDomain(c *collection.Customer) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.AccountNumber = c.AccountNumber
	m.FirstName = c.FirstName
	m.LastName = c.LastName
	m.EmailAddress = c.EmailAddress
	m.PrimaryPhoneNumber = c.PrimaryPhoneNumber
	m.SSN = c.SSN
	m.DOB = c.DOB
	m.AddressLine1 = c.AddressLine1
	m.AddressLine2 = c.AddressLine2
	m.City = c.City
	m.State = c.State
	m.ZipCode = c.ZipCode
	m.CustomerNumber = c.CustomerNumber
	m.RecordType = c.RecordType
	m.BorrowerFirstName = c.BorrowerFirstName
	m.BorrowerLastName = c.BorrowerLastName
	m.IsEligibleToCall = c.IsEligibleToCall
	m.TransferPhoneNumber = c.TransferPhoneNumber
	m.TransferIPAddress = c.TransferIPAddress
	m.CreditScore = c.CreditScore
	m.MonthlyIncome = c.MonthlyIncome
	m.EmploymentStatus = c.EmploymentStatus
}

// CustomerModelFromDomain creates a persistence model from a domain Customer
func CustomerModelFromDomain(c *collection.Customer) *CustomerModel {
	m := &CustomerModel{}
	m.FromDomain(c)
	return m
}

// LoanModel is the persistence model for the Loan entity
type LoanModel struct {
	BaseModel
	CustomerID                   int64           `gorm:"not null;index"`
	ProductName                  *string         `gorm:"type:varchar(100)"`
	DueAmount                    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NoOfMissedInstallments       int64           `gorm:"column:no_of_missed_installments;not null"`
	ContractualInstallmentAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	InterestLateFee              decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MinimumAmount                decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AcceptablePayLaterDate       *time.Time      `gorm:"type:date"`
	AcceptableAlreadyPaidDate    *time.Time      `gorm:"type:date"`
	GracePeriodDate              *time.Time      `gorm:"type:date"`
	DueDate                      *time.Time      `gorm:"type:date"`
	Status                       string          `gorm:"type:varchar(20);not null"`

	LoanAmount       decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	InterestRate     decimal.NullDecimal `gorm:"type:decimal(5,2)"`
	TermMonths       *int64
	MonthlyPayment   decimal.NullDecimal `gorm:"type:decimal(10,2)"`
	BalanceRemaining decimal.NullDecimal `gorm:"type:decimal(12,2)"`
	NextPaymentDate  *time.Time          `gorm:"type:date"`
	OriginationDate  *time.Time          `gorm:"type:date"`
	DaysPastDue      int64               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LoanModel) TableName() string {
	return "loans"
}

// ToDomain converts the persistence model to a domain Loan. Stored status
// strings outside the known set map to LoanStatusUnknown.
func (m *LoanModel) ToDomain() *collection.Loan {
	return &collection.Loan{
		BaseEntity:                   m.BaseModel.ToDomain(),
		CustomerID:                   m.CustomerID,
		ProductName:                  m.ProductName,
		DueAmount:                    m.DueAmount,
		NoOfMissedInstallments:       m.NoOfMissedInstallments,
		ContractualInstallmentAmount: m.ContractualInstallmentAmount,
		InterestLateFee:              m.InterestLateFee,
		MinimumAmount:                m.MinimumAmount,
		AcceptablePayLaterDate:       m.AcceptablePayLaterDate,
		AcceptableAlreadyPaidDate:    m.AcceptableAlreadyPaidDate,
		GracePeriodDate:              m.GracePeriodDate,
		DueDate:                      m.DueDate,
		Status:                       collection.ParseLoanStatus(m.Status),
		LoanAmount:                   m.LoanAmount,
		InterestRate:                 m.InterestRate,
		TermMonths:                   m.TermMonths,
		MonthlyPayment:               m.MonthlyPayment,
		BalanceRemaining:             m.BalanceRemaining,
		NextPaymentDate:              m.NextPaymentDate,
		OriginationDate:              m.OriginationDate,
		DaysPastDue:                  m.DaysPastDue,
	}
}

// FromDomain populates the persistence model from a domain Loan. An unknown
// status is written as the empty string; callers never select it for update.
func (m *LoanModel) FromDomain(l *collection.Loan) {
	m.FromDomainBaseEntity(l.BaseEntity)
	m.CustomerID = l.CustomerID
	m.ProductName = l.ProductName
	m.DueAmount = l.DueAmount
	m.NoOfMissedInstallments = l.NoOfMissedInstallments
	m.ContractualInstallmentAmount = l.ContractualInstallmentAmount
	m.InterestLateFee = l.InterestLateFee
	m.MinimumAmount = l.MinimumAmount
	m.AcceptablePayLaterDate = l.AcceptablePayLaterDate
	m.AcceptableAlreadyPaidDate = l.AcceptableAlreadyPaidDate
	m.GracePeriodDate = l.GracePeriodDate
	m.DueDate = l.DueDate
	m.Status = ""
	if l.Status.IsKnown() {
		m.Status = l.Status.String()
	}
	m.LoanAmount = l.LoanAmount
	m.InterestRate = l.InterestRate
	m.TermMonths = l.TermMonths
	m.MonthlyPayment = l.MonthlyPayment
	m.BalanceRemaining = l.BalanceRemaining
	m.NextPaymentDate = l.NextPaymentDate
	m.OriginationDate = l.OriginationDate
	m.DaysPastDue = l.DaysPastDue
}

// LoanModelFromDomain creates a persistence model from a domain Loan
func LoanModelFromDomain(l *collection.Loan) *LoanModel {
	m := &LoanModel{}
	m.FromDomain(l)
	return m
}

// InteractionModel is the persistence model for the Interaction entity
type InteractionModel struct {
	BaseModel
	CustomerID      int64     `gorm:"not null;index"`
	CreationDate    time.Time `gorm:"not null"`
	LastUpdatedDate time.Time `gorm:"type:date;not null"`
	Source          string    `gorm:"type:varchar(100);not null"`
	Status          string    `gorm:"type:varchar(50);not null"`
	Notes           string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InteractionModel) TableName() string {
	return "customer_interactions"
}

// ToDomain converts the persistence model to a domain Interaction
func (m *InteractionModel) ToDomain() *collection.Interaction {
	return &collection.Interaction{
		BaseEntity:      m.BaseModel.ToDomain(),
		CustomerID:      m.CustomerID,
		CreationDate:    m.CreationDate,
		LastUpdatedDate: m.LastUpdatedDate,
		Source:          m.Source,
		Status:          m.Status,
		Notes:           m.Notes,
	}
}

// InteractionModelFromDomain creates a persistence model from a domain Interaction
func InteractionModelFromDomain(i *collection.Interaction) *InteractionModel {
	m := &InteractionModel{
		CustomerID:      i.CustomerID,
		CreationDate:    i.CreationDate,
		LastUpdatedDate: i.LastUpdatedDate,
		Source:          i.Source,
		Status:          i.Status,
		Notes:           i.Notes,
	}
	m.FromDomainBaseEntity(i.BaseEntity)
	return m
}
