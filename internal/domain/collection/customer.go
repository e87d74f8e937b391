package collection

import (
	"time"

	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Customer is a borrower record. The account number identifies the customer
// for post-call outcomes and never changes once assigned.
type Customer struct {
	shared.BaseEntity
	AccountNumber       string
	FirstName           *string
	LastName            *string
	EmailAddress        *string
	PrimaryPhoneNumber  *int64
	SSN                 *int64
	DOB                 *time.Time
	AddressLine1        *string
	AddressLine2        *string
	City                *string
	State               *string
	ZipCode             *int64
	CustomerNumber      *int64
	RecordType          *string
	BorrowerFirstName   *string
	BorrowerLastName    *string
	IsEligibleToCall    bool
	TransferPhoneNumber *int64
	TransferIPAddress   *string
	CreditScore         *int64
	MonthlyIncome       decimal.NullDecimal
	EmploymentStatus    *string
}

// CustomerFields is the set of customer attributes a call outcome may
// overwrite. Identity and audit columns are deliberately absent.
var CustomerFields = NewFieldSet(
	textField("first_name", func(c *Customer) **string { return &c.FirstName }),
	textField("last_name", func(c *Customer) **string { return &c.LastName }),
	textField("email_address", func(c *Customer) **string { return &c.EmailAddress }),
	integerField("primary_phone_number", false, func(c *Customer) **int64 { return &c.PrimaryPhoneNumber }),
	integerField("ssn", true, func(c *Customer) **int64 { return &c.SSN }),
	Field[Customer]{
		Name:            "dob",
		Kind:            DateValue,
		NullableOnEmpty: true,
		Get:             func(c *Customer) Value { return Date(c.DOB) },
		Set:             func(c *Customer, v Value) { c.DOB = v.DatePtr() },
	},
	textField("address_line_1", func(c *Customer) **string { return &c.AddressLine1 }),
	textField("address_line_2", func(c *Customer) **string { return &c.AddressLine2 }),
	textField("city", func(c *Customer) **string { return &c.City }),
	textField("state", func(c *Customer) **string { return &c.State }),
	integerField("zip_code", true, func(c *Customer) **int64 { return &c.ZipCode }),
	integerField("customer_number", true, func(c *Customer) **int64 { return &c.CustomerNumber }),
	textField("record_type", func(c *Customer) **string { return &c.RecordType }),
	textField("borrower_first_name", func(c *Customer) **string { return &c.BorrowerFirstName }),
	textField("borrower_last_name", func(c *Customer) **string { return &c.BorrowerLastName }),
	Field[Customer]{
		Name: "is_eligible_to_call",
		Kind: BoolValue,
		Get:  func(c *Customer) Value { return Bool(c.IsEligibleToCall) },
		Set:  func(c *Customer, v Value) { c.IsEligibleToCall = v.IsTrue() },
	},
	integerField("transfer_phone_number", true, func(c *Customer) **int64 { return &c.TransferPhoneNumber }),
	textField("transfer_ip_address", func(c *Customer) **string { return &c.TransferIPAddress }),
	integerField("credit_score", true, func(c *Customer) **int64 { return &c.CreditScore }),
	Field[Customer]{
		Name:            "monthly_income",
		Kind:            DecimalValue,
		NullableOnEmpty: true,
		Get:             func(c *Customer) Value { return Decimal(c.MonthlyIncome) },
		Set:             func(c *Customer, v Value) { c.MonthlyIncome = v.NullDecimal() },
	},
	textField("employment_status", func(c *Customer) **string { return &c.EmploymentStatus }),
)

func textField(name string, ref func(*Customer) **string) Field[Customer] {
	return Field[Customer]{
		Name: name,
		Kind: TextValue,
		Get:  func(c *Customer) Value { return Text(*ref(c)) },
		Set:  func(c *Customer, v Value) { *ref(c) = v.TextPtr() },
	}
}

func integerField(name string, nullableOnEmpty bool, ref func(*Customer) **int64) Field[Customer] {
	return Field[Customer]{
		Name:            name,
		Kind:            IntegerValue,
		NullableOnEmpty: nullableOnEmpty,
		Get:             func(c *Customer) Value { return Integer(*ref(c)) },
		Set:             func(c *Customer, v Value) { *ref(c) = v.IntegerPtr() },
	}
}
