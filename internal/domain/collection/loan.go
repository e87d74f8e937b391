package collection

import (
	"time"

	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LoanStatus is the closed set of loan states
type LoanStatus int

const (
	// LoanStatusUnknown is any stored value outside the known set. It is read
	// but never written.
	LoanStatusUnknown LoanStatus = iota
	LoanStatusActive
	LoanStatusCurrent
	LoanStatusArranged
	LoanStatusPaidOff
	LoanStatusDefaulted
	LoanStatusRepo
)

var loanStatusNames = map[LoanStatus]string{
	LoanStatusActive:    "active",
	LoanStatusCurrent:   "current",
	LoanStatusArranged:  "arranged",
	LoanStatusPaidOff:   "paid_off",
	LoanStatusDefaulted: "defaulted",
	LoanStatusRepo:      "repo",
}

// String returns the stored representation
func (s LoanStatus) String() string {
	if name, ok := loanStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsKnown reports whether s is a member of the closed set
func (s LoanStatus) IsKnown() bool {
	_, ok := loanStatusNames[s]
	return ok
}

// ParseLoanStatus maps a stored string to a status. Unrecognised values map
// to LoanStatusUnknown.
func ParseLoanStatus(s string) LoanStatus {
	for status, name := range loanStatusNames {
		if name == s {
			return status
		}
	}
	return LoanStatusUnknown
}

// Loan is a customer's credit account. Only the most recent loan of a
// customer takes part in call-outcome reconciliation.
type Loan struct {
	shared.BaseEntity
	CustomerID                   int64
	ProductName                  *string
	DueAmount                    decimal.Decimal
	NoOfMissedInstallments       int64
	ContractualInstallmentAmount decimal.Decimal
	InterestLateFee              decimal.Decimal
	MinimumAmount                decimal.Decimal
	AcceptablePayLaterDate       *time.Time
	AcceptableAlreadyPaidDate    *time.Time
	GracePeriodDate              *time.Time
	DueDate                      *time.Time
	Status                       LoanStatus

	// Portfolio columns kept from the origination system
	LoanAmount       decimal.NullDecimal
	InterestRate     decimal.NullDecimal
	TermMonths       *int64
	MonthlyPayment   decimal.NullDecimal
	BalanceRemaining decimal.NullDecimal
	NextPaymentDate  *time.Time
	OriginationDate  *time.Time
	DaysPastDue      int64
}

// Loan column names written by reconciliation
const (
	LoanFieldProductName            = "product_name"
	LoanFieldDueAmount              = "due_amount"
	LoanFieldMissedInstallments     = "no_of_missed_installments"
	LoanFieldInstallmentAmount      = "contractual_installment_amount"
	LoanFieldInterestLateFee        = "interest_late_fee"
	LoanFieldMinimumAmount          = "minimum_amount"
	LoanFieldAcceptablePayLaterDate = "acceptable_pay_later_date"
	LoanFieldAlreadyPaidDate        = "acceptable_already_paid_date"
	LoanFieldGracePeriodDate        = "grace_period_date"
	LoanFieldDueDate                = "due_date"
	LoanFieldStatus                 = "status"
)

var loanFields = NewFieldSet(
	Field[Loan]{
		Name: LoanFieldProductName,
		Kind: TextValue,
		Get:  func(l *Loan) Value { return Text(l.ProductName) },
		Set:  func(l *Loan, v Value) { l.ProductName = v.TextPtr() },
	},
	amountField(LoanFieldDueAmount, func(l *Loan) *decimal.Decimal { return &l.DueAmount }),
	Field[Loan]{
		Name: LoanFieldMissedInstallments,
		Kind: IntegerValue,
		Get:  func(l *Loan) Value { return Integer(&l.NoOfMissedInstallments) },
		Set:  func(l *Loan, v Value) { l.NoOfMissedInstallments = *v.IntegerPtr() },
	},
	amountField(LoanFieldInstallmentAmount, func(l *Loan) *decimal.Decimal { return &l.ContractualInstallmentAmount }),
	amountField(LoanFieldInterestLateFee, func(l *Loan) *decimal.Decimal { return &l.InterestLateFee }),
	amountField(LoanFieldMinimumAmount, func(l *Loan) *decimal.Decimal { return &l.MinimumAmount }),
	policyDateField(LoanFieldAcceptablePayLaterDate, func(l *Loan) **time.Time { return &l.AcceptablePayLaterDate }),
	policyDateField(LoanFieldAlreadyPaidDate, func(l *Loan) **time.Time { return &l.AcceptableAlreadyPaidDate }),
	policyDateField(LoanFieldGracePeriodDate, func(l *Loan) **time.Time { return &l.GracePeriodDate }),
	policyDateField(LoanFieldDueDate, func(l *Loan) **time.Time { return &l.DueDate }),
)

// LoanFinancialFields are the amount and product attributes a call outcome
// may overwrite
var LoanFinancialFields = loanFields.Subset(
	LoanFieldProductName,
	LoanFieldDueAmount,
	LoanFieldMissedInstallments,
	LoanFieldInstallmentAmount,
	LoanFieldInterestLateFee,
	LoanFieldMinimumAmount,
)

// LoanPolicyDateFields are the four collection policy dates
var LoanPolicyDateFields = loanFields.Subset(
	LoanFieldAcceptablePayLaterDate,
	LoanFieldAlreadyPaidDate,
	LoanFieldGracePeriodDate,
	LoanFieldDueDate,
)

// OverrideDueAmount sets the due amount to an agreed payment amount. The
// raw value must parse as a decimal; it is written only when it differs.
func (l *Loan) OverrideDueAmount(raw any) (ReconcileResult, error) {
	return l.override(LoanFieldDueAmount, raw)
}

// OverridePayLaterDate sets the acceptable pay-later date from an agreed
// date string when it parses and differs
func (l *Loan) OverridePayLaterDate(raw string) (ReconcileResult, error) {
	return l.override(LoanFieldAcceptablePayLaterDate, raw)
}

func (l *Loan) override(name string, raw any) (ReconcileResult, error) {
	field, _ := loanFields.Lookup(name)
	next, err := Coerce(field.Kind, raw)
	if err != nil {
		return ReconcileResult{}, err
	}
	current := field.Get(l)
	if current.Equal(next) {
		return ReconcileResult{}, nil
	}
	field.Set(l, next)
	return ReconcileResult{Applied: []Change{{Field: name, Old: current, New: next}}}, nil
}

// setStatus writes status and records the change when it differs
func (l *Loan) setStatus(status LoanStatus) []Change {
	if l.Status == status {
		return nil
	}
	old := l.Status
	l.Status = status
	return []Change{{Field: LoanFieldStatus, Old: statusValue(old), New: statusValue(status)}}
}

func statusValue(s LoanStatus) Value {
	name := s.String()
	return Text(&name)
}

func amountField(name string, ref func(*Loan) *decimal.Decimal) Field[Loan] {
	return Field[Loan]{
		Name: name,
		Kind: DecimalValue,
		Get: func(l *Loan) Value {
			return Decimal(decimal.NullDecimal{Decimal: *ref(l), Valid: true})
		},
		Set: func(l *Loan, v Value) { *ref(l) = v.DecimalOrZero() },
	}
}

func policyDateField(name string, ref func(*Loan) **time.Time) Field[Loan] {
	return Field[Loan]{
		Name: name,
		Kind: DateValue,
		Get:  func(l *Loan) Value { return Date(*ref(l)) },
		Set:  func(l *Loan, v Value) { *ref(l) = v.DatePtr() },
	}
}
