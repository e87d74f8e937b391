package collection

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Directive is the loan-status decision derived from a call disposition
type Directive int

const (
	// NoChange leaves the loan status untouched
	NoChange Directive = iota
	// SetCurrent marks the loan performing: status current, no missed
	// installments, nothing due
	SetCurrent
	// SetArranged marks a payment arrangement; amounts are left alone
	SetArranged
)

// String returns the directive name used in logs and metrics
func (d Directive) String() string {
	switch d {
	case SetCurrent:
		return "set_current"
	case SetArranged:
		return "set_arranged"
	default:
		return "no_change"
	}
}

var dispositionDirectives = map[string]Directive{
	"resolved":           SetCurrent,
	"paid":               SetCurrent,
	"current":            SetCurrent,
	"promise_to_pay":     SetArranged,
	"callback_scheduled": SetArranged,
}

// ClassifyDisposition maps a free-text final disposition to a directive.
// Matching is case-insensitive after trimming; anything unrecognised is
// NoChange.
func ClassifyDisposition(disposition string) Directive {
	code := strings.ToLower(strings.TrimSpace(disposition))
	if code == "" {
		return NoChange
	}
	if d, ok := dispositionDirectives[code]; ok {
		return d
	}
	return NoChange
}

// ApplyDirective forces the directive onto the loan and returns the fields
// that actually changed. SetCurrent overrides amounts written earlier in the
// same pass.
func (l *Loan) ApplyDirective(d Directive) []Change {
	switch d {
	case SetCurrent:
		changes := l.setStatus(LoanStatusCurrent)
		if l.NoOfMissedInstallments != 0 {
			old := l.NoOfMissedInstallments
			l.NoOfMissedInstallments = 0
			changes = append(changes, Change{Field: LoanFieldMissedInstallments, Old: Integer(&old), New: Integer(&l.NoOfMissedInstallments)})
		}
		if !l.DueAmount.IsZero() {
			old := decimal.NullDecimal{Decimal: l.DueAmount, Valid: true}
			l.DueAmount = decimal.Zero
			changes = append(changes, Change{Field: LoanFieldDueAmount, Old: Decimal(old), New: Decimal(decimal.NullDecimal{Decimal: decimal.Zero, Valid: true})})
		}
		return changes
	case SetArranged:
		return l.setStatus(LoanStatusArranged)
	default:
		return nil
	}
}
