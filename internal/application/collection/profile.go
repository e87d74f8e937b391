package collection

import (
	"encoding/json"
	"time"

	"github.com/callbridge/backend/internal/domain/collection"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// ProfileUserInfo is the caller's customer and latest-loan snapshot. Keys
// and their order are part of the call-center contract; absent values
// render as null.
type ProfileUserInfo struct {
	AccountNumber                string       `json:"account_number"`
	FirstName                    *string      `json:"first_name"`
	LastName                     *string      `json:"last_name"`
	ProductName                  *string      `json:"product_name"`
	AddressLine1                 *string      `json:"address_line_1"`
	AddressLine2                 *string      `json:"address_line_2"`
	ZipCode                      *int64       `json:"zip_code"`
	City                         *string      `json:"city"`
	State                        *string      `json:"state"`
	SSN                          *int64       `json:"ssn"`
	DOB                          *string      `json:"dob"`
	PrimaryPhoneNumber           *int64       `json:"primary_phone_number"`
	EmailAddress                 *string      `json:"email_address"`
	DueAmount                    *json.Number `json:"due_amount"`
	NoOfMissedInstallments       *int64       `json:"no_of_missed_installments"`
	ContractualInstallmentAmount *json.Number `json:"contractual_installment_amount"`
	InterestLateFee              *json.Number `json:"interest_late_fee"`
	MinimumAmount                *json.Number `json:"minimum_amount"`
	CustomerNumber               *int64       `json:"customer_number"`
	AcceptablePayLaterDate       *string      `json:"acceptable_pay_later_date"`
	AcceptableAlreadyPaidDate    *string      `json:"acceptable_already_paid_date"`
	GracePeriodDate              *string      `json:"grace_period_date"`
	DueDate                      *string      `json:"due_date"`
	RecordType                   *string      `json:"record_type"`
	BorrowerFirstName            *string      `json:"borrower_first_name"`
	BorrowerLastName             *string      `json:"borrower_last_name"`
	IsEligibleToCall             bool         `json:"is_eligible_to_call"`
	TransferPhoneNumber          *int64       `json:"transfer_phone_number"`
	TransferIPAddress            *string      `json:"transfer_ip_address"`
}

// ProfileMetadata describes the caller's latest interaction
type ProfileMetadata struct {
	CreationDate    *string `json:"creation_date"`
	LastUpdatedDate *string `json:"last_updated_date"`
	Source          *string `json:"source"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes"`
}

// PreCallProfile is the context shown to an agent before a call connects
type PreCallProfile struct {
	UserInfo ProfileUserInfo `json:"user_info"`
	Metadata ProfileMetadata `json:"metadata"`
}

// NewPreCallProfile builds a profile from the customer and, when present,
// their latest loan and interaction
func NewPreCallProfile(c *collection.Customer, loan *collection.Loan, interaction *collection.Interaction) *PreCallProfile {
	p := &PreCallProfile{
		UserInfo: ProfileUserInfo{
			AccountNumber:       c.AccountNumber,
			FirstName:           c.FirstName,
			LastName:            c.LastName,
			AddressLine1:        c.AddressLine1,
			AddressLine2:        c.AddressLine2,
			ZipCode:             c.ZipCode,
			City:                c.City,
			State:               c.State,
			SSN:                 c.SSN,
			DOB:                 formatDate(c.DOB),
			PrimaryPhoneNumber:  c.PrimaryPhoneNumber,
			EmailAddress:        c.EmailAddress,
			CustomerNumber:      c.CustomerNumber,
			RecordType:          c.RecordType,
			BorrowerFirstName:   c.BorrowerFirstName,
			BorrowerLastName:    c.BorrowerLastName,
			IsEligibleToCall:    c.IsEligibleToCall,
			TransferPhoneNumber: c.TransferPhoneNumber,
			TransferIPAddress:   c.TransferIPAddress,
		},
	}

	if loan != nil {
		u := &p.UserInfo
		missed := loan.NoOfMissedInstallments
		u.ProductName = loan.ProductName
		u.DueAmount = amount(loan.DueAmount)
		u.NoOfMissedInstallments = &missed
		u.ContractualInstallmentAmount = amount(loan.ContractualInstallmentAmount)
		u.InterestLateFee = amount(loan.InterestLateFee)
		u.MinimumAmount = amount(loan.MinimumAmount)
		u.AcceptablePayLaterDate = formatDate(loan.AcceptablePayLaterDate)
		u.AcceptableAlreadyPaidDate = formatDate(loan.AcceptableAlreadyPaidDate)
		u.GracePeriodDate = formatDate(loan.GracePeriodDate)
		u.DueDate = formatDate(loan.DueDate)
	}

	if interaction != nil {
		created := interaction.CreationDate.Format(time.RFC3339Nano)
		source := interaction.Source
		status := interaction.Status
		notes := interaction.Notes
		p.Metadata = ProfileMetadata{
			CreationDate:    &created,
			LastUpdatedDate: formatDate(&interaction.LastUpdatedDate),
			Source:          &source,
			Status:          &status,
			Notes:           &notes,
		}
	}
	return p
}

func formatDate(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func amount(d decimal.Decimal) *json.Number {
	n := json.Number(d.String())
	return &n
}
