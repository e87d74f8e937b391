package collection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/callbridge/backend/internal/domain/collection"
)

// FlexString is a payload scalar rendered as text. Call-handling systems
// send the same field as a string, a number or a boolean depending on the
// dialer, so all three are accepted; null reads as "".
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")):
		*f = ""
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*f = FlexString(data)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
	default:
		return fmt.Errorf("expected a string, number or boolean, got %s", data)
	}
	return nil
}

// String returns the trimmed text
func (f FlexString) String() string {
	return strings.TrimSpace(string(f))
}

// UserInfo holds the user_info section in payload order. Numbers keep their
// literal text so amounts are not rounded through float64.
type UserInfo collection.Updates

// UnmarshalJSON implements json.Unmarshaler
func (u *UserInfo) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*u = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("user_info must be an object")
	}

	updates := UserInfo{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("user_info: unexpected key %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("user_info.%s: %w", name, err)
		}
		updates = append(updates, collection.Update{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*u = updates
	return nil
}

// Updates returns the section as domain updates
func (u UserInfo) Updates() collection.Updates {
	return collection.Updates(u)
}

// DialingStatusDTO is the dialer diagnostic block
type DialingStatusDTO struct {
	LongCode  FlexString `json:"long_code"`
	ShortCode FlexString `json:"short_code"`
	Details   FlexString `json:"details"`
}

// OutcomeDetailsDTO is the outcome_details section
type OutcomeDetailsDTO struct {
	FinalDisposition        FlexString        `json:"final_disposition"`
	ContactType             FlexString        `json:"contact_type"`
	UserAgreedPaymentAmount FlexString        `json:"user_agreed_payment_amount"`
	PayLaterDate            FlexString        `json:"pay_later_date"`
	CallType                FlexString        `json:"call_type"`
	CallDuration            FlexString        `json:"call_duration"`
	CallIdentifier          FlexString        `json:"call_identifier"`
	CallEndStatus           FlexString        `json:"call_end_status"`
	DispositionTrace        []FlexString      `json:"disposition_trace"`
	DialingStatus           *DialingStatusDTO `json:"dialing_status"`
}

// OutcomeMetadataDTO is the metadata section
type OutcomeMetadataDTO struct {
	CreationDate FlexString `json:"creation_date"`
	Notes        FlexString `json:"notes"`
}

// PostCallOutcomeRequest is the outcome payload posted after a call
type PostCallOutcomeRequest struct {
	UserInfo        UserInfo           `json:"user_info"`
	OutcomeDetails  OutcomeDetailsDTO  `json:"outcome_details"`
	Metadata        OutcomeMetadataDTO `json:"metadata"`
	CallOutcomeNote FlexString         `json:"call_outcome_note"`
}

// AccountNumber returns the trimmed account identifier from user_info
func (r *PostCallOutcomeRequest) AccountNumber() string {
	return r.UserInfo.Updates().GetString("account_number")
}

// Summary collects the note-bearing parts of the payload
func (r *PostCallOutcomeRequest) Summary() collection.CallSummary {
	d := r.OutcomeDetails
	trace := make([]string, 0, len(d.DispositionTrace))
	for _, step := range d.DispositionTrace {
		trace = append(trace, step.String())
	}
	s := collection.CallSummary{
		CallType:            d.CallType.String(),
		CallDuration:        d.CallDuration.String(),
		CallIdentifier:      d.CallIdentifier.String(),
		DispositionTrace:    trace,
		AgreedPaymentAmount: d.UserAgreedPaymentAmount.String(),
		PayLaterDate:        d.PayLaterDate.String(),
		CallEndStatus:       d.CallEndStatus.String(),
		OutcomeNote:         r.CallOutcomeNote.String(),
		AdditionalNotes:     r.Metadata.Notes.String(),
	}
	if d.DialingStatus != nil {
		s.Dialing = collection.DialingStatus{
			LongCode:  d.DialingStatus.LongCode.String(),
			ShortCode: d.DialingStatus.ShortCode.String(),
			Details:   d.DialingStatus.Details.String(),
		}
	}
	return s
}

// OutcomeResult reports what a post-call outcome changed
type OutcomeResult struct {
	CustomerUpdated bool                 `json:"customer_updated"`
	LoanUpdated     bool                 `json:"loan_updated"`
	InteractionID   int64                `json:"interaction_id"`
	Directive       collection.Directive `json:"-"`
	CustomerFields  []string             `json:"-"`
	LoanFields      []string             `json:"-"`
	SkippedValues   int                  `json:"-"`
}
