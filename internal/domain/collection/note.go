package collection

import "strings"

// Note segment labels, in reading order
const (
	NoteLabelCallType         = "Call Type"
	NoteLabelDuration         = "Duration"
	NoteLabelCallID           = "Call ID"
	NoteLabelDispositionTrace = "Disposition Trace"
	NoteLabelAgreedAmount     = "Agreed Payment Amount"
	NoteLabelAgreedDate       = "Payment Date Agreed"
	NoteLabelCallEnd          = "Call End"
	NoteLabelDialingStatus    = "Dialing Status"
	NoteLabelOutcomeNote      = "Outcome Note"
	NoteLabelAdditionalNotes  = "Additional Notes"
)

const (
	noteSeparator  = "; "
	traceSeparator = " → "
)

// NoteSection is one labeled segment of an interaction note. A blank value
// drops the segment.
type NoteSection struct {
	Label string
	Value string
}

// ComposeNote renders sections as "Label: value" joined by "; ", skipping
// sections without a value
func ComposeNote(sections ...NoteSection) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s.Value == "" {
			continue
		}
		parts = append(parts, s.Label+": "+s.Value)
	}
	return strings.Join(parts, noteSeparator)
}

// DialingStatus is the dialer's diagnostic for the call
type DialingStatus struct {
	LongCode  string
	ShortCode string
	Details   string
}

// IsZero reports whether no dialing diagnostic was supplied
func (d DialingStatus) IsZero() bool {
	return d.LongCode == "" && d.ShortCode == "" && d.Details == ""
}

// String renders "long (short)" with " - details" when present
func (d DialingStatus) String() string {
	s := d.LongCode + " (" + d.ShortCode + ")"
	if d.Details != "" {
		s += " - " + d.Details
	}
	return s
}

// CallSummary gathers the optional parts of a call report that end up in
// the interaction note
type CallSummary struct {
	CallType            string
	CallDuration        string
	CallIdentifier      string
	DispositionTrace    []string
	AgreedPaymentAmount string
	PayLaterDate        string
	CallEndStatus       string
	Dialing             DialingStatus
	OutcomeNote         string
	AdditionalNotes     string
}

// Sections returns the note sections in their fixed reading order
func (s CallSummary) Sections() []NoteSection {
	var trace, amount, dialing string
	if steps := nonBlank(s.DispositionTrace); len(steps) > 0 {
		trace = strings.Join(steps, traceSeparator)
	}
	if s.AgreedPaymentAmount != "" {
		amount = "$" + s.AgreedPaymentAmount
	}
	if !s.Dialing.IsZero() {
		dialing = s.Dialing.String()
	}
	return []NoteSection{
		{Label: NoteLabelCallType, Value: s.CallType},
		{Label: NoteLabelDuration, Value: s.CallDuration},
		{Label: NoteLabelCallID, Value: s.CallIdentifier},
		{Label: NoteLabelDispositionTrace, Value: trace},
		{Label: NoteLabelAgreedAmount, Value: amount},
		{Label: NoteLabelAgreedDate, Value: s.PayLaterDate},
		{Label: NoteLabelCallEnd, Value: s.CallEndStatus},
		{Label: NoteLabelDialingStatus, Value: dialing},
		{Label: NoteLabelOutcomeNote, Value: s.OutcomeNote},
		{Label: NoteLabelAdditionalNotes, Value: s.AdditionalNotes},
	}
}

// Note composes the interaction note for the summary
func (s CallSummary) Note() string {
	return ComposeNote(s.Sections()...)
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
