package dto

import (
	appcollection "github.com/callbridge/backend/internal/application/collection"
)

// Flag is the call-center boolean. The dialer integration compares the
// literal strings "True" and "False".
type Flag string

const (
	FlagTrue  Flag = "True"
	FlagFalse Flag = "False"
)

// Status types used in CallStatus
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Status lines shown on successful call-center responses
const (
	MsgPreCallSuccess      = "Successful"
	MsgOutcomeProcessed    = "Call outcome processed successfully"
	MsgOutcomeRecorded     = "Call outcome recorded and updates applied"
	MsgOutcomeFailed       = "Failed to process call outcome"
	MsgInternalServerError = "Internal server error"
)

// CallStatus is the status block of every call-center response
type CallStatus struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// PreCallResponse is the body of the pre-call profile lookup
type PreCallResponse struct {
	Success       Flag                            `json:"success"`
	CallerDetails []*appcollection.PreCallProfile `json:"caller_details"`
	Status        CallStatus                      `json:"status"`
}

// NewPreCallSuccess wraps a resolved profile
func NewPreCallSuccess(profile *appcollection.PreCallProfile) PreCallResponse {
	return PreCallResponse{
		Success:       FlagTrue,
		CallerDetails: []*appcollection.PreCallProfile{profile},
		Status:        CallStatus{Type: StatusSuccess, Message: MsgPreCallSuccess},
	}
}

// NewPreCallFailure reports a failed lookup with an empty caller list
func NewPreCallFailure(message string) PreCallResponse {
	return PreCallResponse{
		Success:       FlagFalse,
		CallerDetails: []*appcollection.PreCallProfile{},
		Status:        CallStatus{Type: StatusError, Message: message},
	}
}

// OutcomeUpdates summarises what a post-call outcome changed
type OutcomeUpdates struct {
	CustomerUpdated    bool  `json:"customer_updated"`
	LoanUpdated        bool  `json:"loan_updated"`
	InteractionCreated bool  `json:"interaction_created"`
	InteractionID      int64 `json:"interaction_id"`
}

// PostCallResponse is the body of the post-call outcome endpoint
type PostCallResponse struct {
	Success Flag            `json:"success"`
	Message string          `json:"message"`
	Updates *OutcomeUpdates `json:"updates,omitempty"`
	Status  CallStatus      `json:"status"`
}

// NewPostCallSuccess reports an applied outcome
func NewPostCallSuccess(result *appcollection.OutcomeResult) PostCallResponse {
	return PostCallResponse{
		Success: FlagTrue,
		Message: MsgOutcomeProcessed,
		Updates: &OutcomeUpdates{
			CustomerUpdated:    result.CustomerUpdated,
			LoanUpdated:        result.LoanUpdated,
			InteractionCreated: true,
			InteractionID:      result.InteractionID,
		},
		Status: CallStatus{Type: StatusSuccess, Message: MsgOutcomeRecorded},
	}
}

// NewPostCallFailure reports a rejected outcome. message is the detailed
// reason; summary is the short status line.
func NewPostCallFailure(message, summary string) PostCallResponse {
	return PostCallResponse{
		Success: FlagFalse,
		Message: message,
		Status:  CallStatus{Type: StatusError, Message: summary},
	}
}

// Response is the envelope for failures raised outside the call-center
// handlers (rate limiting, body limits, unknown routes, dashboard queries)
type Response struct {
	Success bool       `json:"success"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponseWithRequestID creates an error response tagged with the
// request ID. Domain codes are normalized.
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Error: &ErrorInfo{
			Code:      NormalizeErrorCode(code),
			Message:   message,
			RequestID: requestID,
		},
	}
}
