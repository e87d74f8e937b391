package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	appcollection "github.com/callbridge/backend/internal/application/collection"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodePersistence, http.StatusInternalServerError},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRateLimited, http.StatusTooManyRequests},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"VALIDATION_ERROR", ErrCodeValidation},
		{"NOT_FOUND", ErrCodeNotFound},
		{"PERSISTENCE_ERROR", ErrCodePersistence},
		{"INTERNAL_ERROR", ErrCodeInternal},
		{ErrCodeNotFound, ErrCodeNotFound},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Route not found", "req-123")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Route not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestPreCallResponseJSON(t *testing.T) {
	t.Run("failure renders empty caller list", func(t *testing.T) {
		data, err := json.Marshal(NewPreCallFailure("Invalid caller_number format"))
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"success": "False",
			"caller_details": [],
			"status": {"type": "error", "message": "Invalid caller_number format"}
		}`, string(data))
	})

	t.Run("success wraps the profile", func(t *testing.T) {
		profile := &appcollection.PreCallProfile{}
		profile.UserInfo.AccountNumber = "1001234567"

		resp := NewPreCallSuccess(profile)

		assert.Equal(t, FlagTrue, resp.Success)
		require.Len(t, resp.CallerDetails, 1)
		assert.Equal(t, "1001234567", resp.CallerDetails[0].UserInfo.AccountNumber)
		assert.Equal(t, CallStatus{Type: StatusSuccess, Message: "Successful"}, resp.Status)
	})
}

func TestPostCallResponseJSON(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		data, err := json.Marshal(NewPostCallSuccess(&appcollection.OutcomeResult{
			CustomerUpdated: false,
			LoanUpdated:     true,
			InteractionID:   42,
		}))
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"success": "True",
			"message": "Call outcome processed successfully",
			"updates": {
				"customer_updated": false,
				"loan_updated": true,
				"interaction_created": true,
				"interaction_id": 42
			},
			"status": {"type": "success", "message": "Call outcome recorded and updates applied"}
		}`, string(data))
	})

	t.Run("failure omits updates", func(t *testing.T) {
		data, err := json.Marshal(NewPostCallFailure("No data provided", "Request body is required"))
		require.NoError(t, err)

		assert.JSONEq(t, `{
			"success": "False",
			"message": "No data provided",
			"status": {"type": "error", "message": "Request body is required"}
		}`, string(data))
	})
}
