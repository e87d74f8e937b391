package dto

import "net/http"

// Transport error codes of the generic envelope, ERR_<CATEGORY>
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodePersistence     = "ERR_PERSISTENCE"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "ERR_RATE_LIMITED"
)

// errorCodes pairs each transport code with its HTTP status and, where one
// exists, the shared.DomainError code it is raised for
var errorCodes = []struct {
	code   string
	domain string
	status int
}{
	{ErrCodeInternal, "INTERNAL_ERROR", http.StatusInternalServerError},
	{ErrCodeValidation, "VALIDATION_ERROR", http.StatusBadRequest},
	{ErrCodeNotFound, "NOT_FOUND", http.StatusNotFound},
	{ErrCodePersistence, "PERSISTENCE_ERROR", http.StatusInternalServerError},
	{ErrCodeRequestTooLarge, "", http.StatusRequestEntityTooLarge},
	{ErrCodeRateLimited, "", http.StatusTooManyRequests},
}

// GetHTTPStatus returns the status for a transport code, 500 when unknown
func GetHTTPStatus(code string) int {
	for _, e := range errorCodes {
		if e.code == code {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode converts a domain error code to its transport code.
// Transport codes and unknown codes are returned unchanged.
func NormalizeErrorCode(code string) string {
	for _, e := range errorCodes {
		if e.domain != "" && e.domain == code {
			return e.code
		}
	}
	return code
}
