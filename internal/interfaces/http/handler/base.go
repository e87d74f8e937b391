package handler

import (
	"errors"
	"net/http"

	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/callbridge/backend/internal/interfaces/http/dto"
	"github.com/callbridge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID returns the ID assigned by the RequestID middleware, falling
// back to the inbound header
func getRequestID(c *gin.Context) string {
	if id := middleware.GetRequestID(c); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// classifyError maps err to a transport code and status. The domain error is
// nil for errors that never crossed the domain boundary.
func classifyError(err error) (code string, status int, domainErr *shared.DomainError) {
	if errors.As(err, &domainErr) {
		code = dto.NormalizeErrorCode(domainErr.Code)
		return code, dto.GetHTTPStatus(code), domainErr
	}
	return dto.ErrCodeInternal, http.StatusInternalServerError, nil
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	c.JSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// HandleError renders err in the generic envelope. Messages of server-side
// faults are replaced so store errors never reach the client.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	code, status, domainErr := classifyError(err)
	message := "An unexpected error occurred"
	if domainErr != nil && status < http.StatusInternalServerError {
		message = domainErr.Message
	}
	h.ErrorWithCode(c, code, message)
}
