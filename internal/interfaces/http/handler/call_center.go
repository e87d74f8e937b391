package handler

import (
	"context"
	"errors"
	"net/http"

	appcollection "github.com/callbridge/backend/internal/application/collection"
	"github.com/callbridge/backend/internal/infrastructure/logger"
	"github.com/callbridge/backend/internal/interfaces/http/dto"
	"github.com/callbridge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CallOutcomeEngine resolves pre-call profiles and applies post-call outcomes
type CallOutcomeEngine interface {
	ResolvePreCallProfile(ctx context.Context, callerNumber string) (*appcollection.PreCallProfile, error)
	ApplyPostCallOutcome(ctx context.Context, req *appcollection.PostCallOutcomeRequest) (*appcollection.OutcomeResult, error)
}

// PreCallQuery is the query string of the pre-call lookup
type PreCallQuery struct {
	CallerNumber string `form:"caller_number" binding:"required"`
}

// CallCenterHandler serves the two endpoints called by the dialer
type CallCenterHandler struct {
	BaseHandler
	engine  CallOutcomeEngine
	decoder *PayloadDecoder
}

// NewCallCenterHandler creates a CallCenterHandler
func NewCallCenterHandler(engine CallOutcomeEngine, decoder *PayloadDecoder) *CallCenterHandler {
	return &CallCenterHandler{engine: engine, decoder: decoder}
}

// FetchPreCallProfile handles GET /api/fetch_user_profile_pre_call/?caller_number=N
func (h *CallCenterHandler) FetchPreCallProfile(c *gin.Context) {
	var q PreCallQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		logger.FromContext(c.Request.Context()).Debug("Pre-call lookup rejected",
			zap.Any("fields", middleware.ValidationMessages(err)))
		c.JSON(http.StatusBadRequest, dto.NewPreCallFailure(appcollection.MsgCallerNumberRequired))
		return
	}

	ctx, _ := logger.WithCallerNumber(c.Request.Context(), logger.FromContext(c.Request.Context()), q.CallerNumber)
	c.Request = c.Request.WithContext(ctx)

	profile, err := h.engine.ResolvePreCallProfile(ctx, q.CallerNumber)
	if err != nil {
		_ = c.Error(err)
		_, status, domainErr := classifyError(err)
		message := dto.MsgInternalServerError
		if domainErr != nil && status < http.StatusInternalServerError {
			message = domainErr.Message
		}
		c.JSON(status, dto.NewPreCallFailure(message))
		return
	}

	c.JSON(http.StatusOK, dto.NewPreCallSuccess(profile))
}

// ApplyPostCallOutcome handles POST /api/post_call_outcomes/
func (h *CallCenterHandler) ApplyPostCallOutcome(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, dto.NewPostCallFailure(
				"Request body exceeds maximum allowed size", msgMalformedBody))
			return
		}
		h.renderOutcomeError(c, err)
		return
	}

	req, err := h.decoder.Decode(body)
	if err != nil {
		h.renderOutcomeError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req != nil {
		if account := req.AccountNumber(); account != "" {
			ctx, _ = logger.WithAccountNumber(ctx, logger.FromContext(ctx), account)
			c.Request = c.Request.WithContext(ctx)
		}
	}

	result, err := h.engine.ApplyPostCallOutcome(ctx, req)
	if err != nil {
		h.renderOutcomeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPostCallSuccess(result))
}

// renderOutcomeError writes the post-call failure envelope. Caller faults
// keep their message and summary; anything else is a 500 with a fixed
// status line.
func (h *CallCenterHandler) renderOutcomeError(c *gin.Context, err error) {
	_ = c.Error(err)
	_, status, domainErr := classifyError(err)

	if domainErr == nil || status >= http.StatusInternalServerError {
		message := dto.MsgInternalServerError
		if domainErr != nil {
			message += ": " + domainErr.Message
		}
		logger.FromContext(c.Request.Context()).Error("Post-call outcome failed", zap.Error(err))
		c.JSON(status, dto.NewPostCallFailure(message, dto.MsgOutcomeFailed))
		return
	}

	summary := domainErr.Summary
	if summary == "" {
		summary = domainErr.Message
	}
	c.JSON(status, dto.NewPostCallFailure(domainErr.Message, summary))
}
