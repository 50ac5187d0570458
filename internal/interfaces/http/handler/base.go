// Package handler implements the HTTP handlers of the POS gateway.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/erp/pos/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// BindError answers a failed ShouldBind: field errors become a validation
// response, domain errors raised while decoding keep their code, anything
// else is a bad request
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.HandleError(c, domainErr)
		return
	}
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed",
			middleware.GetRequestID(c),
			details,
		))
		return
	}
	h.BadRequest(c, "Invalid request body")
}

// HandleError maps domain errors to their status and message. Unknown errors
// are logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		switch {
		case shared.IsRemote(err):
			logger.L(c.Request.Context()).Warn("backend rejected request", zap.String("message", domainErr.Message))
		case !shared.IsValidation(err):
			logger.L(c.Request.Context()).Info("request refused", zap.String("code", domainErr.Code))
		}
		h.Error(c, dto.GetHTTPStatus(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("unhandled error", zap.Error(err))
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}

// int64Param parses a positive integer path parameter
func int64Param(c *gin.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || v <= 0 {
		return 0, shared.NewValidationError("Invalid " + name)
	}
	return v, nil
}
