package handlers

import (
	"errors"
	"net/http"

	"studiobook/models"
	"studiobook/services/booking"
	"studiobook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusFor maps a domain error onto an HTTP status and public error code.
func statusFor(err error) (int, string) {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case models.CodeValidation, models.CodeUnknownService:
			return http.StatusBadRequest, domainErr.Code
		case models.CodeUnauthorized:
			return http.StatusUnauthorized, domainErr.Code
		case models.CodeNotFound:
			return http.StatusNotFound, domainErr.Code
		case models.CodeInvalidTransition, models.CodeConflict:
			return http.StatusConflict, domainErr.Code
		}
	}
	if errors.Is(err, booking.ErrPaymentsDisabled) {
		return http.StatusServiceUnavailable, "payments_disabled"
	}
	return http.StatusInternalServerError, "internal_error"
}

// respondError writes err as the standard error body. Internal errors are
// logged and never echoed to the client.
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		getLogger(c).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		message = "An unexpected error occurred. Please try again later."
	} else {
		var domainErr *models.Error
		if errors.As(err, &domainErr) && domainErr.Message != "" {
			message = domainErr.Message
		}
	}
	utils.JSONError(c, status, code, message)
}

// badRequest reports a binding failure.
func badRequest(c *gin.Context, err error) {
	utils.JSONError(c, http.StatusBadRequest, models.CodeValidation, err.Error())
}
