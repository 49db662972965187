package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"portal/internal/gateway"
	"portal/internal/service"
	"portal/pkg/response"
)

// statusFor maps service and backend errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, service.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidJenis),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrRowOutOfRange),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrNothingToExport),
		errors.Is(err, service.ErrSubmissionFailed):
		return http.StatusBadRequest
	}

	if code := gateway.StatusCode(err); code >= 400 && code < 500 {
		return code
	} else if code >= 500 {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func abortWithError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, vErr.Error(), vErr.Fields))
		return
	}

	status := statusFor(err)
	c.AbortWithStatusJSON(status, response.Error(status, err.Error()))
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
}
