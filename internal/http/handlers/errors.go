package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/dairyshell/domain"
	"github.com/you/dairyshell/internal/services"
)

// statusFor maps a domain error to an HTTP status code
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrIdentifierRequired),
		errors.Is(err, domain.ErrPasswordRequired),
		errors.Is(err, domain.ErrFieldRequired),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrPasswordTooShort),
		errors.Is(err, domain.ErrInvalidUserField),
		errors.Is(err, domain.ErrCodeRequired),
		errors.Is(err, domain.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrLoginRejected),
		errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrScreenNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrScreenForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNoGraphMounted),
		errors.Is(err, domain.ErrUnsupportedAccount):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNavigationPending):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNetwork):
		return http.StatusBadGateway
	}

	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// abortWithError writes the user-facing message for err
func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(statusFor(err), gin.H{"error": services.UserMessage(err)})
}
