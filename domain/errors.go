package domain

import (
	"errors"
	"fmt"
)

// Session errors
var (
	ErrAlreadyHydrated = errors.New("session already hydrated")
	ErrUserRequired    = errors.New("user record is required")
	ErrTokenRequired   = errors.New("bearer token is required")
	ErrNoSession       = errors.New("no active session")
)

// Storage errors
var (
	ErrKeyNotFound        = errors.New("key not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnsupportedDriver  = errors.New("unsupported storage driver")
)

// Navigation errors
var (
	ErrNavigationPending = errors.New("navigation pending until session is hydrated")
	ErrNoGraphMounted    = errors.New("no navigable graph mounted")
	ErrScreenNotFound    = errors.New("screen not found")
	ErrScreenForbidden   = errors.New("screen not reachable for current identity")
)

// Authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrLoginRejected      = errors.New("login rejected")
	ErrUnsupportedAccount = errors.New("account has no admin role and no buyer or seller type")
	ErrNetwork            = errors.New("network error")
)

// Validation errors
var (
	ErrIdentifierRequired = errors.New("email, username or phone number is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrFieldRequired      = errors.New("field is required")
	ErrInvalidEmail       = errors.New("please enter a valid email")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrInvalidUserField   = errors.New("account type must be buyer or seller")
	ErrCodeRequired       = errors.New("verification code is required")
	ErrInvalidCode        = errors.New("verification code must be 6 characters")
)

// APIError is a non-2xx response from the marketplace API
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}
