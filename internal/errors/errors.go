package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code so a wrapped copy still compares equal to its
// predefined sentinel.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors
var (
	// User errors
	ErrUserNotFound    = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrEmailExists     = NewDomainError("EMAIL_EXISTS", "The email has already been taken.")
	ErrCINExists       = NewDomainError("CIN_EXISTS", "The cin has already been taken.")
	ErrAlreadyVerified = NewDomainError("ALREADY_VERIFIED", "email already verified")

	// Authentication errors
	ErrInvalidCredentials    = NewDomainError("INVALID_CREDENTIALS", "invalid credentials")
	ErrEmailNotVerified      = NewDomainError("EMAIL_NOT_VERIFIED", "email address is not verified")
	ErrAccountDisabled       = NewDomainError("ACCOUNT_DISABLED", "account deactivated")
	ErrUnauthorized          = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrInvalidToken          = NewDomainError("INVALID_TOKEN", "invalid or expired token")
	ErrTokenRevoked          = NewDomainError("TOKEN_REVOKED", "token has been revoked")
	ErrTokenNotFound         = NewDomainError("TOKEN_NOT_FOUND", "refresh token not found")
	ErrTokenExpired          = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrInvalidOrExpiredToken = NewDomainError("INVALID_OR_EXPIRED_TOKEN", "invalid or expired reset token")

	// Validation errors
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "invalid input")
	ErrPasswordMismatch  = NewDomainError("PASSWORD_MISMATCH", "password confirmation does not match")
	ErrIncorrectPassword = NewDomainError("INCORRECT_PASSWORD", "current password is incorrect")

	// System errors
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "internal server error")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes
// This should only be used in the handler/presentation layer
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	case "ALREADY_VERIFIED":
		return http.StatusOK

	case "INVALID_INPUT", "PASSWORD_MISMATCH", "INVALID_OR_EXPIRED_TOKEN":
		return http.StatusBadRequest

	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "INVALID_TOKEN", "TOKEN_REVOKED",
		"TOKEN_EXPIRED", "TOKEN_NOT_FOUND", "INCORRECT_PASSWORD":
		return http.StatusUnauthorized

	case "EMAIL_NOT_VERIFIED", "ACCOUNT_DISABLED":
		return http.StatusForbidden

	case "USER_NOT_FOUND":
		return http.StatusNotFound

	// uniqueness violations are reported like any other field validation failure
	case "EMAIL_EXISTS", "CIN_EXISTS":
		return http.StatusUnprocessableEntity

	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts error message
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return err.Error()
}
