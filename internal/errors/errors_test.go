package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrEmailNotVerified, http.StatusForbidden},
		{ErrAccountDisabled, http.StatusForbidden},
		{ErrTokenNotFound, http.StatusUnauthorized},
		{ErrTokenExpired, http.StatusUnauthorized},
		{ErrInvalidOrExpiredToken, http.StatusBadRequest},
		{ErrUserNotFound, http.StatusNotFound},
		{ErrEmailExists, http.StatusUnprocessableEntity},
		{ErrAlreadyVerified, http.StatusOK},
		{WrapError(ErrInternal, errors.New("db down")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := ToHTTPStatus(tt.err); got != tt.want {
			t.Errorf("ToHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestWrappedErrorMatchesSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("login: %w", WrapError(ErrInternal, cause))

	if !errors.Is(wrapped, ErrInternal) {
		t.Error("expected wrapped error to match ErrInternal")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("expected wrapped error to expose its cause")
	}
	if errors.Is(wrapped, ErrUserNotFound) {
		t.Error("did not expect match on a different code")
	}
	if got := GetErrorMessage(wrapped); got != ErrInternal.Message {
		t.Errorf("GetErrorMessage() = %q", got)
	}
}
