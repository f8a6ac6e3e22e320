package dto

import "time"

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair is what the token issuer hands to the cookie layer. Expiry
// times travel with the values so the handler never re-parses a token.
type TokenPair struct {
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token                string `json:"token" binding:"required"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=6,max=100"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type VerifyTokenResponse struct {
	Valid   bool   `json:"valid"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
}

type FindEmailResponse struct {
	Email   *string `json:"email"`
	Message string  `json:"message"`
}

// VerifyResult is the outcome of an email verification link. It is
// rendered as query parameters on the redirect to the SPA.
type VerifyResult struct {
	Success bool
	Message string
}
