package constants

// HTTP Header Names
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderUserAgent     = "User-Agent"
	HeaderXRequestID    = "X-Request-ID"
	HeaderRetryAfter    = "Retry-After"
)

// Cookie names carried by the SPA on every request
const (
	CookieAccessToken  = "access_token"
	CookieRefreshToken = "refresh_token"
)

// HTTP Content Types
const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html"
	ContentTypeText = "text/plain"
)

// Common HTTP Error Messages
const (
	MsgUnauthorized       = "Unauthorized"
	MsgBadRequest         = "Invalid request"
	MsgValidationFailed   = "The given data was invalid."
	MsgInternalError      = "Internal server error"
	MsgServiceUnavailable = "Service temporarily unavailable"
	MsgTooManyRequests    = "Too Many Attempts."
)

// Auth flow messages surfaced to the SPA
const (
	MsgRegistered           = "User registered successfully. Please check your email to verify your account."
	MsgRegistrationFailed   = "Registration failed"
	MsgEmailNotVerified     = "Please verify your email address before logging in."
	MsgAccountDeactivated   = "Account deactivated"
	MsgRefreshTokenNotFound = "Refresh token not found"
	MsgRefreshTokenInvalid  = "Invalid or expired refresh token"
	MsgTokenRefreshed       = "Token refreshed successfully"
	MsgLoggedOut            = "Successfully logged out"
	MsgUserNotFound         = "User not found"
	MsgInvalidVerifyLink    = "Invalid verification link"
	MsgExpiredVerifyLink    = "Invalid or expired verification link"
	MsgEmailAlreadyVerified = "Email already verified"
	MsgEmailVerified        = "Email verified successfully"
	MsgVerificationLinkSent = "Verification link sent"
	MsgResetLinkSent        = "If the email exists, a password reset link has been sent."
	MsgResetLinkSentKnown   = "Password reset link sent to your email."
	MsgPasswordReset        = "Password reset successfully"
	MsgInvalidResetToken    = "Invalid or expired reset token"
	MsgResetTokenValid      = "Token is valid"
	MsgEmailFound           = "Email found"
	MsgProfileUpdated       = "Profile updated successfully"
	MsgPasswordChanged      = "Password updated successfully"
)
