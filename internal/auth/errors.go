package auth

import "github.com/wolfman30/sales-call-agent/internal/apperr"

var (
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "Email already registered")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "Invalid email or password")
	ErrUnverified         = apperr.New(apperr.KindForbidden, "Please verify your email before logging in")
	ErrInvalidCode        = apperr.New(apperr.KindInvalidInput, "Invalid verification code")
	ErrCodeExpired        = apperr.New(apperr.KindInvalidInput, "Verification code expired or not found")
	ErrInvalidResetToken  = apperr.New(apperr.KindInvalidInput, "Invalid or expired reset token")
	ErrInvalidToken       = apperr.New(apperr.KindUnauthorized, "Invalid token")
	ErrTokenExpired       = apperr.New(apperr.KindUnauthorized, "Token expired")
	ErrMissingToken       = apperr.New(apperr.KindUnauthorized, "No token provided")
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "User not found")
	ErrAlreadyVerified    = apperr.New(apperr.KindConflict, "Email already verified")
)
