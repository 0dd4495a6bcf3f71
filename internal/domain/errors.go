package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrOTPExpired         = errors.New("otp expired or missing")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrSessionExpired     = errors.New("registration session expired")
	ErrProvisioningFailed = errors.New("provisioning failed")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenInvalid       = errors.New("token invalid")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrBadRequest         = errors.New("bad request")
)
