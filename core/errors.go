package core

import "errors"

var (
	// ErrInvalidCredentials covers both "no such user" and "wrong password";
	// callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInactiveAccount means the password matched but the account is disabled.
	ErrInactiveAccount = errors.New("inactive user account")

	// ErrTokenInvalid covers malformed, wrong-signature and wrong-type tokens.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrTokenExpired is surfaced to callers identically to ErrTokenInvalid.
	ErrTokenExpired = errors.New("token has expired")

	ErrCSRFMissing      = errors.New("CSRF token missing")
	ErrCSRFInvalid      = errors.New("invalid CSRF token")
	ErrPermissionDenied = errors.New("not enough permissions")

	ErrNotFound         = errors.New("record not found")
	ErrUsernameTaken    = errors.New("username already registered")
	ErrEmailTaken       = errors.New("email already registered")
	ErrPasswordMismatch = errors.New("current password is incorrect")
)
