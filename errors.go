package authkit

import "errors"

var (
	// ErrRefreshInvalid is returned when a refresh token fails signature,
	// expiry, or type verification.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrSessionRevoked is returned when a verified refresh token has no live
	// session. It deliberately collapses never-existed, TTL-expired, and
	// already-rotated so probing a stolen token reveals nothing.
	ErrSessionRevoked = errors.New("refresh session revoked or expired")
	// ErrCSRFMismatch is returned when a CSRF token is missing or does not
	// validate against the session it should be bound to.
	ErrCSRFMismatch = errors.New("csrf token mismatch")
	// ErrInvalidCredentials is returned on a failed username/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotConfirmed is returned when login succeeds against an
	// unconfirmed account; a fresh confirmation email is sent as a side effect.
	ErrAccountNotConfirmed = errors.New("account not confirmed")
	// ErrRegistrationFailed is returned when the user store rejects a registration.
	ErrRegistrationFailed = errors.New("registration failed")
	// ErrBotCredentials is returned on a failed bot id/token check.
	ErrBotCredentials = errors.New("invalid bot credentials")
	// ErrOTPInvalid is returned when a password-reset code does not verify
	// within the allowed step window.
	ErrOTPInvalid = errors.New("invalid or expired one-time code")
	// ErrNoUserWithEmail is returned by reset-password demand for an unknown user.
	ErrNoUserWithEmail = errors.New("no user found with this email")
	// ErrUserHasNoEmail is returned when the account exists but has no email to
	// deliver the reset code to.
	ErrUserHasNoEmail = errors.New("user has no email address")
	// ErrUserNotFound is returned when a user lookup comes back empty.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyConfirmed is returned when re-sending a confirmation email to a
	// confirmed account.
	ErrAlreadyConfirmed = errors.New("account already confirmed")
	// ErrConfirmTokenInvalid is returned for bad or expired email-confirmation tokens.
	ErrConfirmTokenInvalid = errors.New("invalid or expired confirmation token")
	// ErrAccessRevoked is returned when an access token's jti is blacklisted.
	ErrAccessRevoked = errors.New("access token revoked")
)
