package service

import "errors"

var (
	// ErrEmailInUse is returned when signing up with a taken email.
	ErrEmailInUse = errors.New("email in use")
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("email or password is wrong")
	// ErrNotAuthorized indicates a missing, invalid, superseded or expired
	// session, or a user that can no longer be resolved.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrUserNotFound is returned for unknown verification tokens and
	// unknown emails on resend.
	ErrUserNotFound = errors.New("user not found")
	// ErrAlreadyVerified is returned when resending to a verified account.
	ErrAlreadyVerified = errors.New("verification has already been passed")
	// ErrMissingEmail is returned when a resend request carries no email.
	ErrMissingEmail = errors.New("missing required field email")
	// ErrInvalidInput wraps signup field validation failures.
	ErrInvalidInput = errors.New("invalid input")
)
