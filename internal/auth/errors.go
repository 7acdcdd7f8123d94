package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when the email/password pair does not match a user.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserAccountDisabled is returned when attempting to authenticate an inactive user account.
	ErrUserAccountDisabled = errors.New("user account is disabled")

	// ErrInvalidToken is returned when a bearer token fails validation.
	ErrInvalidToken = errors.New("invalid token")

	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")
)
