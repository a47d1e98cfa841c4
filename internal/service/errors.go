package service

import "errors"

// Business outcomes the HTTP layer maps to 4xx responses.
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidTimeRange   = errors.New("invalid time range: From must be <= To")
	ErrCounterOverflow    = errors.New("increment would overflow the step counter")
)
