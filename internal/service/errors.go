package service

import (
	"errors"
	"fmt"
)

// Expected domain failures. Anything else returned by a service is an internal fault.
var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingCredential  = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")

	ErrPasswordTooLong = fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)
)
