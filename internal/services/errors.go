package services

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateEmail        = errors.New("email already registered")
	ErrInvalidOrExpiredToken = errors.New("verification link invalid or expired")
	ErrEmailNotVerified      = errors.New("email not verified")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMailDelivery          = errors.New("verification email could not be sent")
)

// ValidationError carries every violation found in a request so the
// caller can report them all at once.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Violations, "; ")
}
