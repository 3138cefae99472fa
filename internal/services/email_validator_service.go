package services

import "context"

type EmailValidator interface {
	Validate(ctx context.Context, email string) error
}

// LocalValidator accepts any address that survived ValidateRegistration.
// It is the default when no external reputation service is configured.
type LocalValidator struct{}

func NewLocalValidator() *LocalValidator {
	return &LocalValidator{}
}

func (v *LocalValidator) Validate(ctx context.Context, email string) error {
	// Syntax already checked by ValidateRegistration, so just accept
	return nil
}
