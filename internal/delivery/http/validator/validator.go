// Package validator adapts go-playground/validator to Echo's Validator
// interface.
package validator

import (
	domainerrors "kaimono/internal/domain/errors"

	"github.com/go-playground/validator/v10"
)

// echoValidator wraps a validator instance for Echo.
type echoValidator struct {
	validate *validator.Validate
}

// New creates the validator Echo uses for c.Validate calls.
func New() *echoValidator {
	return &echoValidator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Validate implements echo.Validator.
func (v *echoValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return domainerrors.ErrValidationFailed.WithDetails(err.Error())
	}

	return nil
}
