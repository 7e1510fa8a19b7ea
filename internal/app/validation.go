package app

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Rules shared with the register binding tags in the HTTP layer.
const (
	usernameRules = "min=3,max=64"
	emailRules    = "email,max=128"
	passwordRules = "min=8,max=128"
)

var validate = validator.New()

func validateField(name, value, rules string) error {
	err := validate.Var(value, rules)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s fails %q", ErrInvalidInput, name, fieldErrs[0].Tag())
	}
	return fmt.Errorf("%w: %s: %v", ErrInvalidInput, name, err)
}
