package auth

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// SupportedLanguages lists the preferred languages an account may choose.
var SupportedLanguages = []string{"en", "es", "fr", "de", "zh", "ar"}

var validate = validator.New()

type registerInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6,max=72"`
	Language string `validate:"oneof=en es fr de zh ar"`
}

type languageInput struct {
	Language string `validate:"required,oneof=en es fr de zh ar"`
}

// validationError maps the first failing field to a service error.
func validationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err
	}
	switch errs[0].Field() {
	case "Name":
		return ErrInvalidName
	case "Email":
		return ErrInvalidEmail
	case "Password":
		return ErrInvalidPassword
	default:
		return ErrInvalidLanguage
	}
}
