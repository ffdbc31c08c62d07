package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/casapps/tasktracker/src/internal/errors"
)

var validate = newValidator()

// newValidator reports fields by their JSON names
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validator returns the shared validator so the HTTP layer applies the same rules
func Validator() *validator.Validate {
	return validate
}

// validateInput checks input and converts the first failing field into a ValidationError
func validateInput(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperrors.NewValidationError("Invalid input", "")
	}

	fe := fieldErrs[0]
	return apperrors.NewValidationError(fieldMessage(fe), fe.Field())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be a positive integer", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// requireID rejects the zero id, which no stored row can have
func requireID(field string, id uint) error {
	if id == 0 {
		return apperrors.NewValidationError(fmt.Sprintf("%s must be a positive integer", field), field)
	}
	return nil
}
