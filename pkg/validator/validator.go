package validator

import (
	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	return &CustomValidator{v: v}
}

// Validate performs struct validation
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

var std = validator.New()

// Struct validates v against its `validate` tags. Used by the socket
// dispatch path, which has no echo binding to go through.
func Struct(v interface{}) error {
	return std.Struct(v)
}
