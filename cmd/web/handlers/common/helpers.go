package common

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

// notblank rejects strings that are empty after trimming.
func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// BindAndValidate decodes the request body into v and runs its validate
// tags. Every failure is reported as a 400 carrying msg. Values are not
// trimmed.
func BindAndValidate(c echo.Context, v any, msg string) error {
	if err := c.Bind(v); err != nil {
		return ErrBadRequest(msg)
	}
	if err := validate.Struct(v); err != nil {
		return ErrBadRequest(msg)
	}
	return nil
}

// Blank reports whether any of ss is empty after trimming.
func Blank(ss ...string) bool {
	for _, s := range ss {
		if strings.TrimSpace(s) == "" {
			return true
		}
	}
	return false
}
