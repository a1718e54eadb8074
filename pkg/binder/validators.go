package binder

import (
	"net/url"

	"github.com/go-playground/validator/v10"
)

// urlValidator ensures the value is an absolute http(s) URL or the empty
// string. The empty string is allowed so that the validator can be used on
// optional fields; combine it with `required` when the field is mandatory.
func urlValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
