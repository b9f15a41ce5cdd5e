package lib

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns the validator shared by the HTTP layer, the config
// loader and the function-call interpreter. Field errors are reported by
// their json names so they line up with the tool argument keys.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// RegisterEnum registers tag as a string validation that accepts any value
// the parse function recognises.
func RegisterEnum(v *validator.Validate, tag string, parse func(string) bool) error {
	return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() != reflect.String {
			return false
		}
		return parse(field.String())
	})
}

// FieldNames returns the json names of the fields that failed validation,
// or nil when err is not a validation error.
func FieldNames(err error) []string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return names
}
