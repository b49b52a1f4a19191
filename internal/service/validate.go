package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct tags and turns the first failure into an InvalidInput error
// naming the field, e.g. "shippingAddress.city is required".
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return invalidInput("invalid request: %v", err)
	}
	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return &Error{Kind: ErrInvalidInput, ID: field, Msg: field + " is required"}
	case "min":
		return &Error{Kind: ErrInvalidInput, ID: field, Msg: field + " must be at least " + fe.Param()}
	case "max":
		return &Error{Kind: ErrInvalidInput, ID: field, Msg: field + " must be at most " + fe.Param()}
	case "email":
		return &Error{Kind: ErrInvalidInput, ID: field, Msg: field + " must be a valid email"}
	default:
		return &Error{Kind: ErrInvalidInput, ID: field, Msg: field + " is invalid"}
	}
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
