package service

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnauthenticated = errors.New("no valid session")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrUnknownUser     = errors.New("username does not exist")
	ErrWrongPassword   = errors.New("incorrect password")
	ErrNotFound        = errors.New("task not found")
	ErrForbidden       = errors.New("task belongs to another user")
	ErrEmptyTitle      = errors.New("task title is empty")
	ErrInvalidDate     = errors.New("invalid date format")
)

// ValidationError carries one message per offending form field, keyed by
// the field's form name
type ValidationError struct {
	Fields map[string]string
	err    error
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.err
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	//report fields by the name the html form uses
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		if _, seen := verr.Fields[fe.Field()]; seen {
			continue
		}
		verr.Fields[fe.Field()] = message(fe)
		if fe.Tag() == "datetime" {
			verr.err = ErrInvalidDate
		}
	}
	return verr
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fe.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fe.Param())
	case "datetime":
		return "Not a valid date value."
	}
	return "Invalid value."
}
