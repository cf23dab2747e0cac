// Package validation validates form DTOs with go-playground/validator and
// reports failures keyed by form field name.
//
// Field names come from the `form` struct tag. A `message` tag overrides the
// text shown for any failure other than "required":
//
//	type RegisterForm struct {
//	    Email    string `form:"email" validate:"required,email"`
//	    Password string `form:"password" validate:"required,min=4,max=20" message:"Must be 4 to 20 characters."`
//	}
//
// Besides the validator built-ins, `maxbytes=N` caps a string's length in bytes
// rather than characters.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldErrors maps a form field name to a user-facing message.
type FieldErrors map[string]string

// Error implements error with the messages sorted by field.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + fe[f]
	}
	return strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has an error.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		if err := validate.RegisterValidation("maxbytes", maxBytes); err != nil {
			panic(err)
		}
	})
	return validate
}

func maxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= limit
}

// Struct validates s, which must be a pointer to a struct. It returns nil when
// s is valid.
func Struct(s any) FieldErrors {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return FieldErrors{"": err.Error()}
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fieldErrs := make(FieldErrors, len(validationErrs))
	for _, fe := range validationErrs {
		fieldErrs.Add(fe.Field(), translate(t, fe))
	}
	return fieldErrs
}

var messages = map[string]string{
	"required": "This field is required.",
	"email":    "Please enter a valid email address.",
	"url":      "Please enter a valid URL.",
}

func translate(t reflect.Type, fe validator.FieldError) string {
	if fe.Tag() != "required" {
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if msg := sf.Tag.Get("message"); msg != "" {
				return msg
			}
		}
	}
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("Must be at least %s characters long.", fe.Param())
		}
		return fmt.Sprintf("Must be at least %s.", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Must be at most %s characters long.", fe.Param())
		}
		return fmt.Sprintf("Must be at most %s.", fe.Param())
	case "maxbytes":
		return fmt.Sprintf("Must be at most %s bytes long.", fe.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "eqfield":
		return "Does not match."
	default:
		return fmt.Sprintf("Failed %s validation.", fe.Tag())
	}
}
