// Package validation runs the single schema-validation pass applied to every
// service input. Rules live in `validate` struct tags; failures come back as a
// *domain.ValidationError listing each rejected field by its JSON name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/inkpress/cms-backend/internal/core/domain"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
	folderPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]+(/[A-Za-z0-9_-]+)*$`)
)

const (
	minPasswordLen = 6
	maxPasswordLen = 128
)

var (
	instance *validator.Validate
	once     sync.Once
)

// Validator returns the shared validator with the custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(jsonName)
		mustRegister(v, "username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "hexcolor6", func(fl validator.FieldLevel) bool {
			return hexColorPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "folder", func(fl validator.FieldLevel) bool {
			return folderPattern.MatchString(fl.Field().String())
		})
		mustRegister(v, "password", func(fl validator.FieldLevel) bool {
			return StrongPassword(fl.Field().String())
		})
		instance = v
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %s: %v", tag, err))
	}
}

// StrongPassword requires 6 to 128 characters with at least one letter and one digit.
func StrongPassword(s string) bool {
	n := len([]rune(s))
	if n < minPasswordLen || n > maxPasswordLen {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

// Struct validates input and converts failures into *domain.ValidationError.
func Struct(input any) error {
	err := Validator().Struct(input)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &domain.ValidationError{Fields: make([]domain.FieldError, 0, len(ve))}
	for _, fe := range ve {
		out.Fields = append(out.Fields, domain.FieldError{
			Field:   fieldPath(fe),
			Message: Message(fe),
		})
	}
	return out
}

// Message converts a single FieldError into a human-readable message.
func Message(fe validator.FieldError) string {
	field := fieldPath(fe)
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "url":
		return field + " must be a valid URL"
	case "mongodb":
		return field + " must be a valid id"
	case "min":
		if isText(fe) {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isText(fe) {
			return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot have more than %s items", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "username":
		return field + " can only contain letters, numbers and underscores"
	case "password":
		return fmt.Sprintf("%s must be %d-%d characters and contain a letter and a number", field, minPasswordLen, maxPasswordLen)
	case "hexcolor6":
		return field + " must be a valid hex color"
	case "folder":
		return field + " can only contain letters, numbers, dashes, underscores and slashes"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// fieldPath drops the top-level struct name from the namespace so nested
// errors read "tags[2]" instead of "CreatePostInput.tags[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func isText(fe validator.FieldError) bool {
	return fe.Kind() == reflect.String
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		if fld.Name == "" {
			return ""
		}
		return strings.ToLower(fld.Name[:1]) + fld.Name[1:]
	}
	return name
}
