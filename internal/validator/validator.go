package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	ErrRequired        = "is required"
	ErrInvalidEmail    = "must be a valid email address"
	ErrMinLength       = "must be at least %s characters long"
	ErrMaxLength       = "must be at most %s characters long"
	ErrMinValue        = "must be at least %s"
	ErrMaxValue        = "must be at most %s"
	ErrMinItems        = "must contain at least %s item(s)"
	ErrMaxItems        = "must contain at most %s item(s)"
	ErrAlpha           = "must contain only letters"
	ErrOneOf           = "must be one of: %s"
	ErrInvalidPrice    = "must be a positive amount with at most two decimal places"
	ErrInvalidPassword = "must be at least 8 characters long and include at least one uppercase letter, " +
		"one lowercase letter, one number, and one special character (!@#$%^&*)."
	ErrInvalid = "is invalid"
)

var (
	hasSpecialRgx = regexp.MustCompile(`[!@#$%^&*]`)
	maxPrice      = decimal.NewFromInt(10_000)
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	// report fields under their JSON names
	validator.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	validator.RegisterValidation("password", validatePassword)
	validator.RegisterValidation("price", validatePrice)

	return validator
}

func validatePassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 || len(password) > 25 {
		return false
	}

	containsUpper, containsLower, containsDigit, containsSpecial := false, false, false, false

	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			containsUpper = true
		case unicode.IsLower(ch):
			containsLower = true
		case unicode.IsDigit(ch):
			containsDigit = true
		case hasSpecialRgx.MatchString(string(ch)):
			containsSpecial = true
		}
	}

	return containsUpper && containsLower && containsDigit && containsSpecial
}

// validatePrice accepts decimal strings in (0, 10000] with at most two
// fractional digits.
func validatePrice(fl validator.FieldLevel) bool {
	price, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}

	if !price.IsPositive() || price.GreaterThan(maxPrice) {
		return false
	}

	return price.Equal(price.Truncate(2))
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return ErrInvalidEmail
	case "min":
		return fmt.Sprintf(boundMessage(err.Kind(), ErrMinLength, ErrMinValue, ErrMinItems), err.Param())
	case "max":
		return fmt.Sprintf(boundMessage(err.Kind(), ErrMaxLength, ErrMaxValue, ErrMaxItems), err.Param())
	case "alpha":
		return ErrAlpha
	case "oneof":
		return fmt.Sprintf(ErrOneOf, err.Param())
	case "password":
		return ErrInvalidPassword
	case "price":
		return ErrInvalidPrice
	default:
		return ErrInvalid
	}
}

func boundMessage(kind reflect.Kind, length, value, items string) string {
	switch kind {
	case reflect.String:
		return length
	case reflect.Slice, reflect.Array, reflect.Map:
		return items
	default:
		return value
	}
}
