// Package validate normalises and checks the values typed into the order
// portal. Every function strips blank space first, then either returns the
// canonical value or an error wrapping ErrInvalidFormat.
package validate

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"n3portal/internal/model"
)

var ErrInvalidFormat = errors.New("invalid format")

const (
	MinShoeSize = 19.0
	MaxShoeSize = 50.0
	SizeStep    = 0.5

	OrderNumberDigits = 10
)

// decimalRE admits plain decimal notation only; ParseFloat alone would also
// take hex floats and underscores.
var decimalRE = regexp.MustCompile(`^[+-]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

var emailRE = regexp.MustCompile("^[a-zA-Z0-9.!#$%&’*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)+$")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("orderemail", func(fl validator.FieldLevel) bool {
		return emailRE.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("halfsize", func(fl validator.FieldLevel) bool {
		return math.Mod(fl.Field().Float(), SizeStep) == 0
	})
	return v
}

// RemoveBlankSpace drops every space character from s.
func RemoveBlankSpace(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[n:])
}

// Name accepts a first or last name made of letters only and returns it
// capitalised.
func Name(raw string) (string, error) {
	name := capitalize(RemoveBlankSpace(strings.TrimSpace(raw)))
	if err := validate.Var(name, "required,alphaunicode"); err != nil {
		return "", fmt.Errorf("%w: the name you have provided %q does not seem to be in a regular format", ErrInvalidFormat, name)
	}
	return name, nil
}

// Email accepts local@domain.tld addresses and returns them lowercased.
func Email(raw string) (string, error) {
	email := strings.ToLower(RemoveBlankSpace(strings.TrimSpace(raw)))
	if err := validate.Var(email, "required,orderemail"); err != nil {
		return "", fmt.Errorf("%w: the email you have provided %q does not seem to be in a regular format", ErrInvalidFormat, email)
	}
	return email, nil
}

// ShoeSize accepts EU sizes between 19 and 50 in steps of 0.5.
func ShoeSize(raw string) (float64, error) {
	s := RemoveBlankSpace(strings.TrimSpace(raw))
	if !decimalRE.MatchString(s) {
		return 0, fmt.Errorf("%w: could not convert %q to a shoe size", ErrInvalidFormat, s)
	}
	size, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(size) || math.IsInf(size, 0) {
		return 0, fmt.Errorf("%w: could not convert %q to a shoe size", ErrInvalidFormat, s)
	}
	if size < MinShoeSize || size > MaxShoeSize {
		return 0, fmt.Errorf("%w: unfortunately %v is not within the European shoe size range we do", ErrInvalidFormat, size)
	}
	if err := validate.Var(size, "halfsize"); err != nil {
		return 0, fmt.Errorf("%w: incorrect information provided for European shoe sizing: %v", ErrInvalidFormat, size)
	}
	return size, nil
}

func firstLetter(raw string) (string, byte) {
	s := strings.ToLower(RemoveBlankSpace(strings.TrimSpace(raw)))
	if s == "" {
		return s, 0
	}
	return s, s[0]
}

// ArchHeight maps an answer starting with l, m or h to the arch support level.
func ArchHeight(raw string) (model.ArchHeight, error) {
	s, c := firstLetter(raw)
	switch c {
	case 'l':
		return model.ArchLow, nil
	case 'm':
		return model.ArchMedium, nil
	case 'h':
		return model.ArchHigh, nil
	}
	return "", fmt.Errorf("%w: incorrect information provided for arch height: %q", ErrInvalidFormat, s)
}

// InsoleWidth maps an answer starting with n, s or w to the insole width.
func InsoleWidth(raw string) (model.InsoleWidth, error) {
	s, c := firstLetter(raw)
	switch c {
	case 'n':
		return model.WidthNarrow, nil
	case 's':
		return model.WidthStandard, nil
	case 'w':
		return model.WidthWide, nil
	}
	return "", fmt.Errorf("%w: incorrect information provided for insole width: %q", ErrInvalidFormat, s)
}

// OrderNumber accepts exactly ten digits.
func OrderNumber(raw string) (string, error) {
	s := RemoveBlankSpace(strings.TrimSpace(raw))
	if err := validate.Var(s, "required,numeric"); err != nil || strings.ContainsAny(s, "+-.") {
		return "", fmt.Errorf("%w: order numbers contain digits only, got %q", ErrInvalidFormat, s)
	}
	if len(s) != OrderNumberDigits {
		return "", fmt.Errorf("%w: our order numbers require %d digits, %s has %d digits", ErrInvalidFormat, OrderNumberDigits, s, len(s))
	}
	return s, nil
}

// YesNo reads a y/n answer. Only the first letter matters.
func YesNo(raw string) (bool, error) {
	_, c := firstLetter(raw)
	switch c {
	case 'y':
		return true, nil
	case 'n':
		return false, nil
	}
	return false, fmt.Errorf("%w: please answer y or n", ErrInvalidFormat)
}

// Order checks a fully assembled order before it is written to the store.
func Order(o model.Order) error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		return fmt.Errorf("%w: the %s %q does not pass the %s check", ErrInvalidFormat, f.Field(), fmt.Sprint(f.Value()), f.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidFormat, err)
}
