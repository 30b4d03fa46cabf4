package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/go-playground/validator/v10"
)

var (
	emailRegex         = regexp.MustCompile(constants.EmailPattern)
	streetAddressRegex = regexp.MustCompile(constants.StreetAddressPattern)
	tokenIDRegex       = regexp.MustCompile(constants.TokenIDPattern)
)

// Register installs the custom tags used by request DTOs.
func Register(v *validator.Validate) error {
	rules := map[string]func(string) bool{
		"password":      IsPassword,
		"streetaddress": IsStreetAddress,
		"midasemail":    IsEmail,
		"tokenid":       IsTokenID,
	}
	for tag, check := range rules {
		check := check
		err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return check(fl.Field().String())
		})
		if err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

// IsPassword requires at least eight characters with a lower case letter,
// an upper case letter, a digit and one of #$^+=!*()@%&.
func IsPassword(s string) bool {
	if len([]rune(s)) < constants.MinPasswordLength {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(constants.PasswordSymbols, r):
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func IsStreetAddress(s string) bool {
	return streetAddressRegex.MatchString(s)
}

func IsEmail(s string) bool {
	return len(s) <= constants.MaxEmailLength && emailRegex.MatchString(s)
}

// IsTokenID checks the shape of an access token ID: 24 lower case hex chars.
func IsTokenID(s string) bool {
	return tokenIDRegex.MatchString(s)
}
