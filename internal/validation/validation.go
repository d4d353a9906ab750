// Package validation holds the pure input checks applied before any account is persisted.
package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

const minPasswordLength = 8

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[A-Za-z\s'-]{2,}$`)
)

// RegistrationInput is the subset of a registration request that is validated.
type RegistrationInput struct {
	Email      string
	Password   string
	FirstName  string
	MiddleName string
	LastName   string
}

// ValidateEmail checks a basic local@domain.tld shape.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidatePassword requires at least 8 characters (runes, not bytes) with a lowercase letter,
// an uppercase letter and a digit.
func ValidatePassword(s string) bool {
	if utf8.RuneCountInString(s) < minPasswordLength {
		return false
	}
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// ValidateNameFormat checks first and last name, and middle name when present.
func ValidateNameFormat(first, middle, last string) bool {
	if !namePattern.MatchString(first) || !namePattern.MatchString(last) {
		return false
	}
	if middle != "" && !namePattern.MatchString(middle) {
		return false
	}
	return true
}

// ValidateRegistration returns a validation error for the first failing rule.
func ValidateRegistration(in RegistrationInput) error {
	if !ValidateEmail(strings.TrimSpace(in.Email)) {
		return apperrors.NewValidationError("please enter a valid email address", map[string]any{"field": "email"})
	}
	if !ValidatePassword(in.Password) {
		return apperrors.NewValidationError(
			"password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a number",
			map[string]any{"field": "password"})
	}
	if !ValidateNameFormat(strings.TrimSpace(in.FirstName), strings.TrimSpace(in.MiddleName), strings.TrimSpace(in.LastName)) {
		return apperrors.NewValidationError(
			"names must be at least 2 characters and contain only letters, spaces, hyphens or apostrophes",
			map[string]any{"field": "name"})
	}
	return nil
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
