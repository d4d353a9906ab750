package validation

import (
	"testing"

	apperrors "github.com/tutorconnect/tutor-connect/pkg/util/errorutil"
)

func TestValidateEmail(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"s@x.com", true},
		{"first.last+tag@school.edu.ng", true},
		{"no-at-sign.com", false},
		{"a@b", false},
		{"spa ce@x.com", false},
		{"a@do main.com", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidateEmail(tc.in); got != tc.want {
			t.Errorf("ValidateEmail(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Abcdef12", true},
		{"LongerPassw0rd", true},
		{"Abcde12", false},
		{"abcdefg1", false},
		{"ABCDEFG1", false},
		{"Abcdefgh", false},
		{"", false},
		{"Ab1ééé", false},
		{"Ab1éééééé", true},
	}
	for _, tc := range cases {
		if got := ValidatePassword(tc.in); got != tc.want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidateNameFormat(t *testing.T) {
	cases := []struct {
		first, middle, last string
		want                bool
	}{
		{"Ada", "", "Lovelace", true},
		{"Mary-Jane", "O'Neil", "Van Dyke", true},
		{"A", "", "Lovelace", false},
		{"Ada", "", "L", false},
		{"Ada", "X", "Lovelace", false},
		{"Ada2", "", "Lovelace", false},
		{"Ada", "", "", false},
	}
	for _, tc := range cases {
		if got := ValidateNameFormat(tc.first, tc.middle, tc.last); got != tc.want {
			t.Errorf("ValidateNameFormat(%q, %q, %q) = %v, want %v", tc.first, tc.middle, tc.last, got, tc.want)
		}
	}
}

func TestValidateRegistrationReportsFirstFailure(t *testing.T) {
	err := ValidateRegistration(RegistrationInput{Email: "bad", Password: "weak", FirstName: "A", LastName: "B"})
	domainErr := apperrors.ToDomainError(err)
	if domainErr == nil || domainErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if domainErr.Details["field"] != "email" {
		t.Fatalf("expected email to fail first, got %v", domainErr.Details["field"])
	}

	err = ValidateRegistration(RegistrationInput{Email: "s@x.com", Password: "weak", FirstName: "A", LastName: "B"})
	if field := apperrors.ToDomainError(err).Details["field"]; field != "password" {
		t.Fatalf("expected password to fail, got %v", field)
	}

	err = ValidateRegistration(RegistrationInput{Email: "s@x.com", Password: "Abcdef12", FirstName: "A", LastName: "B"})
	if field := apperrors.ToDomainError(err).Details["field"]; field != "name" {
		t.Fatalf("expected name to fail, got %v", field)
	}

	if err := ValidateRegistration(RegistrationInput{Email: "s@x.com", Password: "Abcdef12", FirstName: "Sam", LastName: "Lee"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  T@X.Com "); got != "t@x.com" {
		t.Fatalf("expected t@x.com, got %q", got)
	}
}
