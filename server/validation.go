package server

import (
	"errors"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/jrsteele09/swiftchat-web/users"
)

// Form validation runs before any backend call
var (
	errInvalidEmail      = errors.New("Please enter a valid email address")
	errPasswordTooShort  = errors.New("Password must be at least 8 characters")
	errNameTooShort      = errors.New("Name must be at least 2 characters")
	errTermsNotAccepted  = errors.New("You must accept the terms and conditions")
	errPasswordsMismatch = errors.New("Passwords don't match")
)

const minPasswordLength = 8

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	// ParseAddress accepts "Name <a@b>"; only a bare address is a valid field value
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return errInvalidEmail
	}
	return nil
}

func validateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return errPasswordTooShort
	}
	return nil
}

func validateRegistration(name, email, password string, acceptedTerms bool) error {
	if utf8.RuneCountInString(strings.TrimSpace(name)) < 2 {
		return errNameTooShort
	}
	if err := validateEmail(email); err != nil {
		return err
	}
	if err := users.ValidatePasswordStrength(password); err != nil {
		return err
	}
	if !acceptedTerms {
		return errTermsNotAccepted
	}
	return nil
}

func validatePasswordReset(password, confirm string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return errPasswordTooShort
	}
	if password != confirm {
		return errPasswordsMismatch
	}
	return nil
}
