package service

import (
	"errors"
	"net/mail"
	"strings"
	"unicode"
)

var (
	ErrInvalidUsername = errors.New("username must be 3-50 characters of letters, numbers, hyphens, and underscores")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrWeakPassword    = errors.New("password must be at least 8 characters and contain uppercase, lowercase, and a digit")
)

// ValidateUsername checks the username shape and returns the normalized
// (lowercased, trimmed) form.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 50 {
		return "", ErrInvalidUsername
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' {
			return "", ErrInvalidUsername
		}
	}
	return strings.ToLower(username), nil
}

// ValidateEmail checks the address shape and returns the lowercased form.
func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(email), nil
}

// ValidatePassword enforces the password policy: at least 8 characters with
// an uppercase letter, a lowercase letter, and a digit.
func ValidatePassword(plaintext string) error {
	if len(plaintext) < 8 || len(plaintext) > 100 {
		return ErrWeakPassword
	}
	var upper, lower, digit bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrWeakPassword
	}
	return nil
}
