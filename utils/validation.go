package utils

import (
	"errors"
	"regexp"
	"strings"
)

var emailRegexp = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail reports whether the string looks like an email address.
func ValidateEmail(email string) bool {
	return emailRegexp.MatchString(strings.ToLower(email))
}

// CheckPassword enforces the password policy.
// TODO: extend the complexity check beyond plain length
func CheckPassword(passwd string) error {
	if len(passwd) < 8 || len(passwd) > 50 {
		return errors.New("password length must be between 8 and 50")
	}
	return nil
}

// IsEmpty reports whether a string is empty or all whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}
