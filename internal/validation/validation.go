// Package validation contains field-level checks shared by the server
// handlers and the CLI client.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// UsernamePattern defines the allowed username format:
// latin letters, digits and underscores.
var UsernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// emailPattern is a pragmatic check, not a full RFC 5322 parser
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	// MinUsernameLen is the minimum username length
	MinUsernameLen = 3
	// MaxUsernameLen is the maximum username length
	MaxUsernameLen = 100
	// MinPasswordLen is the minimum password length
	MinPasswordLen = 8
	// MaxItemTitleLen is the maximum item title length
	MaxItemTitleLen = 255
)

// ValidateUsername checks that username matches the allowed format and length
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}

	if len(username) < MinUsernameLen {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLen)
	}

	if len(username) > MaxUsernameLen {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLen)
	}

	if !UsernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// ValidateEmail checks that email looks like an email address
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > 255 {
		return fmt.Errorf("email must not exceed 255 characters")
	}

	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}

	return nil
}

// ValidatePassword checks minimal password requirements
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	return nil
}

// ValidateItemTitle checks that title is non-blank and within length bounds
func ValidateItemTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title cannot be empty")
	}

	if len(title) > MaxItemTitleLen {
		return fmt.Errorf("title must not exceed %d characters", MaxItemTitleLen)
	}

	return nil
}

// ValidateItemPrice checks that price is strictly positive
func ValidateItemPrice(price int64) error {
	if price <= 0 {
		return fmt.Errorf("price must be greater than zero")
	}

	return nil
}
