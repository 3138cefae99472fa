package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MinUsernameLen = 2
	MaxUsernameLen = 30
	MinPasswordLen = 6

	// bcrypt refuses inputs over 72 bytes, so the bound is enforced
	// here rather than surfacing as a hash failure.
	MaxPasswordLen = 72
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lower-cases an address. Every lookup and
// every stored email goes through this, so case never splits accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateRegistration returns every violation in the input. It runs at
// the HTTP boundary and again inside AccountService.Register, so the
// manager never depends on the transport having done its job.
func ValidateRegistration(username, email, password string) []string {
	var violations []string

	if n := utf8.RuneCountInString(strings.TrimSpace(username)); n < MinUsernameLen || n > MaxUsernameLen {
		violations = append(violations, fmt.Sprintf("username must be between %d and %d characters", MinUsernameLen, MaxUsernameLen))
	}
	if !ValidEmail(NormalizeEmail(email)) {
		violations = append(violations, "email format is invalid")
	}
	if len(password) < MinPasswordLen {
		violations = append(violations, fmt.Sprintf("password must be at least %d characters", MinPasswordLen))
	} else if len(password) > MaxPasswordLen {
		violations = append(violations, fmt.Sprintf("password must be at most %d bytes", MaxPasswordLen))
	}

	return violations
}
