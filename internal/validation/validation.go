// Package validation holds the form validators shared by the auth and profile
// endpoints.  All functions are pure; failures are returned as values.
package validation

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	phoneRe         = regexp.MustCompile(`^1[3-9]\d{9}$`)
	emailRe         = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	lowerRe         = regexp.MustCompile(`[a-z]`)
	upperRe         = regexp.MustCompile(`[A-Z]`)
	digitRe         = regexp.MustCompile(`\d`)
	specialRe       = regexp.MustCompile(`[@$!%*?&]`)
	strongCharsetRe = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{8,}$`)
)

// ValidatePhone reports whether s is an 11-digit mobile number starting 13..19.
func ValidatePhone(s string) bool { return phoneRe.MatchString(s) }

// ValidateEmail checks the local@domain.tld shape only.
func ValidateEmail(s string) bool { return emailRe.MatchString(s) }

// ValidatePassword requires at least 8 characters with lowercase, uppercase and a digit.
func ValidatePassword(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}
	return lowerRe.MatchString(s) && upperRe.MatchString(s) && digitRe.MatchString(s)
}

// ValidateStrongPassword additionally requires one of @$!%*?& and allows no
// characters outside letters, digits and that set.
func ValidateStrongPassword(s string) bool {
	return strongCharsetRe.MatchString(s) &&
		lowerRe.MatchString(s) && upperRe.MatchString(s) &&
		digitRe.MatchString(s) && specialRe.MatchString(s)
}

// Required reports whether s has non-whitespace content.
func Required(s string) bool { return strings.TrimSpace(s) != "" }

// Length reports whether the rune length of s is within [min, max].  An empty
// string is accepted only when min is 0.  A negative max means unbounded.
func Length(s string, min, max int) bool {
	if s == "" {
		return min == 0
	}
	n := utf8.RuneCountInString(s)
	if max < 0 {
		return n >= min
	}
	return n >= min && n <= max
}

// NumberRange reports whether s parses as a number within [min, max].
func NumberRange(s string, min, max float64) bool {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) {
		return false
	}
	return n >= min && n <= max
}
