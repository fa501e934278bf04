package models

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	linkURLPattern = regexp.MustCompile(`^(http|https)://[^ "]+$`)
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	passwordChars  = regexp.MustCompile(`^[A-Za-z\d@.#$!%*?&]{8,15}$`)
)

const passwordSpecials = "@.#$!%*?&"

// ValidateInternship checks a full record before it is stored.
func ValidateInternship(in *Internship) error {
	ve := NewValidationError()
	if in == nil {
		ve.Add("internship", "is required")
		return ve
	}
	if strings.TrimSpace(in.UserID) == "" {
		ve.Add("user", "User ID is required")
	}
	if strings.TrimSpace(in.Company) == "" {
		ve.Add("company", "is required")
	}
	if strings.TrimSpace(in.Position) == "" {
		ve.Add("position", "is required")
	}
	if in.ApplicationDate.IsZero() {
		ve.Add("applicationDate", "is required")
	}
	if !in.Status.Valid() {
		ve.Add("status", "must be one of Accepted, Withdrawn, Rejected, Pending, Follow Up")
	}
	for _, l := range in.Links {
		if strings.TrimSpace(l.Label) == "" {
			ve.Add("links", "label is required")
		}
		if !linkURLPattern.MatchString(l.URL) {
			ve.Add("links", l.URL+" is not a valid URL!")
		}
	}
	return ve.OrNil()
}

func ValidateUsername(username string) string {
	n := utf8.RuneCountInString(strings.TrimSpace(username))
	switch {
	case n < 3:
		return "Username must be at least 3 characters."
	case n > 20:
		return "Username cannot exceed 20 characters"
	}
	return ""
}

func ValidateEmail(email string) string {
	if !emailPattern.MatchString(strings.TrimSpace(email)) {
		return "Please enter a valid email"
	}
	return ""
}

// ValidatePassword enforces 8-15 chars with lower, upper, digit and special.
func ValidatePassword(pw string) string {
	if !passwordChars.MatchString(pw) {
		return "Password must be 8-15 characters using letters, digits and @.#$!%*?&"
	}
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	}
	return ""
}

// NormalizeEmail trims and lowercases an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
