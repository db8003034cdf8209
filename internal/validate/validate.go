// Package validate rejects malformed or unsafe input before it reaches
// the network layer. Each check returns a human-readable message, or
// the empty string when the input is acceptable.
package validate

import (
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func Email(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "Email is required"
	}
	if !emailPattern.MatchString(email) {
		return "Enter a valid email address"
	}
	return ""
}

func Password(password string) string {
	if len(password) < 8 {
		return "Password must be at least 8 characters"
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return "Password must contain a letter and a number"
	}
	return ""
}

// TextInput screens free-text fields for control characters and the
// script fragments the store will not sanitize for us.
func TextInput(text string) string {
	lowered := strings.ToLower(text)
	if strings.Contains(lowered, "<script") || strings.Contains(lowered, "javascript:") {
		return "Text contains disallowed content"
	}
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			return "Text contains invalid characters"
		}
	}
	return ""
}
