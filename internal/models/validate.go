package models

import (
	"regexp"
	"strings"
)

// Israeli mobile numbers: 050-1234567, 0501234567, 972501234567, +972501234567.
var phonePattern = regexp.MustCompile(`^(\+?972|0)?5[0-9]{8}$`)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func cleanPhone(phone string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(phone))
}

// IsValidPhone reports whether phone is a well-formed Israeli mobile number.
// Spaces and hyphens are ignored.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(cleanPhone(phone))
}

// NormalizePhone converts any accepted phone format to the local 05X form.
// Invalid input is returned cleaned but otherwise untouched.
func NormalizePhone(phone string) string {
	cleaned := cleanPhone(phone)
	if !phonePattern.MatchString(cleaned) {
		return cleaned
	}
	cleaned = strings.TrimPrefix(cleaned, "+")
	cleaned = strings.TrimPrefix(cleaned, "972")
	if !strings.HasPrefix(cleaned, "0") {
		cleaned = "0" + cleaned
	}
	return cleaned
}

// FormatPhone renders a normalized number as 05X-XXXXXXX for display.
func FormatPhone(phone string) string {
	cleaned := NormalizePhone(phone)
	if len(cleaned) == 10 && strings.HasPrefix(cleaned, "05") {
		return cleaned[:3] + "-" + cleaned[3:]
	}
	return phone
}

// IsValidEmail reports whether email is well-formed. Empty is valid: the
// field is optional everywhere it appears.
func IsValidEmail(email string) bool {
	if email == "" {
		return true
	}
	return emailPattern.MatchString(email)
}
