package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhone(t *testing.T) {
	valid := []string{
		"050-1234567",
		"0501234567",
		"+972501234567",
		"972501234567",
		"050 1234567",
	}
	for _, phone := range valid {
		assert.True(t, IsValidPhone(phone), phone)
	}

	invalid := []string{
		"",
		"12345",
		"06-1234567",
		"05012345",
		"050123456789",
		"abc",
	}
	for _, phone := range invalid {
		assert.False(t, IsValidPhone(phone), phone)
	}
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "0501234567", NormalizePhone("050-1234567"))
	assert.Equal(t, "0501234567", NormalizePhone("+972501234567"))
	assert.Equal(t, "0501234567", NormalizePhone("972 50 1234567"))
	assert.Equal(t, "0501234567", NormalizePhone("0501234567"))
	// Invalid numbers come back cleaned, not mangled.
	assert.Equal(t, "12345", NormalizePhone("1-2 345"))
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "050-1234567", FormatPhone("0501234567"))
	assert.Equal(t, "050-1234567", FormatPhone("+972501234567"))
	assert.Equal(t, "12345", FormatPhone("12345"))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail(""))
	assert.True(t, IsValidEmail("dana@example.com"))
	assert.False(t, IsValidEmail("dana@example"))
	assert.False(t, IsValidEmail("not-an-email"))
}

func TestIdentityOwns(t *testing.T) {
	id := Identity{Role: RoleGuest, Guest: &GuestRecord{Name: "Dana", Phone: "050-1234567"}}
	assert.True(t, id.Owns("+972501234567"))
	assert.False(t, id.Owns("0501234568"))

	assert.False(t, Identity{}.Owns("0501234567"))
}

func TestMonthRange(t *testing.T) {
	first, last := MonthRange(2025, time.June)
	assert.Equal(t, "2025-06-01", first)
	assert.Equal(t, "2025-06-30", last)

	first, last = MonthRange(2024, time.February)
	assert.Equal(t, "2024-02-01", first)
	assert.Equal(t, "2024-02-29", last)
}
