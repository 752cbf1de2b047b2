package service

import "errors"

var (
	ErrNameRequired    = errors.New("guest name is required")
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidDate     = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrMessageRequired = errors.New("message is required")
	ErrRateLimited     = errors.New("too many guestbook entries, try again later")
	ErrForbidden       = errors.New("not allowed")
)
