package password

import (
	"errors"
	"unicode"
)

// MinLength is the shortest accepted password, in characters.
const MinLength = 8

var (
	ErrTooShort    = errors.New("password must be at least 8 characters long")
	ErrNoUppercase = errors.New("password must contain at least one uppercase letter")
	ErrNoLowercase = errors.New("password must contain at least one lowercase letter")
	ErrNoDigit     = errors.New("password must contain at least one digit")
)

// ValidateStrength returns the first policy rule plain violates, or nil.
func ValidateStrength(plain string) error {
	var n int
	var upper, lower, digit bool
	for _, r := range plain {
		n++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case n < MinLength:
		return ErrTooShort
	case !upper:
		return ErrNoUppercase
	case !lower:
		return ErrNoLowercase
	case !digit:
		return ErrNoDigit
	}
	return nil
}
