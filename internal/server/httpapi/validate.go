package httpapi

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/otp"
	"github.com/dmitrijs2005/authkeeper/internal/server/password"
)

// ValidationError is a request problem that is safe to echo to the caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

type registerRequest struct {
	Name     string  `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Password string  `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email   string `json:"email"`
	OTPCode string `json:"otp_code"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTPCode     string `json:"otp_code"`
	NewPassword string `json:"new_password"`
}

// normalize trims fields and turns blank optional values into nil.
func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = blankToNil(r.Email)
	r.Phone = blankToNil(r.Phone)
	if r.Email != nil {
		e := strings.ToLower(*r.Email)
		r.Email = &e
	}
}

func (r *registerRequest) validate() error {
	r.normalize()
	if utf8.RuneCountInString(r.Name) < 2 {
		return invalid("name", "must be at least 2 characters")
	}
	if utf8.RuneCountInString(r.Name) > 100 {
		return invalid("name", "must be at most 100 characters")
	}
	if r.Email == nil && r.Phone == nil {
		return invalid("email", "email or phone is required")
	}
	if r.Email != nil {
		if err := validateEmail(*r.Email); err != nil {
			return err
		}
	}
	if r.Phone != nil {
		if err := validatePhone(*r.Phone); err != nil {
			return err
		}
	}
	return validatePassword("password", r.Password)
}

func (r *loginRequest) validate() error {
	r.Email = normalizeEmail(r.Email)
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return invalid("password", "is required")
	}
	return nil
}

func (r *forgotPasswordRequest) validate() error {
	r.Email = normalizeEmail(r.Email)
	return validateEmail(r.Email)
}

func (r *verifyOTPRequest) validate() error {
	r.Email = normalizeEmail(r.Email)
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	return validateCode(r.OTPCode)
}

func (r *resetPasswordRequest) validate() error {
	r.Email = normalizeEmail(r.Email)
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if err := validateCode(r.OTPCode); err != nil {
		return err
	}
	return validatePassword("new_password", r.NewPassword)
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email", "is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndexByte(email, '@')+1:], ".") {
		return invalid("email", "is not a valid address")
	}
	return nil
}

// validatePhone accepts 7 to 20 digits with an optional leading '+'.
func validatePhone(phone string) error {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 7 || len(digits) > 20 {
		return invalid("phone", "must have 7 to 20 digits")
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return invalid("phone", "must contain only digits and an optional leading +")
		}
	}
	return nil
}

func validateCode(code string) error {
	if len(code) != otp.CodeLength {
		return invalid("otp_code", "must be %d digits", otp.CodeLength)
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return invalid("otp_code", "must be %d digits", otp.CodeLength)
		}
	}
	return nil
}

func validatePassword(field, plain string) error {
	if err := password.ValidateStrength(plain); err != nil {
		return &ValidationError{Field: field, Reason: strings.TrimPrefix(err.Error(), "password ")}
	}
	// bcrypt refuses longer input
	if len(plain) > 72 {
		return invalid(field, "must be at most 72 bytes")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
