package checkout

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Uzbek mobile numbers: +998 then exactly 9 digits.
var phoneRe = regexp.MustCompile(`^\+998\d{9}$`)

var (
	errPhoneRequired = errors.New("phone is required")
	errPhoneFormat   = errors.New("phone must be +998 followed by 9 digits")
	errCityRequired  = errors.New("city is required")
	errCityTooShort  = errors.New("city must be at least 2 characters")
	errAddrRequired  = errors.New("address is required")
	errAddrTooShort  = errors.New("address must be at least 10 characters")
)

func ValidatePhone(phone string) error {
	if strings.TrimSpace(phone) == "" {
		return errPhoneRequired
	}
	if !phoneRe.MatchString(phone) {
		return errPhoneFormat
	}
	return nil
}

// Lengths are rune counts: addresses here are mostly Cyrillic.
func ValidateCity(city string) error {
	trimmed := strings.TrimSpace(city)
	if trimmed == "" {
		return errCityRequired
	}
	if utf8.RuneCountInString(trimmed) < 2 {
		return errCityTooShort
	}
	return nil
}

func ValidateAddress(address string) error {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return errAddrRequired
	}
	if utf8.RuneCountInString(trimmed) < 10 {
		return errAddrTooShort
	}
	return nil
}

// FieldErrors maps field name to a user-facing message. Empty means valid.
type FieldErrors map[string]string

func (f FieldErrors) add(field string, err error) {
	if err != nil {
		f[field] = err.Error()
	}
}

// ValidationError blocks an advance or a submission; it never reaches the
// network.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
