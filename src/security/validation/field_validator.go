// backend/src/security/validation/field_validator.go
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrValidationFailed = fmt.Errorf("validation failed")

const (
	DefaultMaxStringLength = 255
	MaxItemNameLength      = 255
	MaxCategoryLength      = 100
	MaxUsernameLength      = 50
	MinPasswordLength      = 6
)

// --- String Validators ---

// ValidateStringNotEmpty checks if a string is not empty after trimming.
func ValidateStringNotEmpty(s, fieldName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidationFailed, fieldName)
	}
	return nil
}

// ValidateStringMaxLength checks if a string's UTF-8 character count is within max bounds.
func ValidateStringMaxLength(s string, maxLength int, fieldName string) error {
	if utf8.RuneCountInString(s) > maxLength {
		return fmt.Errorf("%w: %s exceeds maximum length of %d characters", ErrValidationFailed, fieldName, maxLength)
	}
	return nil
}

// ValidateTextField sanitizes s and checks it is non-empty and within maxLength.
// The sanitized value is returned.
func ValidateTextField(s string, maxLength int, fieldName string) (string, error) {
	clean := SanitizeText(s)
	if err := ValidateStringNotEmpty(clean, fieldName); err != nil {
		return "", err
	}
	if err := ValidateStringMaxLength(clean, maxLength, fieldName); err != nil {
		return "", err
	}
	return clean, nil
}

// ValidateEmail performs a shallow syntax check: one '@' with text on both sides
// and a dot in the domain.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.IndexByte(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') || at == len(email)-1 {
		return fmt.Errorf("%w: email is not valid", ErrValidationFailed)
	}
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("%w: email is not valid", ErrValidationFailed)
	}
	return ValidateStringMaxLength(email, DefaultMaxStringLength, "email")
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidationFailed, MinPasswordLength)
	}
	return nil
}
