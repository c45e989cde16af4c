package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// ValidationError reports a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	lettersRe      = regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ]*$`)
	alphanumericRe = regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s.,?!()-]*$`)
	localPhoneRe   = regexp.MustCompile(`^8\d{10}$`)
	intlPhoneRe    = regexp.MustCompile(`^\+?\d{10,15}$`)
	emailRe        = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidatePersonName checks first and last names: letters only, 2..15 runes.
func ValidatePersonName(field, value string) error {
	n := utf8.RuneCountInString(value)
	if n < MinLenName || n > MaxLenName {
		return invalid(field, "must be between %d and %d characters", MinLenName, MaxLenName)
	}
	if !lettersRe.MatchString(value) {
		return invalid(field, "must contain only Latin or Cyrillic letters")
	}
	return nil
}

// ValidatePhone accepts 89999999999 or an international number with an optional plus.
func ValidatePhone(value string) error {
	if localPhoneRe.MatchString(value) || intlPhoneRe.MatchString(value) {
		return nil
	}
	return invalid("phone_number", "must look like 89999999999")
}

// ValidateEmail does a shallow syntax check.
func ValidateEmail(field, value string) error {
	if len(value) > MaxLenEmail || !emailRe.MatchString(value) {
		return invalid(field, "is not a valid email address")
	}
	return nil
}

// ValidateAlphanumeric allows letters, digits, spaces and basic punctuation.
func ValidateAlphanumeric(field, value string, maxLen int) error {
	if utf8.RuneCountInString(value) > maxLen {
		return invalid(field, "must be at most %d characters", maxLen)
	}
	if !alphanumericRe.MatchString(value) {
		return invalid(field, "must contain only letters, digits, punctuation and brackets")
	}
	return nil
}

func validateMaxLen(field, value string, maxLen int) error {
	if utf8.RuneCountInString(value) > maxLen {
		return invalid(field, "must be at most %d characters", maxLen)
	}
	return nil
}

// ClockMinutes parses "HH:MM" into minutes after midnight.
func ClockMinutes(value string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes after midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
