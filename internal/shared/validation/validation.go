package validation

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
)

// Violation names one failed field rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error aggregates every violation found in one validation pass so callers
// can surface all of them at once. Validators never partially apply input.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsError unwraps an aggregated validation error if err carries one.
func AsError(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// Collector gathers violations across fields of one input.
type Collector struct {
	violations []Violation
}

func (c *Collector) Add(field, message string) {
	c.violations = append(c.violations, Violation{Field: field, Message: message})
}

func (c *Collector) CheckLen(field, value string, min, max int) {
	runes := len([]rune(strings.TrimSpace(value)))
	if runes < min || runes > max {
		c.Add(field, lenMessage(min, max))
	}
}

// Err returns nil when no violations were collected.
func (c *Collector) Err() error {
	if len(c.violations) == 0 {
		return nil
	}
	return &Error{Violations: c.violations}
}

func lenMessage(min, max int) string {
	return "length must be between " + strconv.Itoa(min) + " and " + strconv.Itoa(max) + " characters"
}

// NormalizePhone trims the input and reports whether it is a valid
// subscriber number: +380 followed by exactly 9 digits.
func NormalizePhone(raw string) (string, bool) {
	phone := strings.TrimSpace(raw)
	if len(phone) != 13 || !strings.HasPrefix(phone, "+380") {
		return phone, false
	}
	return phone, allDigits(phone[4:])
}

// IsOtpCode reports whether the submitted code is exactly 4 digits.
func IsOtpCode(code string) bool {
	return len(code) == 4 && allDigits(code)
}

// IsEdrpou reports whether the value is an 8-digit national registry code.
func IsEdrpou(value string) bool {
	return len(value) == 8 && allDigits(value)
}

// IsEmail reports whether the value parses as a plain address.
func IsEmail(value string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	return err == nil && addr.Address == strings.TrimSpace(value)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
