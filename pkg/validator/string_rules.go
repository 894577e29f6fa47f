package validator

import (
	"fmt"
	"strings"
)

// Validation error codes for string rules.
const (
	CodeRequired  = "required"
	CodeMinLength = "min_length"
	CodeMaxLength = "max_length"
)

// RequiredString validates that a string is not empty after trimming
// whitespace. The label is used verbatim in the human-readable message.
func RequiredString(field, label, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Code:    CodeRequired,
			Message: fmt.Sprintf("%s is required", label),
		},
	}
}

// MinLenString validates that a string has at least min bytes.
func MinLenString(field, label, value string, min int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) >= min
		},
		Error: ValidationError{
			Field:   field,
			Code:    CodeMinLength,
			Message: fmt.Sprintf("%s must be at least %d characters long", label, min),
		},
	}
}

// MaxLenString validates that a string has at most max bytes.
func MaxLenString(field, label, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Code:    CodeMaxLength,
			Message: fmt.Sprintf("%s must not exceed %d characters", label, max),
		},
	}
}
