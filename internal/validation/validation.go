// Package validation provides field-level validators and the error type
// carried by rejected writes.
package validation

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Violations maps field names to violation codes.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error wraps a non-empty Violations map as an error.
// Handlers map it to a 400 response with the violations as details.
type Error struct {
	Violations Violations
}

func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Violations))
	for f := range e.Violations {
		fields = append(fields, f)
	}
	return "validation failed: " + strings.Join(fields, ", ")
}

// NewError returns an *Error for the given violations.
func NewError(v Violations) error {
	return &Error{Violations: v}
}

// Basic validators

func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if val.Sign() <= 0 {
		v[field] = "must_be_positive"
	}
}
