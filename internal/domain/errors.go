package domain

import "fmt"

var (
	ErrNotFound       = errString("not found")
	ErrUnavailable    = errString("data source unavailable")
	ErrInvalidCountry = errString("invalid country")
	ErrValidation     = errString("validation failed")
	ErrDuplicate      = errString("already in cart")
)

type errString string

func (e errString) Error() string { return string(e) }

// ValidationError reports a rejected input value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DuplicateInfo describes the cart item that blocked an add.
type DuplicateInfo struct {
	ItemID      string `json:"id"`
	CompanyName string `json:"company_name"`
	ReportName  string `json:"report_name"`
	Country     string `json:"country"`
	Quantity    int    `json:"quantity"`
}

type DuplicateError struct {
	Existing DuplicateInfo
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("report %q for %s is already in the cart with quantity %d",
		e.Existing.ReportName, e.Existing.CompanyName, e.Existing.Quantity)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

// InvalidCountry wraps ErrInvalidCountry with the offending code.
func InvalidCountry(code string) error {
	return fmt.Errorf("%w: %q", ErrInvalidCountry, code)
}

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
