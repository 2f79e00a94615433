package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTransport         = errors.New("rate transport failure")
	ErrSchema            = errors.New("rate response schema mismatch")
	ErrValidation        = errors.New("asset validation failed")
	ErrUnsupportedScheme = errors.New("unsupported uri type")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrInvalidQuantity   = errors.New("fiat quantity out of range")
	ErrInvalidUnitPrice  = errors.New("unit price must not be negative")
	ErrSessionClosed     = errors.New("session closed")
)

// TransportError is a network or HTTP level failure while fetching a rate.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("rate transport failure: status %d", e.StatusCode)
	}
	return fmt.Sprintf("rate transport failure: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// SchemaError means the rate service answered, but with a payload we could not accept.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string {
	return "rate response schema mismatch: " + e.Reason
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid asset: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type UnsupportedSchemeError struct {
	URIType string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("unsupported uri type %q", e.URIType)
}

func (e *UnsupportedSchemeError) Is(target error) bool { return target == ErrUnsupportedScheme }
