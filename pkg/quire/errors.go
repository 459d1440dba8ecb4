package quire

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below matches one of these via errors.Is.
var (
	ErrInvalidSchema       = errors.New("invalid schema")
	ErrUnknownField        = errors.New("unknown field")
	ErrUnknownKind         = errors.New("unknown field kind")
	ErrUnsupportedOperator = errors.New("unsupported operator")
	ErrInvalidValue        = errors.New("invalid value")
	ErrNotFound            = errors.New("record not found")
	ErrRemote              = errors.New("remote call failed")
	ErrNoWrittenRange      = errors.New("no written range reported")
	ErrInvalidID           = errors.New("invalid record id")
)

// SchemaError reports a bad field declaration.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid schema: %s", e.Reason)
	}
	return fmt.Sprintf("invalid schema: field %q: %s", e.Field, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// UnknownFieldError reports a field name that is not part of the schema.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// UnknownKindError reports a field whose kind has no codec.
type UnknownKindError struct {
	Field string
	Kind  Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown kind %q for field %q", e.Kind, e.Field)
}

func (e *UnknownKindError) Is(target error) bool { return target == ErrUnknownKind }

// UnsupportedOperatorError reports an operator the field's kind does not accept,
// e.g. gt on a STRING field.
type UnsupportedOperatorError struct {
	Field    string
	Kind     Kind
	Operator Operator
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("operator %q is not supported on %s field %q", e.Operator, e.Kind, e.Field)
}

func (e *UnsupportedOperatorError) Is(target error) bool { return target == ErrUnsupportedOperator }

// FieldValidationError reports a value rejected for a field.
type FieldValidationError struct {
	Field  string
	Reason string
}

func (e *FieldValidationError) Error() string {
	return fmt.Sprintf("invalid value for field %s: %s", e.Field, e.Reason)
}

func (e *FieldValidationError) Is(target error) bool { return target == ErrInvalidValue }

// NotFoundError reports a missing or soft-deleted record.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record of id %s not found", e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// RemoteError wraps a failed call to the Sheets API or the query endpoint.
// StatusCode is zero when the failure happened before a response was received.
type RemoteError struct {
	Op         string
	Range      string
	StatusCode int
	Err        error
}

func (e *RemoteError) Error() string {
	msg := "failed to " + e.Op
	if e.Range != "" {
		msg += " range " + e.Range
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }
