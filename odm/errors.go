package odm

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned for relation kinds and features the engine
// does not provide.
var ErrNotImplemented = errors.New("odm: not implemented")

// ErrNoPool is returned when an async manager is built without a worker pool.
var ErrNoPool = errors.New("odm: async manager requires a worker pool")

// NotRegisteredError is returned when an operation is attempted on a Go type
// that has not been registered with the client.
type NotRegisteredError struct {
	TypeName string
}

// Error returns the error message for NotRegisteredError.
func (e *NotRegisteredError) Error() string {
	return fmt.Sprintf("type %q is not registered", e.TypeName)
}

// SchemaValidationError is returned by Register when a record type's tags
// do not describe a valid schema.
type SchemaValidationError struct {
	TypeName string
	Message  string
}

// Error returns the error message for SchemaValidationError.
func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("schema validation %s: %s", e.TypeName, e.Message)
}

// DuplicatedSchemaFieldError is returned when a unique field value is
// already held by a different document.
type DuplicatedSchemaFieldError struct {
	Field string
	Value string
}

// Error returns the error message for DuplicatedSchemaFieldError.
func (e *DuplicatedSchemaFieldError) Error() string {
	return fmt.Sprintf("Duplicated schema field (%s): %s", e.Field, e.Value)
}

// EncodeError is returned when a record cannot be converted to a document.
type EncodeError struct {
	TypeName string
	Cause    error
}

// Error returns the error message for EncodeError.
func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s: %v", e.TypeName, e.Cause)
}

// Unwrap returns the underlying cause of the EncodeError.
func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// DecodeError is returned when a stored document cannot be converted back
// into a record.
type DecodeError struct {
	TypeName string
	Cause    error
}

// Error returns the error message for DecodeError.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.TypeName, e.Cause)
}

// Unwrap returns the underlying cause of the DecodeError.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// StoreError wraps a failure reported by the document store.
type StoreError struct {
	Op         string
	Collection string
	Cause      error
}

// Error returns the error message for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s on %s: %v", e.Op, e.Collection, e.Cause)
}

// Unwrap returns the underlying cause of the StoreError.
func (e *StoreError) Unwrap() error {
	return e.Cause
}
