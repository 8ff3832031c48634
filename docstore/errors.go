package docstore

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed store.
	ErrClosed = errors.New("docstore: store is closed")
	// ErrDuplicateKey is returned when an insert would create a second document with the same _id.
	ErrDuplicateKey = errors.New("docstore: duplicate key")
	// ErrMissingID is returned when a document without an _id is written.
	ErrMissingID = errors.New("docstore: document has no _id")
)

// OperatorError is returned when a filter, update, or pipeline uses an
// operator the store does not understand or uses one with a malformed argument.
type OperatorError struct {
	Operator string
	Message  string
}

func (e *OperatorError) Error() string {
	return fmt.Sprintf("docstore: operator %s: %s", e.Operator, e.Message)
}

func unsupported(op string) error {
	return &OperatorError{Operator: op, Message: "unsupported"}
}
