package mongodb

import (
	"errors"
	"fmt"
)

// ErrNotConnected indicates an operation was attempted before Connect or
// after Close.
var ErrNotConnected = errors.New("mongodb adapter is not connected")

// ConnectionError wraps a connect, health-check, or store-operation failure.
// The underlying driver error is preserved for errors.Is/As.
type ConnectionError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("mongodb %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// NewConnectionError creates a new ConnectionError
func NewConnectionError(op string, err error) *ConnectionError {
	return &ConnectionError{Op: op, Err: err}
}
