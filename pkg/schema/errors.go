package schema

import "fmt"

// NotFoundError is returned when a schema file cannot be located anywhere
// under the schema root.
type NotFoundError struct {
	Name string
	Root string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("schema file not found: %s in %s or its subdirectories", e.Name, e.Root)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(name, root string) *NotFoundError {
	return &NotFoundError{Name: name, Root: root}
}

// ValidationError is returned when a document does not conform to a schema.
// Message describes the first violation encountered.
type ValidationError struct {
	Schema  string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("data validation error: %s", e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(schemaName, message string) *ValidationError {
	return &ValidationError{Schema: schemaName, Message: message}
}
