package config

import "fmt"

// ConfigurationError is returned when a required configuration parameter is
// missing or invalid. It is fatal: callers are not expected to recover.
type ConfigurationError struct {
	Parameter string
	Reason    string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Parameter, e.Reason)
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(parameter, reason string) *ConfigurationError {
	return &ConfigurationError{
		Parameter: parameter,
		Reason:    reason,
	}
}
