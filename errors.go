package sqltrack

import "errors"

// Common errors used throughout the sqltrack package
var (
	// ErrConfigValidation is returned when configuration validation fails
	ErrConfigValidation = errors.New("configuration validation failed")
	// ErrNoRowIdentity indicates the dialect has no default row identity expression.
	ErrNoRowIdentity = errors.New("dialect has no row identity column, tracking.expression is required")
	// ErrConfigFileNotFound indicates an explicitly requested configuration file is missing.
	ErrConfigFileNotFound = errors.New("configuration file not found")
)
