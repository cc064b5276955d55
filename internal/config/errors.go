package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAuthConfigs is returned when the auth section is missing a
	// hash method, session key, site column, cookie name, or has a
	// non-positive token lifetime.
	ErrInvalidAuthConfigs = errors.New("invalid auth configs")

	// ErrUnknownHashMethod is returned when Auth.HashMethod names a digest
	// the hasher does not implement.
	ErrUnknownHashMethod = errors.New("unknown hash method")

	// ErrInvalidStorageConfigs is returned when the database DSN is empty or
	// the driver is not one of "postgres", "sqlite".
	ErrInvalidStorageConfigs = errors.New("invalid storage configs")

	// ErrInvalidServerConfigs is returned when the HTTP address or request
	// timeout is missing.
	ErrInvalidServerConfigs = errors.New("invalid server configs")
)
