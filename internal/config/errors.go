package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when required
// configuration groups are incomplete or invalid.
var (
	// ErrInvalidAdapterConfigs indicates invalid transport settings
	// (for example, a missing endpoint).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")

	// ErrInsecureEndpoint indicates a non-HTTPS endpoint without the
	// explicit insecure override.
	ErrInsecureEndpoint = errors.New("endpoint must use https")

	// ErrInvalidStorageConfigs indicates invalid local storage settings
	// (for example, an empty database path).
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
)
