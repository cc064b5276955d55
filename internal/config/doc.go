// Package config loads the module configuration from environment variables,
// command-line flags, an optional JSON file and built-in defaults, merges
// them in priority order, and validates the result before the engine is
// constructed. Configuration is resolved once at startup and treated as
// immutable afterwards.
package config
