// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Vykov

package config

// knownHashMethods lists the digests the credential hasher implements.
// Kept in sync with the auth package's hasher constructor.
var knownHashMethods = map[string]struct{}{
	"md5":      {},
	"sha1":     {},
	"sha256":   {},
	"sha512":   {},
	"sha3-256": {},
	"sha3-512": {},
}

// validate checks that the final merged [StructuredConfig] satisfies all
// module invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or a descriptive error
// otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Auth.HashMethod == "" || cfg.Auth.SessionKey == "" ||
		cfg.Auth.SiteField == "" || cfg.Auth.CookieName == "" ||
		cfg.Auth.TokenLifetime <= 0 {
		return ErrInvalidAuthConfigs
	}

	if _, ok := knownHashMethods[cfg.Auth.HashMethod]; !ok {
		return ErrUnknownHashMethod
	}

	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.DB.Driver != "postgres" && cfg.Storage.DB.Driver != "sqlite" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	return nil
}
