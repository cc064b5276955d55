package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── newConfigBuilder ──────────────────────────────────────────────────────────

// TestNewConfigBuilder_InitialState verifies that a freshly created builder
// has no error and an empty configs slice.
func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

// TestBuild_DefaultsOnly verifies that defaults alone fail validation
// (the DSN has no sensible default).
func TestBuild_DefaultsOnly(t *testing.T) {
	_, err := newConfigBuilder().withDefaults().build()
	require.ErrorIs(t, err, ErrInvalidStorageConfigs)
}

// TestBuild_MergePriority verifies that an earlier source wins over the
// defaults while defaults fill the gaps.
func TestBuild_MergePriority(t *testing.T) {
	explicit := &StructuredConfig{
		Auth: Auth{HashMethod: "sha256"},
		Storage: Storage{
			DB: DB{DSN: "postgres://localhost/db"},
		},
	}

	b := newConfigBuilder()
	b.configs = append(b.configs, explicit)
	cfg, err := b.withDefaults().build()

	require.NoError(t, err)
	assert.Equal(t, "sha256", cfg.Auth.HashMethod)          // explicit wins
	assert.Equal(t, DefaultSessionKey, cfg.Auth.SessionKey) // default fills
	assert.Equal(t, DefaultTokenLifetime, cfg.Auth.TokenLifetime)
	assert.Equal(t, DefaultDriver, cfg.Storage.DB.Driver)
}

// ── validate ──────────────────────────────────────────────────────────────────

func validConfig() *StructuredConfig {
	return &StructuredConfig{
		Auth: Auth{
			HashMethod:    "sha1",
			SessionKey:    "auth_user",
			SiteField:     "site_id",
			CookieName:    "authautologin",
			TokenLifetime: 14 * 24 * time.Hour,
		},
		Storage: Storage{
			DB:      DB{Driver: "postgres", DSN: "postgres://localhost/db"},
			Session: Session{TTL: 24 * time.Hour},
		},
		Server: Server{
			HTTPAddress:    ":8080",
			RequestTimeout: 30 * time.Second,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().validate())
}

func TestValidate_UnknownHashMethod(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.HashMethod = "rot13"
	require.ErrorIs(t, cfg.validate(), ErrUnknownHashMethod)
}

func TestValidate_MissingAuthFields(t *testing.T) {
	cfg := validConfig()
	cfg.Auth.SessionKey = ""
	require.ErrorIs(t, cfg.validate(), ErrInvalidAuthConfigs)
}

func TestValidate_BadDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.DB.Driver = "oracle"
	require.ErrorIs(t, cfg.validate(), ErrInvalidStorageConfigs)
}

func TestValidate_MissingServer(t *testing.T) {
	cfg := validConfig()
	cfg.Server.HTTPAddress = ""
	require.ErrorIs(t, cfg.validate(), ErrInvalidServerConfigs)
}
