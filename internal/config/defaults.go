package config

import "time"

// Default values matching the behavior of the original multi-site auth
// module: an unsalted sha1 digest, the "auth_user" session entry, the
// "authautologin" cookie and a two-week token lifetime.
const (
	DefaultHashMethod    = "sha1"
	DefaultSessionKey    = "auth_user"
	DefaultSiteField     = "site_id"
	DefaultCookieName    = "authautologin"
	DefaultTokenLifetime = 14 * 24 * time.Hour

	DefaultDriver         = "postgres"
	DefaultSessionTTL     = 24 * time.Hour
	DefaultHTTPAddress    = ":8080"
	DefaultRequestTimeout = 30 * time.Second
)

func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Auth: Auth{
			HashMethod:    DefaultHashMethod,
			SessionKey:    DefaultSessionKey,
			SiteField:     DefaultSiteField,
			CookieName:    DefaultCookieName,
			TokenLifetime: DefaultTokenLifetime,
		},
		Storage: Storage{
			DB: DB{
				Driver: DefaultDriver,
			},
			Session: Session{
				TTL: DefaultSessionTTL,
			},
		},
		Server: Server{
			HTTPAddress:    DefaultHTTPAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}
