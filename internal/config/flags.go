package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-driver storage driver ("postgres" or "sqlite")
//	-redis-url redis connection URL for the session store
//	-c/-config json file path with configs
//	-hash-method password digest method
//	-session-key session entry name for the authenticated user
//	-site-field users-table column holding the tenant id
//	-cookie-name auto-login cookie name
//	-token-lifetime remember-me token lifetime (e.g., "336h")
//	-session-ttl session idle lifetime (e.g., "24h")
//	-request-timeout request timeout (e.g., "30s", "1m")
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var databaseDSN string
	var databaseDriver string
	var redisURL string
	var jsonConfigPath string
	var hashMethod string
	var sessionKey string
	var siteField string
	var cookieName string
	var tokenLifetime time.Duration
	var sessionTTL time.Duration
	var requestTimeout time.Duration

	flag.StringVar(&serverAddress, "a", "", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&databaseDriver, "driver", "", "Storage driver (postgres|sqlite)")
	flag.StringVar(&redisURL, "redis-url", "", "Redis URL for the session store")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&hashMethod, "hash-method", "", "Password digest method")
	flag.StringVar(&sessionKey, "session-key", "", "Session key for the authenticated user")
	flag.StringVar(&siteField, "site-field", "", "Users-table column holding the tenant id")
	flag.StringVar(&cookieName, "cookie-name", "", "Auto-login cookie name")
	flag.DurationVar(&tokenLifetime, "token-lifetime", 0, "Remember-me token lifetime (e.g., 336h)")
	flag.DurationVar(&sessionTTL, "session-ttl", 0, "Session idle lifetime (e.g., 24h)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")

	flag.Parse()

	return &StructuredConfig{
		Auth: Auth{
			HashMethod:    hashMethod,
			SessionKey:    sessionKey,
			SiteField:     siteField,
			CookieName:    cookieName,
			TokenLifetime: tokenLifetime,
		},
		Storage: Storage{
			DB: DB{
				Driver: databaseDriver,
				DSN:    databaseDSN,
			},
			Session: Session{
				RedisURL: redisURL,
				TTL:      sessionTTL,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress,
			RequestTimeout: requestTimeout,
		},
		JSONFilePath: jsonConfigPath,
	}
}
