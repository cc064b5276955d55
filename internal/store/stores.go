package store

import (
	"github.com/avykov/multiauth/internal/auth"
	"github.com/avykov/multiauth/internal/config"
	"github.com/avykov/multiauth/internal/logger"
)

// Stores bundles the repositories the auth engine depends on.
type Stores struct {
	Users  auth.UserStore
	Tokens auth.TokenStore
}

// NewStores constructs all repositories over a single database connection.
func NewStores(db *DB, cfg config.Auth, log *logger.Logger) *Stores {
	return &Stores{
		Users:  NewUserRepository(db, cfg.SiteField, log),
		Tokens: NewTokenRepository(db, log),
	}
}
