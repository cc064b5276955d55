package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/avykov/multiauth/internal/config"
	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/migrations"
)

// DB wraps the sql connection together with the squirrel statement builder
// matching the driver's placeholder format.
type DB struct {
	*sql.DB

	builder sq.StatementBuilderType
	driver  string
	logger  *logger.Logger
}

// Open connects to the database backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	switch cfg.Driver {
	case "postgres":
		return NewConnectPostgres(ctx, cfg, log)
	case "sqlite":
		return NewConnectSQLite(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}

// Migrate applies all pending schema migrations for the connected backend.
func (db *DB) Migrate() error {
	return migrations.Migrate(db.DB, db.driver)
}
