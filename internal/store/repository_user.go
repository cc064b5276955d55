package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/avykov/multiauth/internal/auth"
	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/models"
)

// userRepository is the SQL-backed implementation of [auth.UserStore].
// Every account lookup is scoped by the tenant column configured as
// siteField; there is no cross-site query path.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger    *logger.Logger
	db        *DB
	siteField string
}

// NewUserRepository constructs an [auth.UserStore] backed by the provided
// database connection. siteField names the users-table column holding the
// tenant identifier.
func NewUserRepository(db *DB, siteField string, logger *logger.Logger) auth.UserStore {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:        db,
		logger:    logger,
		siteField: siteField,
	}
}

// identityColumn decides which unique column an identity string addresses:
// values parseable as an email address go to "email", everything else to
// "username".
func identityColumn(identity string) string {
	if _, err := mail.ParseAddress(identity); err == nil {
		return "email"
	}
	return "username"
}

// FindByIdentity retrieves the user whose username or email matches identity
// within the given site, with permission names loaded.
//
// Error handling:
//   - No matching row → [auth.ErrUserNotFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) FindByIdentity(ctx context.Context, site, identity string) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select("user_id", "username", "email", r.siteField, "password_hash", "logins", "last_login", "created_at").
		From(models.User{}.TableName()).
		Where(sq.Eq{identityColumn(identity): identity}).
		Where(sq.Eq{r.siteField: site}).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("build user lookup query: %w", err)
	}

	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, auth.ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.FindByIdentity").Msg("error: user lookup failed")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	user.Permissions, err = r.permissionNames(ctx, user.UserID)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.FindByIdentity").Msg("error: permission load failed")
		return models.User{}, err
	}

	return user, nil
}

// FindByID retrieves a user by primary key, with permission names loaded.
// Site scoping is not applied here: the id always originates from a row
// that was itself resolved within a site (a session snapshot or a token).
func (r *userRepository) FindByID(ctx context.Context, id int64) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select("user_id", "username", "email", r.siteField, "password_hash", "logins", "last_login", "created_at").
		From(models.User{}.TableName()).
		Where(sq.Eq{"user_id": id}).
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("build user lookup query: %w", err)
	}

	user, err := r.scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, auth.ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.FindByID").Msg("error: user lookup failed")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	user.Permissions, err = r.permissionNames(ctx, user.UserID)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.FindByID").Msg("error: permission load failed")
		return models.User{}, err
	}

	return user, nil
}

// HasPermission reports whether the user holds the named permission. This is
// the authoritative database check used on the login path, independent of
// the permission names cached on the loaded user.
func (r *userRepository) HasPermission(ctx context.Context, userID int64, permission string) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select("COUNT(1)").
		From(models.Permission{}.TableName() + " p").
		Join("permissions_users pu ON pu.permission_id = p.permission_id").
		Where(sq.Eq{"pu.user_id": userID}).
		Where(sq.Eq{"p.name": permission}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build permission query: %w", err)
	}

	var count int64
	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		log.Err(err).Str("func", "*userRepository.HasPermission").Msg("error: permission check failed")
		return false, fmt.Errorf("unexpected DB error: %w", err)
	}

	return count > 0, nil
}

// RecordLogin increments the user's login counter and stamps last_login,
// returning the user with the persisted values applied.
func (r *userRepository) RecordLogin(ctx context.Context, user models.User, now time.Time) (models.User, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update(models.User{}.TableName()).
		Set("logins", sq.Expr("logins + 1")).
		Set("last_login", now).
		Where(sq.Eq{"user_id": user.UserID}).
		Suffix("RETURNING logins, last_login").
		ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("build login update query: %w", err)
	}

	var lastLogin sql.NullTime
	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&user.Logins, &lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, auth.ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.RecordLogin").Msg("error: login update failed")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}
	user.LastLogin = lastLogin.Time

	return user, nil
}

// UpdatePassword replaces the stored password hash of the user.
func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update(models.User{}.TableName()).
		Set("password_hash", passwordHash).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build password update query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.UpdatePassword").Msg("error: password update failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unexpected DB error: %w", err)
	}
	if affected == 0 {
		return auth.ErrUserNotFound
	}

	return nil
}

// scanUser reads one users-table row. last_login is nullable: accounts that
// never logged in carry NULL until the first [RecordLogin].
func (r *userRepository) scanUser(row *sql.Row) (models.User, error) {
	var (
		user      models.User
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.Email,
		&user.SiteID,
		&user.PasswordHash,
		&user.Logins,
		&lastLogin,
		&user.CreatedAt,
	)
	if err != nil {
		return models.User{}, err
	}
	user.LastLogin = lastLogin.Time

	return user, nil
}

// permissionNames loads the names of all permissions granted to the user,
// ordered for deterministic snapshots.
func (r *userRepository) permissionNames(ctx context.Context, userID int64) ([]string, error) {
	query, args, err := r.db.builder.
		Select("p.name").
		From(models.Permission{}.TableName() + " p").
		Join("permissions_users pu ON pu.permission_id = p.permission_id").
		Where(sq.Eq{"pu.user_id": userID}).
		OrderBy("p.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build permission names query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("unexpected DB error: %w", err)
	}

	return names, nil
}
