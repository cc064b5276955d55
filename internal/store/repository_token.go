package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"

	"github.com/avykov/multiauth/internal/auth"
	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/models"
)

const tokenColumns = "token_id, user_id, site_id, token, user_agent, expires, created_at"

// tokenRepository is the SQL-backed implementation of [auth.TokenStore].
// Token values are globally unique; rotation is a conditional UPDATE keyed
// on the old value, so of two concurrent rotations of the same cookie
// exactly one wins and the loser observes [auth.ErrTokenNotFound].
type tokenRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewTokenRepository constructs an [auth.TokenStore] backed by the provided
// database connection.
func NewTokenRepository(db *DB, logger *logger.Logger) auth.TokenStore {
	logger.Debug().Msg("creating token repository")
	return &tokenRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new remember-me token row and returns it with the
// server-assigned token_id.
//
// Error handling:
//   - unique_violation on the token value → [ErrDuplicateToken].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *tokenRepository) Create(ctx context.Context, token models.UserToken) (models.UserToken, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Insert(token.TableName()).
		Columns("user_id", "site_id", "token", "user_agent", "expires", "created_at").
		Values(token.UserID, token.SiteID, token.Token, token.UserAgent, token.Expires, token.CreatedAt).
		Suffix("RETURNING token_id").
		ToSql()
	if err != nil {
		return models.UserToken{}, fmt.Errorf("build token insert query: %w", err)
	}

	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&token.TokenID); err != nil {
		log.Err(err).Str("func", "*tokenRepository.Create").Msg("error: token insert failed")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.UserToken{}, ErrDuplicateToken
		default:
			return models.UserToken{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	return token, nil
}

// FindByValue retrieves a token row by its opaque value.
//
// Error handling:
//   - No matching row → [auth.ErrTokenNotFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *tokenRepository) FindByValue(ctx context.Context, value string) (models.UserToken, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Select("token_id", "user_id", "site_id", "token", "user_agent", "expires", "created_at").
		From(models.UserToken{}.TableName()).
		Where(sq.Eq{"token": value}).
		ToSql()
	if err != nil {
		return models.UserToken{}, fmt.Errorf("build token lookup query: %w", err)
	}

	token, err := r.scanToken(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserToken{}, auth.ErrTokenNotFound
		}
		log.Err(err).Str("func", "*tokenRepository.FindByValue").Msg("error: token lookup failed")
		return models.UserToken{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return token, nil
}

// Rotate atomically swaps oldValue for newValue and returns the updated row.
// The swap is conditional on the old value still being present: a replayed
// cookie that lost the race gets [auth.ErrTokenNotFound], never a second
// rotation.
func (r *tokenRepository) Rotate(ctx context.Context, oldValue, newValue string) (models.UserToken, error) {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Update(models.UserToken{}.TableName()).
		Set("token", newValue).
		Where(sq.Eq{"token": oldValue}).
		Suffix("RETURNING " + tokenColumns).
		ToSql()
	if err != nil {
		return models.UserToken{}, fmt.Errorf("build token rotate query: %w", err)
	}

	token, err := r.scanToken(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserToken{}, auth.ErrTokenNotFound
		}
		log.Err(err).Str("func", "*tokenRepository.Rotate").Msg("error: token rotation failed")
		return models.UserToken{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	return token, nil
}

// Delete removes the token row matching value. Deleting an absent value is
// not an error.
func (r *tokenRepository) Delete(ctx context.Context, value string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Delete(models.UserToken{}.TableName()).
		Where(sq.Eq{"token": value}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build token delete query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*tokenRepository.Delete").Msg("error: token delete failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

// DeleteAllForUser removes every token the user holds within the given site.
func (r *tokenRepository) DeleteAllForUser(ctx context.Context, userID int64, site string) error {
	log := logger.FromContext(ctx)

	query, args, err := r.db.builder.
		Delete(models.UserToken{}.TableName()).
		Where(sq.Eq{"user_id": userID}).
		Where(sq.Eq{"site_id": site}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build token delete query: %w", err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).Str("func", "*tokenRepository.DeleteAllForUser").Msg("error: token delete failed")
		return fmt.Errorf("unexpected DB error: %w", err)
	}

	return nil
}

func (r *tokenRepository) scanToken(row *sql.Row) (models.UserToken, error) {
	var token models.UserToken
	err := row.Scan(
		&token.TokenID,
		&token.UserID,
		&token.SiteID,
		&token.Token,
		&token.UserAgent,
		&token.Expires,
		&token.CreatedAt,
	)
	if err != nil {
		return models.UserToken{}, err
	}

	return token, nil
}
