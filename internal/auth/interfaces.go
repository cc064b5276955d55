package auth

import (
	"context"
	"time"

	"github.com/avykov/multiauth/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mock_auth.go -package=mock

// SessionStore is one caller's server-side session: an external key/value
// store holding the authenticated-user entry and the forced-login marker.
// Implementations are request-scoped handles onto shared storage.
type SessionStore interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent; err is reserved for storage failures.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Destroy removes the whole session including its identifier.
	Destroy(ctx context.Context) error

	// RegenerateID moves the session to a fresh identifier, keeping its
	// contents. Used against session fixation.
	RegenerateID(ctx context.Context) error
}

// CookieJar is the cookie transport of one request/response exchange.
type CookieJar interface {
	// Get returns the named cookie's value; ok is false when absent.
	Get(name string) (value string, ok bool)

	// Set writes the named cookie with the given time-to-live.
	Set(name, value string, ttl time.Duration)

	// Delete expires the named cookie on the client.
	Delete(name string)
}

// UserStore is the persistence contract for user records. All lookups by
// identity are scoped to one site; cross-site resolution must be impossible
// by construction.
type UserStore interface {
	// FindByIdentity resolves a user within site by username or email.
	// Whether identity matches the username or the email column is decided
	// by the value's format. Returns [ErrUserNotFound] on no match.
	FindByIdentity(ctx context.Context, site, identity string) (models.User, error)

	// FindByID loads a user by primary key. Returns [ErrUserNotFound] on no
	// match.
	FindByID(ctx context.Context, id int64) (models.User, error)

	// HasPermission reports whether the user holds the named permission.
	HasPermission(ctx context.Context, userID int64, permission string) (bool, error)

	// RecordLogin increments the user's login counter and stamps the last
	// login time, persisting the change. The returned snapshot carries the
	// updated counter.
	RecordLogin(ctx context.Context, user models.User, now time.Time) (models.User, error)

	// UpdatePassword replaces the stored password hash for the user.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

// TokenStore is the persistence contract for remember-me tokens.
type TokenStore interface {
	// Create persists a new token row and returns it with server-assigned
	// fields populated.
	Create(ctx context.Context, token models.UserToken) (models.UserToken, error)

	// FindByValue loads a token row by its opaque value. Returns
	// [ErrTokenNotFound] on no match.
	FindByValue(ctx context.Context, value string) (models.UserToken, error)

	// Rotate atomically replaces oldValue with newValue on the matching row
	// and returns the updated row. The swap is conditional on oldValue
	// still being present: of two concurrent redemptions of the same
	// cookie, exactly one succeeds and the other gets [ErrTokenNotFound].
	Rotate(ctx context.Context, oldValue, newValue string) (models.UserToken, error)

	// Delete removes the row holding value. Deleting an absent value is not
	// an error.
	Delete(ctx context.Context, value string) error

	// DeleteAllForUser removes every token the user holds under the given
	// site.
	DeleteAllForUser(ctx context.Context, userID int64, site string) error
}
