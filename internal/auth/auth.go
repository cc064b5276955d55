// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Andrei Vykov

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/models"
)

// PermissionLogin is the permission every account must hold to
// authenticate. A user without it never logs in, even with a correct
// password.
const PermissionLogin = "login"

// forcedSessionKey marks sessions established by ForceLogin. Account
// editing flows consult it to block self-service changes under an
// administrative impersonation.
const forcedSessionKey = "auth_forced"

// Config carries the engine settings, resolved once before construction.
type Config struct {
	// SessionKey is the session entry holding the authenticated user.
	SessionKey string

	// CookieName is the name of the auto-login cookie.
	CookieName string

	// TokenLifetime is the validity window of a newly issued remember-me
	// token.
	TokenLifetime time.Duration
}

// Authenticator is the shared, immutable half of the engine: strategy,
// stores, hasher and configuration. It is safe for concurrent use; all
// state is read-only after construction.
type Authenticator struct {
	cfg      Config
	strategy LoginStrategy
	users    UserStore
	tokens   TokenStore
	hasher   *Hasher
	logger   *logger.Logger
}

// NewAuthenticator constructs the shared Authenticator.
func NewAuthenticator(cfg Config, strategy LoginStrategy, users UserStore, tokens TokenStore, hasher *Hasher, logger *logger.Logger) *Authenticator {
	logger.Debug().Str("hash_method", hasher.Method()).Msg("creating authenticator")
	return &Authenticator{
		cfg:      cfg,
		strategy: strategy,
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		logger:   logger,
	}
}

// Request binds the shared authenticator to one caller's session, cookie
// jar and user-agent string, producing the per-request Engine.
func (a *Authenticator) Request(session SessionStore, cookies CookieJar, userAgent string) *Engine {
	return &Engine{
		Authenticator: a,
		session:       session,
		cookies:       cookies,
		userAgent:     userAgent,
	}
}

// Engine orchestrates one caller's authentication flow. It owns no
// persistent state of its own; it reads and writes the session, cookie,
// user and token stores it was bound to.
type Engine struct {
	*Authenticator

	session   SessionStore
	cookies   CookieJar
	userAgent string
}

// Login authenticates the identity within site against the given plaintext
// password.
//
// An empty password fails closed: false, no error, no store or session
// mutation. The password is hashed before the strategy ever sees it. Every
// credential failure (unknown user, missing "login" permission, wrong
// password) comes back as a plain false with nil error, deliberately
// indistinguishable from one another. A non-nil error always means a
// storage failure, never bad credentials.
//
// On success the login is completed (see completeLogin); with remember set,
// a remember-me token is issued first and its cookie written with the full
// configured lifetime.
func (e *Engine) Login(ctx context.Context, site string, id Identity, password string, remember bool) (bool, error) {
	log := logger.FromContext(ctx)

	if password == "" {
		return false, nil
	}

	user, err := e.strategy.Authenticate(ctx, site, id, e.hasher.Hash(password))
	if errors.Is(err, ErrAuthenticationFailed) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("login attempt failed on storage: %w", err)
	}

	if remember {
		if err := e.issueToken(ctx, user); err != nil {
			return false, fmt.Errorf("issuing auto-login token: %w", err)
		}
	}

	if err := e.completeLogin(ctx, user); err != nil {
		return false, err
	}

	log.Info().Int64("user_id", user.UserID).Str("site", user.SiteID).Msg("user logged in")
	return true, nil
}

// GetUser returns the authenticated user of the current session. On a
// session miss it falls back to an auto-login attempt from the remember-me
// cookie. ok is false when neither yields a user.
//
// The returned value is the point-in-time snapshot written at login; it is
// not refreshed from storage except through auto-login.
func (e *Engine) GetUser(ctx context.Context) (models.User, bool, error) {
	data, ok, err := e.session.Get(ctx, e.cfg.SessionKey)
	if err != nil {
		return models.User{}, false, err
	}

	if ok {
		var su sessionUser
		if err := json.Unmarshal(data, &su); err != nil {
			return models.User{}, false, fmt.Errorf("corrupt session user entry: %w", err)
		}

		return su.toUser(), true, nil
	}

	return e.AutoLogin(ctx)
}

// LoggedIn reports whether the session has an authenticated user holding
// ALL of the given permissions. With no permissions given, only the
// presence of a user is checked.
func (e *Engine) LoggedIn(ctx context.Context, permissions ...string) (bool, error) {
	user, ok, err := e.GetUser(ctx)
	if err != nil || !ok {
		return false, err
	}

	return checkPermissions(user, permissions), nil
}

// ForceLogin authenticates the identity without any password check and
// marks the session as forced. Administrative impersonation only: this
// must never be reachable by untrusted callers.
func (e *Engine) ForceLogin(ctx context.Context, site string, id Identity) error {
	user, err := e.strategy.Resolve(ctx, site, id)
	if err != nil {
		return err
	}

	if err := e.session.Set(ctx, forcedSessionKey, []byte("1")); err != nil {
		return err
	}

	if err := e.completeLogin(ctx, user); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Int64("user_id", user.UserID).Str("site", user.SiteID).Msg("forced login")
	return nil
}

// Forced reports whether the current session was established by ForceLogin.
func (e *Engine) Forced(ctx context.Context) (bool, error) {
	_, ok, err := e.session.Get(ctx, forcedSessionKey)
	return ok, err
}

// Logout ends the current session and returns whether the caller is no
// longer logged in afterwards (a self-verifying postcondition: it re-runs
// the logged-in check rather than assuming success).
//
// The forced marker is always cleared. If an auto-login cookie is present,
// the cookie is deleted along with its token row — or every token row for
// that user and site when logoutAll is set. destroy selects between
// destroying the whole session and removing just the auth entry followed by
// an identifier regeneration.
func (e *Engine) Logout(ctx context.Context, destroy, logoutAll bool) (bool, error) {
	if err := e.session.Delete(ctx, forcedSessionKey); err != nil {
		return false, err
	}

	if value, ok := e.cookies.Get(e.cfg.CookieName); ok {
		// Delete the cookie first so even a storage failure below cannot
		// leave the client able to re-login.
		e.cookies.Delete(e.cfg.CookieName)

		token, err := e.tokens.FindByValue(ctx, value)
		switch {
		case err == nil:
			if logoutAll {
				if err := e.tokens.DeleteAllForUser(ctx, token.UserID, token.SiteID); err != nil {
					return false, err
				}
			} else if err := e.tokens.Delete(ctx, token.Token); err != nil {
				return false, err
			}
		case !errors.Is(err, ErrTokenNotFound):
			return false, err
		}
	}

	if destroy {
		if err := e.session.Destroy(ctx); err != nil {
			return false, err
		}
	} else {
		if err := e.session.Delete(ctx, e.cfg.SessionKey); err != nil {
			return false, err
		}
		if err := e.session.RegenerateID(ctx); err != nil {
			return false, err
		}
	}

	loggedIn, err := e.LoggedIn(ctx)
	return !loggedIn, err
}

// Password returns the stored password hash of the user the identity
// resolves to. Used by external password-comparison utilities.
func (e *Engine) Password(ctx context.Context, site string, id Identity) (string, error) {
	user, err := e.strategy.Resolve(ctx, site, id)
	if err != nil {
		return "", err
	}

	return user.PasswordHash, nil
}

// CheckPassword hashes the plaintext and compares it against the currently
// logged-in user's stored hash. False when nobody is logged in.
func (e *Engine) CheckPassword(ctx context.Context, password string) (bool, error) {
	user, ok, err := e.GetUser(ctx)
	if err != nil || !ok {
		return false, err
	}

	return e.hasher.Hash(password) == user.PasswordHash, nil
}

// SetPassword hashes the plaintext at the point of assignment and persists
// the new hash for the user. Replaces the original's implicit re-hash on
// dirty-field save.
func (e *Engine) SetPassword(ctx context.Context, user models.User, password string) error {
	return e.users.UpdatePassword(ctx, user.UserID, e.hasher.Hash(password))
}

// HashPassword returns the configured digest of a plaintext password.
func (e *Engine) HashPassword(password string) string {
	return e.hasher.Hash(password)
}

// Hash applies the configured digest to an arbitrary string.
func (e *Engine) Hash(s string) string {
	return e.hasher.Hash(s)
}

// issueToken creates a remember-me token for the user and writes its cookie
// with the full configured lifetime.
func (e *Engine) issueToken(ctx context.Context, user models.User) error {
	token := models.UserToken{
		UserID:    user.UserID,
		SiteID:    user.SiteID,
		Token:     newTokenValue(),
		UserAgent: Fingerprint(e.userAgent),
		Expires:   time.Now().Add(e.cfg.TokenLifetime),
	}

	created, err := e.tokens.Create(ctx, token)
	if err != nil {
		return err
	}

	e.cookies.Set(e.cfg.CookieName, created.Token, e.cfg.TokenLifetime)
	return nil
}

// completeLogin is the shared terminal step of Login, ForceLogin and
// AutoLogin. The session identifier is regenerated BEFORE the identity is
// written: a session id chosen or observed by the client must never survive
// into an authenticated session. The login counter update is persisted and
// its returned snapshot is what goes into the session.
//
// Persistence failures are not swallowed here; they propagate to the caller
// as data-layer errors.
func (e *Engine) completeLogin(ctx context.Context, user models.User) error {
	if err := e.session.RegenerateID(ctx); err != nil {
		return err
	}

	updated, err := e.users.RecordLogin(ctx, user, time.Now())
	if err != nil {
		return fmt.Errorf("recording login: %w", err)
	}

	data, err := json.Marshal(newSessionUser(updated))
	if err != nil {
		return fmt.Errorf("marshaling session user entry: %w", err)
	}

	return e.session.Set(ctx, e.cfg.SessionKey, data)
}

// newTokenValue generates a fresh opaque token value.
func newTokenValue() string {
	return uuid.NewString()
}
