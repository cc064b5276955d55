package auth

import (
	"context"
	"errors"
	"time"

	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/models"
)

// AutoLogin attempts to re-authenticate the caller from the remember-me
// cookie.
//
// The token row named by the cookie is loaded; a missing or expired row, or
// an owner that no longer loads, is a terminal miss (false, nil). When the
// caller's user-agent fingerprint matches the one stored at issue time, the
// row is rotated to a fresh value — a conditional swap, so a replayed
// cookie can never rotate twice — the cookie is re-set with the token's
// REMAINING lifetime, and the login is completed. A fingerprint mismatch is
// treated as a stolen token: the row is deleted and no replacement is
// issued.
func (e *Engine) AutoLogin(ctx context.Context) (models.User, bool, error) {
	log := logger.FromContext(ctx)

	value, ok := e.cookies.Get(e.cfg.CookieName)
	if !ok {
		return models.User{}, false, nil
	}

	token, err := e.tokens.FindByValue(ctx, value)
	if errors.Is(err, ErrTokenNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}

	now := time.Now()
	if token.Expired(now) {
		if err := e.tokens.Delete(ctx, token.Token); err != nil {
			return models.User{}, false, err
		}

		return models.User{}, false, nil
	}

	user, err := e.users.FindByID(ctx, token.UserID)
	if errors.Is(err, ErrUserNotFound) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}

	if Fingerprint(e.userAgent) != token.UserAgent {
		if err := e.tokens.Delete(ctx, token.Token); err != nil {
			return models.User{}, false, err
		}

		log.Warn().Int64("user_id", token.UserID).Str("site", token.SiteID).
			Msg("auto-login token presented from a different client, token invalidated")
		return models.User{}, false, nil
	}

	rotated, err := e.tokens.Rotate(ctx, token.Token, newTokenValue())
	if errors.Is(err, ErrTokenNotFound) {
		// Lost the swap to a concurrent redemption of the same cookie.
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}

	e.cookies.Set(e.cfg.CookieName, rotated.Token, time.Until(rotated.Expires))

	if err := e.completeLogin(ctx, user); err != nil {
		return models.User{}, false, err
	}

	log.Info().Int64("user_id", user.UserID).Str("site", user.SiteID).Msg("user re-authenticated via auto-login")
	return user, true, nil
}
