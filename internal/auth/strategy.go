package auth

import (
	"context"
	"errors"

	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/models"
)

// LoginStrategy resolves identities and verifies credentials against one
// storage backend. The engine holds exactly one strategy, chosen at
// construction time from configuration.
type LoginStrategy interface {
	// Resolve loads the user the identity names within site. An identity
	// carrying a loaded user is returned as-is after a site check.
	Resolve(ctx context.Context, site string, id Identity) (models.User, error)

	// Authenticate resolves the identity and verifies that the account
	// holds the "login" permission and that passwordHash matches the
	// stored hash exactly. Every credential failure is
	// [ErrAuthenticationFailed]; other errors are storage failures.
	Authenticate(ctx context.Context, site string, id Identity, passwordHash string) (models.User, error)
}

// repositoryStrategy is the repository-backed LoginStrategy. It descends
// from the ORM driver of the original module: identity resolution and the
// permission check both go through the [UserStore].
type repositoryStrategy struct {
	users  UserStore
	logger *logger.Logger
}

// NewRepositoryStrategy constructs the repository-backed [LoginStrategy].
func NewRepositoryStrategy(users UserStore, logger *logger.Logger) LoginStrategy {
	return &repositoryStrategy{
		users:  users,
		logger: logger,
	}
}

func (s *repositoryStrategy) Resolve(ctx context.Context, site string, id Identity) (models.User, error) {
	if user, ok := id.User(); ok {
		// A pre-loaded record must still belong to the site it is being
		// used under.
		if user.SiteID != site {
			return models.User{}, ErrUserNotFound
		}

		return user, nil
	}

	return s.users.FindByIdentity(ctx, site, id.Value())
}

func (s *repositoryStrategy) Authenticate(ctx context.Context, site string, id Identity, passwordHash string) (models.User, error) {
	log := logger.FromContext(ctx)

	user, err := s.Resolve(ctx, site, id)
	if errors.Is(err, ErrUserNotFound) {
		log.Debug().Str("site", site).Msg("login attempt for unknown user")
		return models.User{}, ErrAuthenticationFailed
	}
	if err != nil {
		return models.User{}, err
	}

	hasLogin, err := s.users.HasPermission(ctx, user.UserID, PermissionLogin)
	if err != nil {
		return models.User{}, err
	}
	if !hasLogin {
		log.Debug().Int64("user_id", user.UserID).Msg("login attempt without login permission")
		return models.User{}, ErrAuthenticationFailed
	}

	// Exact equality against the stored digest; see Hasher for why the
	// format is fixed.
	if user.PasswordHash != passwordHash {
		log.Debug().Int64("user_id", user.UserID).Msg("login attempt with wrong password")
		return models.User{}, ErrAuthenticationFailed
	}

	return user, nil
}
