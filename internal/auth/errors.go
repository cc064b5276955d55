package auth

import "errors"

// Sentinel errors used across the auth package. Callers should use
// [errors.Is] to match against these values.
var (
	// ErrAuthenticationFailed marks any credential failure: unknown user,
	// missing "login" permission, or wrong password. The engine never lets
	// it escape to callers; all three cases surface as a plain false so an
	// attacker cannot distinguish them.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrUserNotFound is returned by [UserStore] implementations when no
	// user record matches the lookup.
	ErrUserNotFound = errors.New("user was not found")

	// ErrTokenNotFound is returned by [TokenStore] implementations when no
	// token row matches the value, including a rotation that lost the
	// conditional swap.
	ErrTokenNotFound = errors.New("auto-login token was not found")

	// ErrUnknownHashMethod is returned by [NewHasher] for a digest name it
	// does not implement.
	ErrUnknownHashMethod = errors.New("unknown hash method")
)
