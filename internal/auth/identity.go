package auth

import "github.com/avykov/multiauth/models"

// Identity names the account a caller wants to act on: either a user record
// that is already loaded, or a raw username/email string still to be
// resolved against a site. The two cases are explicit; no method ever
// inspects a bare interface{} to decide which one it got.
type Identity struct {
	user  *models.User
	value string
}

// LoadedUser wraps an already-loaded user record as an Identity.
func LoadedUser(u models.User) Identity {
	return Identity{user: &u}
}

// Unresolved wraps a raw username or email string as an Identity.
func Unresolved(value string) Identity {
	return Identity{value: value}
}

// User returns the loaded user record, if this identity carries one.
func (id Identity) User() (models.User, bool) {
	if id.user == nil {
		return models.User{}, false
	}

	return *id.user, true
}

// Value returns the raw identity string for the unresolved case.
func (id Identity) Value() string {
	return id.value
}
