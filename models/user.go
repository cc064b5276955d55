package models

import "time"

// User represents an account entity scoped to a single site (tenant).
// It contains identity attributes, the stored credential hash, and the
// permission names granted to the account.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is not exposed via JSON and is used only at the persistence layer.
	UserID int64 `json:"-"`

	// Username is the login name, unique within a site.
	Username string `json:"username"`

	// Email is the user's email address, unique within a site.
	// Either Username or Email may be used as the login identity; the
	// identity value's format decides which field is matched.
	Email string `json:"email"`

	// SiteID is the tenant identifier the account belongs to.
	// Every lookup involving this user must be scoped by it.
	SiteID string `json:"site_id"`

	// PasswordHash stores the user's hashed password.
	// This value MUST be a digest, never plaintext.
	PasswordHash string `json:"-"`

	// Logins counts successful authentications for the account.
	// Incremented on every completed login, including forced and automatic ones.
	Logins int64 `json:"logins"`

	// LastLogin is the timestamp of the most recent completed login.
	LastLogin time.Time `json:"last_login"`

	// Permissions holds the names of all permissions granted to the user,
	// loaded together with the account record.
	Permissions []string `json:"permissions"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// Loaded reports whether the user was actually found in storage.
// A zero UserID means the record never loaded.
func (u User) Loaded() bool {
	return u.UserID != 0
}

// HasPermission reports whether the named permission is present in the
// user's loaded permission set.
func (u User) HasPermission(name string) bool {
	for _, p := range u.Permissions {
		if p == name {
			return true
		}
	}

	return false
}
