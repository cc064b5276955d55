package models

import "time"

// UserToken represents a remember-me credential: an opaque secret stored in
// a cookie and exchanged for re-authentication without a password.
//
// The row is consumed and replaced with a fresh Token value on every
// successful automatic login, so a captured stale value cannot be replayed.
type UserToken struct {
	// TokenID is the internal unique identifier of the token row.
	TokenID int64 `json:"-"`

	// UserID is the identifier of the owning user.
	UserID int64 `json:"user_id"`

	// SiteID is the tenant identifier the token was issued under.
	SiteID string `json:"site_id"`

	// Token is the opaque secret handed to the client.
	// Excluded from JSON serialization; it only ever travels in the cookie.
	Token string `json:"-"`

	// UserAgent is the SHA-1 fingerprint of the client's user-agent string
	// captured at issue time. A mismatch on redemption is treated as theft.
	UserAgent string `json:"-"`

	// Expires is the absolute expiry timestamp of the token.
	Expires time.Time `json:"expires"`

	// CreatedAt is the timestamp when the token row was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the UserToken model.
func (t UserToken) TableName() string {
	return "user_tokens"
}

// Loaded reports whether the token was actually found in storage.
func (t UserToken) Loaded() bool {
	return t.TokenID != 0
}

// Expired reports whether the token's lifetime has elapsed at the given
// moment.
func (t UserToken) Expired(now time.Time) bool {
	return !t.Expires.After(now)
}
