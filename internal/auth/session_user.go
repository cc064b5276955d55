package auth

import "github.com/avykov/multiauth/models"

// sessionUser is the session-store serialization of a user. The public JSON
// shape of [models.User] hides UserID and PasswordHash; the session entry
// never leaves the server and needs both — the id to act on the account, the
// hash so CheckPassword works against the snapshot without a storage
// round-trip.
type sessionUser struct {
	models.User

	UserID       int64  `json:"user_id"`
	PasswordHash string `json:"password_hash"`
}

func newSessionUser(u models.User) sessionUser {
	return sessionUser{User: u, UserID: u.UserID, PasswordHash: u.PasswordHash}
}

func (su sessionUser) toUser() models.User {
	u := su.User
	u.UserID = su.UserID
	u.PasswordHash = su.PasswordHash

	return u
}
