package session

import "github.com/avykov/multiauth/internal/auth"

// Manager opens request-scoped session handles. id is the caller's current
// session identifier (empty for a brand-new session); onIDChange is invoked
// whenever the handle adopts a new identifier — on regeneration with the
// fresh id, on destruction with the empty string — so the transport can
// update the session cookie.
type Manager interface {
	Session(id string, onIDChange func(newID string)) auth.SessionStore
}
