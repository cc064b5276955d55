package http

import (
	"net/http"
	"time"

	"github.com/avykov/multiauth/internal/auth"
	"github.com/avykov/multiauth/internal/cookie"
	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/internal/session"
)

// sessionCookie names the cookie carrying the session identifier.
const sessionCookie = "authsid"

type Handler struct {
	auth       *auth.Authenticator
	sessions   session.Manager
	sessionTTL time.Duration

	logger *logger.Logger
}

func NewHandler(a *auth.Authenticator, sessions session.Manager, sessionTTL time.Duration, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		auth:       a,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// engine binds the shared authenticator to one request/response exchange:
// the caller's session (opened from the session-id cookie), a cookie jar on
// this response, and the request's user-agent string. Session identifier
// changes are mirrored back into the cookie as they happen.
func (h *Handler) engine(w http.ResponseWriter, r *http.Request) *auth.Engine {
	jar := cookie.NewHTTPJar(w, r, r.TLS != nil)

	sid, _ := jar.Get(sessionCookie)
	sess := h.sessions.Session(sid, func(newID string) {
		if newID == "" {
			jar.Delete(sessionCookie)
			return
		}
		jar.Set(sessionCookie, newID, h.sessionTTL)
	})

	return h.auth.Request(sess, jar, r.UserAgent())
}
