// Package cookie binds the auth engine's CookieJar contract to net/http:
// reads come from the inbound request, writes become Set-Cookie headers on
// the response.
package cookie

import (
	"net/http"
	"time"
)

// HTTPJar implements the engine's cookie transport for one request/response
// exchange.
type HTTPJar struct {
	w      http.ResponseWriter
	r      *http.Request
	secure bool
}

// NewHTTPJar constructs a jar bound to the given exchange. secure controls
// the Secure attribute on written cookies; set it whenever the deployment
// terminates TLS.
func NewHTTPJar(w http.ResponseWriter, r *http.Request, secure bool) *HTTPJar {
	return &HTTPJar{w: w, r: r, secure: secure}
}

// Get returns the named cookie's value from the inbound request.
func (j *HTTPJar) Get(name string) (string, bool) {
	c, err := j.r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}

	return c.Value, true
}

// Set writes the named cookie with the given time-to-live. Cookies are
// always HttpOnly: every value this module stores is a server-side secret.
func (j *HTTPJar) Set(name, value string, ttl time.Duration) {
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Delete expires the named cookie on the client.
func (j *HTTPJar) Delete(name string) {
	http.SetCookie(j.w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
