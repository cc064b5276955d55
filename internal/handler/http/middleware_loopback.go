package http

import (
	"net"
	"net/http"
)

// requireLoopback rejects any request not originating from the host itself.
// The administrative surface behind it bypasses password checks, so it must
// never be reachable over the network; deployments front it with their own
// tooling on the box.
func requireLoopback(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			// hide the route entirely
			w.WriteHeader(http.StatusNotFound)
			return
		}

		next.ServeHTTP(w, r)
	})
}
