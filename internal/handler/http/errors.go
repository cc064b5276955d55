package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avykov/multiauth/internal/auth"
)

var errorStatusMap = map[error]int{
	auth.ErrUserNotFound:         http.StatusNotFound,
	auth.ErrTokenNotFound:        http.StatusUnauthorized,
	auth.ErrAuthenticationFailed: http.StatusUnauthorized,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// writeJSON serialises v with the given status. Serialisation failures are
// ignored at this point: the status line is already on the wire.
func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
