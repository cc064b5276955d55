package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/avykov/multiauth/internal/auth"
	"github.com/avykov/multiauth/internal/logger"
	"github.com/avykov/multiauth/models"
)

type loginRequest struct {
	Site     string `json:"site"`
	Identity string `json:"identity"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type userResponse struct {
	User   models.User `json:"user"`
	Forced bool        `json:"forced"`
}

type passwordRequest struct {
	Password string `json:"password"`
}

type forceLoginRequest struct {
	Site     string `json:"site"`
	Identity string `json:"identity"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	engine := h.engine(w, r)

	ok, err := engine.Login(ctx, req.Site, auth.Unresolved(req.Identity), req.Password, req.Remember)
	if err != nil {
		log.Err(err).Msg("unexpected error occurred during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !ok {
		// unknown user, wrong password and missing permission all land here
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	user, _, err := engine.GetUser(ctx)
	if err != nil {
		log.Err(err).Msg("reading session after login failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, userResponse{User: user}, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	destroy := r.URL.Query().Get("destroy") == "true"
	logoutAll := r.URL.Query().Get("all") == "true"

	loggedOut, err := h.engine(w, r).Logout(ctx, destroy, logoutAll)
	if err != nil {
		log.Err(err).Msg("unexpected error occurred during logout")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"logged_out": loggedOut}, http.StatusOK)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	engine := h.engine(w, r)

	user, ok, err := engine.GetUser(ctx)
	if err != nil {
		log.Err(err).Msg("reading session user failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	forced, err := engine.Forced(ctx)
	if err != nil {
		log.Err(err).Msg("reading forced marker failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, userResponse{User: user, Forced: forced}, http.StatusOK)
}

func (h *Handler) checkPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	engine := h.engine(w, r)

	if h.rejectForced(ctx, w, engine, log) {
		return
	}

	valid, err := engine.CheckPassword(ctx, req.Password)
	if err != nil {
		log.Err(err).Msg("password check failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]bool{"valid": valid}, http.StatusOK)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}
	if req.Password == "" {
		http.Error(w, "password must not be empty", http.StatusBadRequest)
		return
	}

	engine := h.engine(w, r)

	if h.rejectForced(ctx, w, engine, log) {
		return
	}

	user, ok, err := engine.GetUser(ctx)
	if err != nil {
		log.Err(err).Msg("reading session user failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not logged in", http.StatusUnauthorized)
		return
	}

	if err := engine.SetPassword(ctx, user, req.Password); err != nil {
		log.Err(err).Msg("password update failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) forceLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromRequest(r)

	var req forceLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Err(err).Msg("Invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	engine := h.engine(w, r)

	if err := engine.ForceLogin(ctx, req.Site, auth.Unresolved(req.Identity)); err != nil {
		log.Err(err).Str("site", req.Site).Msg("forced login failed")
		http.Error(w, http.StatusText(statusFromError(err)), statusFromError(err))
		return
	}

	user, _, err := engine.GetUser(ctx)
	if err != nil {
		log.Err(err).Msg("reading session after forced login failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	writeJSON(w, userResponse{User: user, Forced: true}, http.StatusOK)
}

// rejectForced blocks password self-service under an administrative forced
// session. Reports true when the request was rejected.
func (h *Handler) rejectForced(ctx context.Context, w http.ResponseWriter, engine *auth.Engine, log *logger.Logger) bool {
	forced, err := engine.Forced(ctx)
	if err != nil {
		log.Err(err).Msg("reading forced marker failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return true
	}
	if forced {
		http.Error(w, "not available under a forced login", http.StatusForbidden)
		return true
	}

	return false
}
