package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jmcleod/graphgate/auth"
	"github.com/jmcleod/graphgate/storage"
)

const maxAuthBodySize = 1 << 16

// decodeJSON decodes the request body into T, writing a 400 on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	body := http.MaxBytesReader(w, r.Body, maxAuthBodySize)
	if err := json.NewDecoder(body).Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, CodeInvalidFormat, "malformed request body")
		return v, false
	}
	return v, true
}

// Login handles POST /user/login.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidFormat, "username and password are required")
		return
	}
	if !a.users.Verify(req.Username, req.Password) {
		a.audit.logFailure(AuditLoginFailure, r, "invalid credentials")
		writeUnauthorized(w, "invalid username or password")
		return
	}

	token := a.sessions.Create(req.Username, req.RememberMe)
	writeSessionCookie(w, r, token, req.RememberMe)
	a.audit.logEvent(AuditLoginSuccess, r, req.Username)
	writeJSON(w, http.StatusOK, struct{}{})
}

// Logout handles POST /user/logout. Invalidating an absent or unknown
// session is a no-op.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	var username string
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		username, _ = a.sessions.Validate(cookie.Value)
		a.sessions.Invalidate(cookie.Value)
	}
	clearSessionCookie(w, r)
	a.audit.logEvent(AuditLogout, r, username)
	writeJSON(w, http.StatusOK, struct{}{})
}

// Register handles POST /user/register.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[RegisterRequest](w, r)
	if !ok {
		return
	}
	if err := a.users.Register(req.Username, req.Password); err != nil {
		switch {
		case errors.Is(err, auth.ErrDuplicateUser), errors.Is(err, auth.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, CodeInvalidFormat, err.Error())
		default:
			mapError(w, err)
		}
		return
	}

	token := a.sessions.Create(req.Username, false)
	writeSessionCookie(w, r, token, false)
	a.audit.logEvent(AuditRegister, r, req.Username)
	writeJSON(w, http.StatusCreated, struct{}{})
}

// UserStatus handles GET /user/{username}/status.
func (a *API) UserStatus(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	user, err := a.users.Get(username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, CodeDatabaseNotFound, "no such user")
			return
		}
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserStatusResponse{
		Username:               user.Username,
		PasswordChangeRequired: user.MustChangePassword,
		PasswordChange:         passwordChangePath(user.Username),
	})
}

// ChangePassword handles POST /user/{username}/password.
func (a *API) ChangePassword(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	req, ok := decodeJSON[ChangePasswordRequest](w, r)
	if !ok {
		return
	}
	if req.NewPassword == "" {
		writeError(w, http.StatusBadRequest, CodeInvalidFormat, "new_password is required")
		return
	}
	if !a.users.ChangePassword(username, req.Password, req.NewPassword) {
		writeError(w, http.StatusBadRequest, CodeInvalidFormat,
			"password change rejected: current password incorrect or new password unchanged")
		return
	}
	a.audit.logEvent(AuditPasswordChanged, r, username)
	writeJSON(w, http.StatusOK, struct{}{})
}

// UserLogs handles GET /user/logs: the authenticated user's plaintext access
// log.
func (a *API) UserLogs(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())
	if user == nil {
		writeUnauthorized(w, "authentication required")
		return
	}
	data, err := a.access.read(user.Username)
	if err != nil {
		writeError(w, http.StatusNotFound, CodeDatabaseNotFound, "no access log for user")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
