package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jmcleod/graphgate/auth"
)

type contextKey int

const userKey contextKey = iota

const sessionCookieName = "sessionId"

// allowListed paths are admitted without identity: the auth endpoints
// themselves plus public status and documentation resources.
func allowListed(path string) bool {
	switch path {
	case "/user/login", "/user/logout", "/user/register", "/", "/health", "/openapi.yaml":
		return true
	}
	return strings.HasPrefix(path, "/docs") || strings.HasPrefix(path, "/redoc")
}

// GateMiddleware is the request-admission policy. Every request passes
// through here before any handler runs; handlers never see unauthenticated
// requests.
func (a *API) GateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.authEnabled {
			next.ServeHTTP(w, r)
			return
		}
		if allowListed(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if user, ok := a.userFromSessionCookie(r); ok {
			a.admit(w, r, next, user)
			return
		}

		if username, password, ok := r.BasicAuth(); ok {
			if !a.users.Verify(username, password) {
				a.audit.logFailure(AuditLoginFailure, r, "invalid basic credentials")
				writeUnauthorized(w, "invalid username or password")
				return
			}
			user, err := a.users.Get(username)
			if err != nil {
				writeUnauthorized(w, "invalid username or password")
				return
			}
			a.admit(w, r, next, user)
			return
		}

		writeUnauthorized(w, "no credentials supplied")
	})
}

// admit applies the mandatory-password-change gate, writes the access log
// line, and attaches the identity to the request context.
func (a *API) admit(w http.ResponseWriter, r *http.Request, next http.Handler, user *auth.User) {
	if user.MustChangePassword && r.URL.Path != passwordChangePath(user.Username) {
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Errors: []WireError{{
				Message: "User is required to change their password.",
				Code:    CodeForbidden,
			}},
			PasswordChange: passwordChangePath(user.Username),
		})
		return
	}
	a.access.record(user.Username, r)
	ctx := context.WithValue(r.Context(), userKey, user)
	next.ServeHTTP(w, r.WithContext(ctx))
}

func (a *API) userFromSessionCookie(r *http.Request) (*auth.User, bool) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}
	username, ok := a.sessions.Validate(cookie.Value)
	if !ok {
		return nil, false
	}
	user, err := a.users.Get(username)
	if err != nil {
		// Session outlived the account record.
		a.sessions.Invalidate(cookie.Value)
		return nil, false
	}
	return user, true
}

// userFromContext returns the identity the gate attached, or nil when the
// gate is disabled.
func userFromContext(ctx context.Context) *auth.User {
	user, _ := ctx.Value(userKey).(*auth.User)
	return user
}

// requireAdmin guards lifecycle, backup, and introspection routes.
func (a *API) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.authEnabled {
			user := userFromContext(r.Context())
			if user == nil || user.Username != a.adminUser {
				writeError(w, http.StatusForbidden, CodeForbidden, "administrator access required")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireSelf guards /user/{username}/* routes: the authenticated user may
// only act on their own account, except the administrator.
func (a *API) requireSelf(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.authEnabled {
			user := userFromContext(r.Context())
			target := chi.URLParam(r, "username")
			if user == nil || (user.Username != target && user.Username != a.adminUser) {
				writeError(w, http.StatusForbidden, CodeForbidden, "cannot act on another user's account")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func passwordChangePath(username string) string {
	return "/user/" + username + "/password"
}

func writeSessionCookie(w http.ResponseWriter, r *http.Request, token string, rememberMe bool) {
	cookie := &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
	}
	if rememberMe {
		cookie.MaxAge = int(auth.MaxLifetime / time.Second)
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
