package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkrogh/homewatch/internal/store"
)

type contextKey string

// principalKey carries the logged-in username through the request
// context once requireAuth has checked the session.
const principalKey contextKey = "principal"

// loginFailedMessage is the only error shown on the login page. Wrong
// password and unknown user produce the same response, so the form
// leaks nothing about which accounts exist.
const loginFailedMessage = "Invalid username or password"

// dummyHash keeps the compare cost flat when the username does not
// exist. Hash of an unguessable throwaway value at BcryptCost.
var dummyHash = []byte("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW")

// principal returns the logged-in username, if any. Inside the auth
// gate it comes from the request context; elsewhere the session is
// consulted directly.
func (h *Handler) principal(r *http.Request) (string, bool) {
	if username, ok := r.Context().Value(principalKey).(string); ok && username != "" {
		return username, true
	}

	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return "", false
	}

	username, ok := session.Values["user"].(string)
	if !ok || username == "" {
		return "", false
	}

	return username, true
}

// requireAuth redirects unauthenticated requests to the login page and
// runs the wrapped handler with the principal in the request context.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, ok := h.principal(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), principalKey, username)))
	}
}

// handleLoginPage serves the login form.
func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.principal(r); ok {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, "")
}

// handleLogin checks credentials and establishes a session. Every
// failure path goes through renderLogin with loginFailedMessage so the
// response body is identical regardless of the failure cause.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.loginFailed(w, "malformed form")
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	password := r.PostFormValue("password")

	if username == "" || password == "" {
		h.loginFailed(w, "empty credentials")
		return
	}

	if len(username) > MaxInputLength || len(password) > MaxInputLength {
		h.loginFailed(w, "oversized credentials")
		return
	}

	user, err := h.users.FindByUsername(r.Context(), username)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			h.logger.Error("failed to look up user", "error", err)
		}
		// Burn a compare anyway so unknown users cost the same.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		h.loginFailed(w, "unknown user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		h.loginFailed(w, "wrong password")
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["user"] = user.Username
	session.Values["user_id"] = user.ID
	if err := session.Save(r, w); err != nil {
		h.logger.Error("failed to save session", "error", err)
		h.writeError(w, http.StatusInternalServerError, "unexpected server error")
		return
	}

	if h.metrics != nil {
		h.metrics.LoginAttempts.WithLabelValues("success").Inc()
	}
	h.logger.Info("login succeeded", "username", user.Username)

	http.Redirect(w, r, "/home", http.StatusSeeOther)
}

// loginFailed records the failure and re-renders the form with the
// generic error. The reason goes to the log only, never to the client.
func (h *Handler) loginFailed(w http.ResponseWriter, reason string) {
	if h.metrics != nil {
		h.metrics.LoginAttempts.WithLabelValues("failure").Inc()
	}
	h.logger.Warn("login failed", "reason", reason)
	h.renderLogin(w, loginFailedMessage)
}

// handleLogout clears the session and returns to the login page. The
// values are emptied as well as expiring the cookie: the store encodes
// whatever values remain, so MaxAge alone would hand back a cookie
// that still decodes to a logged-in principal.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values = map[any]any{}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		h.logger.Error("failed to clear session", "error", err)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
