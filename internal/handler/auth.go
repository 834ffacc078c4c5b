package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/coldsend/coldsend/internal/cookie"
	"github.com/coldsend/coldsend/internal/middleware"
	"github.com/coldsend/coldsend/internal/oauth"
	"github.com/coldsend/coldsend/internal/session"
)

// stateCookieName holds the OAuth state between redirect and callback.
const stateCookieName = "coldsend_oauth_state"

// stateCookieTTL bounds how long a login attempt stays valid.
const stateCookieTTL = 10 * time.Minute

// AuthHandler handles the Google OAuth sign-in flow and logout
type AuthHandler struct {
	oauth       *oauth.Google
	sessions    session.Store
	cookies     *cookie.Config
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	oauthClient *oauth.Google,
	sessions session.Store,
	cookies *cookie.Config,
	frontendURL string,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		oauth:       oauthClient,
		sessions:    sessions,
		cookies:     cookies,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// GoogleLogin handles GET /auth/google
// Generates a random state, stores it in a short-lived cookie, and redirects
// the browser to Google's consent screen.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := oauth.GenerateState()
	h.cookies.SetState(w, stateCookieName, state, int(stateCookieTTL.Seconds()))
	http.Redirect(w, r, h.oauth.AuthURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback handles GET /auth/google/callback
// Verifies the state, exchanges the authorization code for tokens, creates a
// server-side session, and redirects back to the frontend. The callback is
// a top-level browser navigation, so failures redirect to the frontend with
// an error hint instead of rendering a JSON body.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" || state != cookie.Get(r, stateCookieName) {
		h.failLogin(w, r, "invalid_state", nil)
		return
	}

	// The state cookie is single use
	h.cookies.Clear(w, stateCookieName)

	code := r.URL.Query().Get("code")
	if code == "" {
		h.failLogin(w, r, "missing_code", nil)
		return
	}

	identity, token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.failLogin(w, r, "exchange_failed", err)
		return
	}

	sessionID := uuid.New().String()
	sess := session.Session{
		Email:        identity.Email,
		Name:         identity.Name,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenExpiry:  token.Expiry,
		CreatedAt:    time.Now(),
	}

	if err := h.sessions.Put(r.Context(), sessionID, sess); err != nil {
		h.failLogin(w, r, "session_failed", err)
		return
	}

	h.cookies.SetSession(w, middleware.SessionCookieName, sessionID, int(session.DefaultTTL.Seconds()))

	h.logger.Info("user signed in", "email", identity.Email)

	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

// Logout handles GET /logout
// Destroys the server-side session and clears the cookie. Always succeeds,
// even when no session exists.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetSessionID(r.Context()); id != "" {
		if err := h.sessions.Delete(r.Context(), id); err != nil {
			h.logger.Warn("session delete failed", "error", err)
		}
	}

	h.cookies.Clear(w, middleware.SessionCookieName)

	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

// failLogin logs the failure and sends the browser back to the frontend
// with a machine-readable reason. Details stay server-side.
func (h *AuthHandler) failLogin(w http.ResponseWriter, r *http.Request, reason string, err error) {
	attrs := []any{"reason", reason}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	h.logger.Warn("sign-in failed", attrs...)

	http.Redirect(w, r, h.frontendURL+"?auth_error="+url.QueryEscape(reason), http.StatusTemporaryRedirect)
}
