package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coldsend/coldsend/internal/cookie"
	"github.com/coldsend/coldsend/internal/dispatch"
	"github.com/coldsend/coldsend/internal/domain"
	"github.com/coldsend/coldsend/internal/mail"
	"github.com/coldsend/coldsend/internal/middleware"
	"github.com/coldsend/coldsend/internal/oauth"
	"github.com/coldsend/coldsend/internal/session"
)

// tokenExpirySlack refreshes tokens slightly before they actually expire so
// a batch never starts with a token that dies mid-dispatch.
const tokenExpirySlack = time.Minute

// SendHandler handles POST /send-emails
type SendHandler struct {
	dispatch  *dispatch.Service
	transport mail.Transport
	oauth     *oauth.Google
	sessions  session.Store
	cookies   *cookie.Config
	logger    *slog.Logger
}

// NewSendHandler creates a new send handler
func NewSendHandler(
	dispatchService *dispatch.Service,
	transport mail.Transport,
	oauthClient *oauth.Google,
	sessions session.Store,
	cookies *cookie.Config,
	logger *slog.Logger,
) *SendHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SendHandler{
		dispatch:  dispatchService,
		transport: transport,
		oauth:     oauthClient,
		sessions:  sessions,
		cookies:   cookies,
		logger:    logger,
	}
}

// sendResponse is the JSON shape for POST /send-emails.
type sendResponse struct {
	Message string                   `json:"message"`
	Sent    int                      `json:"sent"`
	Failed  int                      `json:"failed"`
	Results []domain.RecipientResult `json:"results"`
}

// SendEmails handles POST /send-emails
// The route is guarded by RequireSession, so a session is always present.
func (h *SendHandler) SendEmails(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		respondError(w, r, domain.Unauthorized("handler.send"))
		return
	}

	var req domain.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, domain.Errorf(domain.EINVALID, "handler.send", "Invalid request body"))
		return
	}

	sess, err := h.ensureFreshToken(w, r, sess)
	if err != nil {
		respondError(w, r, err)
		return
	}

	sender := h.transport.Sender(mail.Credentials{
		Email:        sess.Email,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		Expiry:       sess.TokenExpiry,
	})

	result, err := h.dispatch.Dispatch(r.Context(), sender, sess.Email, &req)
	if err != nil && result == nil {
		// Rejected before anything was attempted (validation, attachment)
		respondError(w, r, err)
		return
	}

	resp := sendResponse{
		Sent:    result.Succeeded(),
		Failed:  len(result.Results) - result.Succeeded(),
		Results: result.Results,
	}

	if err != nil {
		// Every recipient failed; surface the detail alongside the error
		resp.Message = domain.ErrorMessage(err)
		respondJSON(w, http.StatusInternalServerError, resp)
		return
	}

	resp.Message = "Emails processed"
	respondJSON(w, http.StatusOK, resp)
}

// ensureFreshToken refreshes the session's access token when it is expired
// or about to expire, persisting the new token so later requests reuse it.
// A failed refresh destroys the session: revoked grants do not recover, and
// keeping the session around would just fail every send.
func (h *SendHandler) ensureFreshToken(w http.ResponseWriter, r *http.Request, sess session.Session) (session.Session, error) {
	if time.Until(sess.TokenExpiry) > tokenExpirySlack {
		return sess, nil
	}

	if sess.RefreshToken == "" {
		h.destroySession(w, r)
		return sess, domain.Errorf(domain.EUNAUTHORIZED, "handler.send", "Session expired, please sign in again")
	}

	token, err := h.oauth.Refresh(r.Context(), sess.RefreshToken)
	if err != nil {
		h.logger.Warn("token refresh failed", "email", sess.Email, "error", err)
		h.destroySession(w, r)
		return sess, domain.Errorf(domain.EUNAUTHORIZED, "handler.send", "Google authorization expired, please sign in again")
	}

	sess.AccessToken = token.AccessToken
	sess.TokenExpiry = token.Expiry
	if token.RefreshToken != "" {
		sess.RefreshToken = token.RefreshToken
	}

	if id := middleware.GetSessionID(r.Context()); id != "" {
		if err := h.sessions.Put(r.Context(), id, sess); err != nil {
			h.logger.Warn("session update failed", "error", err)
		}
	}

	return sess, nil
}

// destroySession deletes the server-side session and clears the cookie.
func (h *SendHandler) destroySession(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetSessionID(r.Context()); id != "" {
		if err := h.sessions.Delete(r.Context(), id); err != nil {
			h.logger.Warn("session delete failed", "error", err)
		}
	}

	h.cookies.Clear(w, middleware.SessionCookieName)
}
