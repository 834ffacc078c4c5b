package handler

import (
	"net/http"

	"github.com/coldsend/coldsend/internal/middleware"
)

// UserHandler serves the current-user probe used by the frontend to decide
// whether to show the sign-in button or the compose form.
type UserHandler struct{}

// NewUserHandler creates a new user handler
func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// currentUserResponse is the JSON shape for GET /api/current-user.
type currentUserResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

// CurrentUser handles GET /api/current-user
// Always returns 200; anonymous requests get {"loggedIn": false}.
func (h *UserHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r.Context())
	if !ok {
		respondJSON(w, http.StatusOK, currentUserResponse{LoggedIn: false})
		return
	}

	respondJSON(w, http.StatusOK, currentUserResponse{
		LoggedIn: true,
		Email:    sess.Email,
		Name:     sess.Name,
	})
}
