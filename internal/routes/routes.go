package routes

import (
	"net/http"

	"github.com/coldsend/coldsend/internal/middleware"
	"github.com/coldsend/coldsend/internal/router"
)

// Register wires every route onto the router. Middleware that applies to all
// routes (request id, logging, recovery, CORS) is installed on the router
// itself in main; only route-scoped middleware lives here.
func Register(r *router.Router, deps Deps) {
	// OAuth sign-in flow. The callback talks to Google, so it gets a
	// deadline; nothing else here leaves the process.
	r.Get("/auth/google", deps.Auth.GoogleLogin)
	r.Get("/auth/google/callback", deps.Auth.GoogleCallback, middleware.Timeout(middleware.DefaultTimeout))
	r.Get("/logout", deps.Auth.Logout)

	// Session probe; anonymous requests get {"loggedIn": false}
	r.Get("/api/current-user", deps.User.CurrentUser)

	// Email dispatch. Guarded by an authenticated session and its own
	// hourly rate limit; requests may legitimately run long with large
	// batches, so the timeout is wider than the default.
	sendMiddleware := []router.Middleware{
		middleware.RequireSession,
		middleware.Timeout(middleware.SendTimeout),
		middleware.MaxBodySize(),
	}
	if deps.SendRateLimiter != nil {
		sendMiddleware = append([]router.Middleware{deps.SendRateLimiter.Middleware}, sendMiddleware...)
	}
	r.Post("/send-emails", deps.Send.SendEmails, sendMiddleware...)

	// Bundled single-page frontend
	if deps.StaticDir != "" {
		r.Static("/static", deps.StaticDir)
		r.Get("/{$}", func(w http.ResponseWriter, req *http.Request) {
			http.ServeFile(w, req, deps.StaticDir+"/index.html")
		})
	}
}
