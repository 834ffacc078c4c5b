package routes

import (
	"github.com/coldsend/coldsend/internal/handler"
	"github.com/coldsend/coldsend/internal/middleware"
)

// Deps contains the handlers and per-route middleware the route table needs.
// Constructed once in main and passed by value.
type Deps struct {
	Auth *handler.AuthHandler
	User *handler.UserHandler
	Send *handler.SendHandler

	// SendRateLimiter throttles /send-emails per client IP, separately from
	// the global request limiter.
	SendRateLimiter *middleware.RateLimiter

	// StaticDir serves the bundled frontend when non-empty.
	StaticDir string
}
