// Package cookie centralizes cookie handling so every session and OAuth
// state cookie carries the same attributes. Session cookies use
// SameSite=None because the frontend may live on a different origin than
// the API; browsers require Secure alongside None, so Secure must be set
// whenever the app is served over HTTPS.
package cookie

import "net/http"

// Config holds the attributes shared by all cookies the app sets.
type Config struct {
	// Secure marks cookies HTTPS-only. Required in production: browsers
	// drop SameSite=None cookies without it.
	Secure bool
}

// NewConfig creates a cookie configuration.
func NewConfig(secure bool) *Config {
	return &Config{Secure: secure}
}

// SetSession sets a cross-site session cookie.
func (c *Config) SetSession(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

// SetState sets a short-lived cookie for the OAuth state parameter. Lax is
// enough here: the cookie only needs to survive the top-level redirect back
// from Google.
func (c *Config) SetState(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires a cookie. Attributes must match the ones used when setting
// it or some browsers keep the original.
func (c *Config) Clear(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}

// Get returns the named cookie's value, or "" when absent.
func Get(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
