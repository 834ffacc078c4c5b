// Package oauth integrates with Google's OAuth2 endpoints: the browser
// login flow, the authorization-code exchange, and access-token refresh.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	googleoauth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Identity is the provider-verified identity of a signed-in user.
type Identity struct {
	Email   string
	Name    string
	Picture string
}

// Google wraps the application's Google OAuth2 client configuration.
type Google struct {
	config *oauth2.Config
}

// NewGoogle creates the OAuth2 configuration for the Google login flow.
// The gmail.send scope lets the app relay mail through the user's own
// mailbox; offline access is requested so a refresh token is issued.
func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				gmail.GmailSendScope,
			},
		},
	}
}

// Config exposes the underlying oauth2 config for transports that build
// per-user token sources.
func (g *Google) Config() *oauth2.Config {
	return g.config
}

// AuthURL returns the Google consent URL for the given anti-CSRF state.
// The consent prompt is forced so a refresh token is issued even for users
// who authorized the app before.
func (g *Google) AuthURL(state string) string {
	return g.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange swaps an authorization code for a token pair and fetches the
// user's verified identity from the userinfo endpoint.
func (g *Google) Exchange(ctx context.Context, code string) (Identity, *oauth2.Token, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("token exchange failed: %w", err)
	}

	svc, err := googleoauth2.NewService(ctx,
		option.WithTokenSource(g.config.TokenSource(ctx, token)))
	if err != nil {
		return Identity{}, nil, fmt.Errorf("failed to create userinfo service: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Identity{}, nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}

	return Identity{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, token, nil
}

// Refresh exchanges a refresh token for a new access token. One attempt,
// no backoff: a revoked refresh token will not become valid, so the caller
// must treat failure as a dead session and require a fresh login.
func (g *Google) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	token, err := g.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return token, nil
}

// GenerateState creates a random base64url state value for the OAuth flow.
func GenerateState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
