// Package session holds the authenticated user's identity and OAuth
// credentials for the lifetime of a browser session.
//
// A session moves through two states: it is created by a successful OAuth
// callback (authenticated) and destroyed on logout or on a failed token
// refresh (anonymous again). There is no partially-authenticated state.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is how long a session lives without being recreated.
const DefaultTTL = 24 * time.Hour

// Session is the server-held record for one signed-in browser.
// AccessToken is short-lived and replaced by the token refresh service;
// RefreshToken is long-lived and only changes on a fresh login.
type Session struct {
	Email        string
	Name         string
	AccessToken  string
	RefreshToken string
	TokenExpiry  time.Time
	CreatedAt    time.Time
}

// Store persists sessions keyed by opaque session id.
// Implementations must be safe for concurrent use. The interface exists so
// the in-memory store can be swapped for a persistent backing store without
// touching request handlers.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Put(ctx context.Context, id string, sess Session) error
	Delete(ctx context.Context, id string) error
}
